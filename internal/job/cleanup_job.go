package job

import (
	"context"

	"go.uber.org/zap"

	"signoff-api/internal/client"
	"signoff-api/internal/metrics"
	"signoff-api/internal/repository"
)

const (
	// batchSize bounds how many orphans a single sweep processes
	batchSize = 100

	// maxAttempts is how often a deletion is retried before the record
	// is abandoned
	maxAttempts = 10
)

// CleanupJob retries deletion of orphaned storage objects. Objects end
// up in the queue when a best-effort delete failed during replacement
// or project removal.
type CleanupJob struct {
	orphanRepo repository.OrphanedObjectRepository
	s3Client   client.S3ClientInterface
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// NewCleanupJob creates a new CleanupJob instance
func NewCleanupJob(
	orphanRepo repository.OrphanedObjectRepository,
	s3Client client.S3ClientInterface,
	logger *zap.Logger,
	m *metrics.Metrics,
) *CleanupJob {
	return &CleanupJob{
		orphanRepo: orphanRepo,
		s3Client:   s3Client,
		logger:     logger,
		metrics:    m,
	}
}

// Run executes one sweep over the orphan queue
func (j *CleanupJob) Run() {
	ctx := context.Background()

	orphans, err := j.orphanRepo.ListPending(ctx, batchSize)
	if err != nil {
		j.logger.Error("Failed to list orphaned objects", zap.Error(err))
		return
	}

	if len(orphans) == 0 {
		return
	}

	j.logger.Info("Sweeping orphaned objects",
		zap.Int("count", len(orphans)),
	)

	successCount := 0
	failCount := 0

	for _, orphan := range orphans {
		if err := j.s3Client.DeleteFile(ctx, orphan.StorageKey); err != nil {
			failCount++
			j.recordResult("failure")

			if orphan.Attempts+1 >= maxAttempts {
				j.logger.Error("Abandoning orphaned object after repeated failures",
					zap.String("storage_key", orphan.StorageKey),
					zap.Int("attempts", orphan.Attempts+1),
					zap.Error(err),
				)
				if derr := j.orphanRepo.Delete(ctx, orphan.ID); derr != nil {
					j.logger.Error("Failed to drop abandoned orphan record",
						zap.String("storage_key", orphan.StorageKey),
						zap.Error(derr),
					)
				}
				j.recordResult("abandoned")
				continue
			}

			if merr := j.orphanRepo.MarkAttempt(ctx, orphan.ID); merr != nil {
				j.logger.Error("Failed to mark orphan cleanup attempt",
					zap.String("storage_key", orphan.StorageKey),
					zap.Error(merr),
				)
			}
			continue
		}

		if err := j.orphanRepo.Delete(ctx, orphan.ID); err != nil {
			j.logger.Error("Failed to remove reconciled orphan record",
				zap.String("storage_key", orphan.StorageKey),
				zap.Error(err),
			)
			continue
		}

		successCount++
		j.recordResult("success")
	}

	j.logger.Info("Orphan sweep completed",
		zap.Int("total", len(orphans)),
		zap.Int("success", successCount),
		zap.Int("failed", failCount),
	)
}

// recordResult emits the cleanup metric when metrics are wired
func (j *CleanupJob) recordResult(result string) {
	if j.metrics != nil {
		j.metrics.RecordOrphanCleanup(result)
	}
}
