package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"signoff-api/internal/client"
	"signoff-api/internal/domain"
	"signoff-api/internal/dto"
	"signoff-api/internal/metrics"
	"signoff-api/internal/notifier"
	"signoff-api/internal/repository"
	"signoff-api/internal/response"
)

// ProjectService implements the sign-off workflow: project lifecycle,
// the approval state machine, and the expiration policy
type ProjectService struct {
	db       *gorm.DB
	s3Client client.S3ClientInterface
	notifier notifier.Notifier
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// NewProjectService creates a new ProjectService
func NewProjectService(
	db *gorm.DB,
	s3Client client.S3ClientInterface,
	n notifier.Notifier,
	logger *zap.Logger,
	m *metrics.Metrics,
) *ProjectService {
	return &ProjectService{
		db:       db,
		s3Client: s3Client,
		notifier: n,
		logger:   logger,
		metrics:  m,
	}
}

// CreateProject creates a new project with fresh capability tokens,
// PENDING status, and a 30-day expiration window. The creation audit
// entry commits in the same transaction.
func (s *ProjectService) CreateProject(ctx context.Context, name string) (*domain.Project, error) {
	adminToken := domain.NewCapabilityToken()
	publicToken := domain.NewCapabilityToken()
	for publicToken == adminToken {
		publicToken = domain.NewCapabilityToken()
	}

	now := time.Now().UTC()
	expiresAt := now.AddDate(0, 0, domain.DefaultExpirationDays)

	project := &domain.Project{
		BaseModel:   domain.BaseModel{ID: uuid.New()},
		Name:        name,
		AdminToken:  adminToken,
		PublicToken: publicToken,
		Status:      domain.ProjectStatusPending,
		ExpiresAt:   &expiresAt,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := repository.NewProjectRepository(tx).Create(ctx, project); err != nil {
			return err
		}
		return repository.NewAuditLogRepository(tx).Create(ctx, &domain.AuditLog{
			BaseModel: domain.BaseModel{ID: uuid.New()},
			ProjectID: project.ID,
			Action:    domain.LogActionProjectCreated,
			ActorRole: domain.ActorRoleAdmin,
		})
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementProjectCreated()
	}

	return project, nil
}

// GetAdminView returns the full dashboard view for an admin token:
// project, attachment with a signed download URL, the audit trail and
// the latest client comment
func (s *ProjectService) GetAdminView(ctx context.Context, adminToken string) (*dto.AdminViewResponse, error) {
	project, err := repository.NewProjectRepository(s.db).FindByAdminTokenWithRelations(ctx, adminToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewAppError(response.ErrCodeNotFound, "Project not found", "")
		}
		return nil, err
	}

	view := &dto.AdminViewResponse{
		ProjectResponse: dto.ToProjectResponse(project),
		Logs:            make([]dto.AuditLogResponse, 0, len(project.AuditLogs)),
	}

	for _, entry := range project.AuditLogs {
		view.Logs = append(view.Logs, dto.AuditLogResponse{
			ID:        entry.ID,
			Action:    entry.Action,
			ActorRole: entry.ActorRole,
			IPAddress: entry.IPAddress,
			UserAgent: entry.UserAgent,
			CreatedAt: entry.CreatedAt,
		})
	}

	if project.Attachment != nil {
		file := dto.ToAttachmentResponse(project.Attachment, s.signDownloadURL(ctx, project.Attachment))
		view.File = &file
	}

	if latest := s.latestDecision(ctx, project.ID); latest != nil {
		view.LatestComment = latest.Comment
	}

	return view, nil
}

// GetPublicView returns the read-only client view behind the public
// link. Expired links fail with Gone before any project data is
// revealed. The view audit entry is fire-and-forget.
func (s *ProjectService) GetPublicView(ctx context.Context, publicToken, ip, userAgent string) (*dto.PublicViewResponse, error) {
	project, err := repository.NewProjectRepository(s.db).FindByPublicTokenWithAttachment(ctx, publicToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewAppError(response.ErrCodeNotFound, "Project not found", "")
		}
		return nil, err
	}

	if project.IsExpired(time.Now().UTC()) {
		return nil, response.NewAppError(response.ErrCodeGone, "This project link has expired", "")
	}

	s.recordViewAsync(project.ID, ip, userAgent)
	if s.metrics != nil {
		s.metrics.IncrementClientView()
	}

	view := &dto.PublicViewResponse{
		Name:      project.Name,
		Status:    project.Status,
		ExpiresAt: project.ExpiresAt,
	}

	if project.Attachment != nil {
		view.File = &dto.PublicFileResponse{
			FileID:   project.Attachment.ID,
			FileName: project.Attachment.FileName,
			MimeType: project.Attachment.MimeType,
			Size:     project.Attachment.Size,
			URL:      s.signDownloadURL(ctx, project.Attachment),
		}
	}

	if latest := s.latestDecision(ctx, project.ID); latest != nil {
		view.ClientFeedback = latest.Comment
	}

	return view, nil
}

// errDuplicateDecision rolls back a submission that matches the latest
// recorded decision. The caller turns it into an idempotent-retry
// response.
var errDuplicateDecision = errors.New("duplicate decision")

// SubmitDecision runs the approval state machine for a client verdict.
//
// APPROVED is terminal: any further submission fails with Locked. A
// submission identical to the most recent decision (same type, same
// comment) is treated as an idempotent retry and returns the current
// state without recording anything or emitting a notification.
// Otherwise the status update, the decision row and the audit entry
// commit as one transaction.
func (s *ProjectService) SubmitDecision(ctx context.Context, publicToken string, decision domain.DecisionType, comment, ip, userAgent string) (*dto.DecisionResponse, error) {
	if !decision.Valid() {
		return nil, response.NewAppError(response.ErrCodeValidation, "Invalid decision type", string(decision))
	}

	projectRepo := repository.NewProjectRepository(s.db)
	project, err := projectRepo.FindByPublicToken(ctx, publicToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewAppError(response.ErrCodeNotFound, "Project not found", "")
		}
		return nil, err
	}

	if project.IsLocked() {
		return nil, response.NewAppError(response.ErrCodeLocked, "Project already approved and locked", "")
	}

	newStatus := decision.Status()
	updatedAt := time.Now().UTC()
	var lastComment string

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Conditional write: two racing submissions serialize here.
		// The loser observes zero affected rows on an already
		// approved project and is rejected as Locked.
		result := tx.Model(&domain.Project{}).
			Where("id = ? AND status <> ?", project.ID, domain.ProjectStatusApproved).
			Updates(map[string]interface{}{
				"status":     newStatus,
				"updated_at": updatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return response.NewAppError(response.ErrCodeLocked, "Project already approved and locked", "")
		}

		// The duplicate check must see decisions committed by a
		// racing submission, so it runs after the row lock above.
		last, err := repository.NewDecisionRepository(tx).FindLatestByProjectID(ctx, project.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if last != nil && last.Type == decision && last.Comment == comment {
			lastComment = last.Comment
			return errDuplicateDecision
		}

		if err := repository.NewDecisionRepository(tx).Create(ctx, &domain.Decision{
			BaseModel: domain.BaseModel{ID: uuid.New()},
			ProjectID: project.ID,
			Type:      decision,
			Comment:   comment,
			ActorRole: domain.ActorRoleClient,
			IPAddress: ip,
			UserAgent: userAgent,
		}); err != nil {
			return err
		}

		action := domain.LogActionClientRequestedChanges
		if decision == domain.DecisionApproved {
			action = domain.LogActionClientApproved
		}
		return repository.NewAuditLogRepository(tx).Create(ctx, &domain.AuditLog{
			BaseModel: domain.BaseModel{ID: uuid.New()},
			ProjectID: project.ID,
			Action:    action,
			ActorRole: domain.ActorRoleClient,
			IPAddress: ip,
			UserAgent: userAgent,
		})
	})
	if errors.Is(err, errDuplicateDecision) {
		current, ferr := projectRepo.FindByID(ctx, project.ID)
		if ferr != nil {
			current = project
		}
		return &dto.DecisionResponse{
			Status:    current.Status,
			UpdatedAt: current.UpdatedAt,
			Comment:   lastComment,
		}, nil
	}
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordDecision(string(decision))
	}

	s.notifier.Emit(ctx, project.ID, notifier.EventStatusUpdated, map[string]interface{}{
		"status":        newStatus,
		"latestComment": comment,
	})

	return &dto.DecisionResponse{
		Status:    newStatus,
		UpdatedAt: updatedAt,
		Comment:   comment,
	}, nil
}

// ExtendExpiration moves the link validity window to now + days. The
// input layer bounds days; this layer only requires it to be positive.
func (s *ProjectService) ExtendExpiration(ctx context.Context, adminToken string, days int) (*domain.Project, error) {
	if days <= 0 {
		return nil, response.NewAppError(response.ErrCodeValidation, "Duration (days) must be positive", "")
	}

	projectRepo := repository.NewProjectRepository(s.db)
	project, err := projectRepo.FindByAdminToken(ctx, adminToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewAppError(response.ErrCodeNotFound, "Project not found", "")
		}
		return nil, err
	}

	expiresAt := time.Now().UTC().AddDate(0, 0, days)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := repository.NewProjectRepository(tx).UpdateExpiration(ctx, project.ID, expiresAt); err != nil {
			return err
		}
		return repository.NewAuditLogRepository(tx).Create(ctx, &domain.AuditLog{
			BaseModel: domain.BaseModel{ID: uuid.New()},
			ProjectID: project.ID,
			Action:    domain.LogActionProjectUpdated,
			ActorRole: domain.ActorRoleAdmin,
		})
	})
	if err != nil {
		return nil, err
	}

	project.ExpiresAt = &expiresAt

	s.notifier.Emit(ctx, project.ID, notifier.EventExpirationUpdated, map[string]interface{}{
		"expiresAt": expiresAt,
	})

	return project, nil
}

// DeleteProject destroys a project and everything it owns. The object
// store entry is removed best-effort before the metadata cascade; a
// failed object deletion is queued for the cleanup job and never
// blocks the delete.
func (s *ProjectService) DeleteProject(ctx context.Context, adminToken string) error {
	projectRepo := repository.NewProjectRepository(s.db)
	project, err := projectRepo.FindByAdminTokenWithRelations(ctx, adminToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewAppError(response.ErrCodeNotFound, "Project not found", "")
		}
		return err
	}

	if project.Attachment != nil {
		s.cleanupObject(ctx, project.Attachment.StorageKey)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := repository.NewAttachmentRepository(tx).DeleteByProjectID(ctx, project.ID); err != nil {
			return err
		}
		if err := repository.NewDecisionRepository(tx).DeleteByProjectID(ctx, project.ID); err != nil {
			return err
		}
		if err := repository.NewAuditLogRepository(tx).DeleteByProjectID(ctx, project.ID); err != nil {
			return err
		}
		return repository.NewProjectRepository(tx).Delete(ctx, project.ID)
	})
	if err != nil {
		return err
	}

	s.notifier.Emit(ctx, project.ID, notifier.EventProjectDeleted, map[string]interface{}{
		"projectId": project.ID,
	})

	return nil
}

// latestDecision returns the most recent decision, or nil if none exists
func (s *ProjectService) latestDecision(ctx context.Context, projectID uuid.UUID) *domain.Decision {
	decision, err := repository.NewDecisionRepository(s.db).FindLatestByProjectID(ctx, projectID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("Failed to load latest decision",
				zap.String("project_id", projectID.String()),
				zap.Error(err),
			)
		}
		return nil
	}
	return decision
}

// signDownloadURL signs a 1-hour download URL for an attachment.
// Signing failures are logged and leave the URL empty; a view never
// fails because the object store is unreachable.
func (s *ProjectService) signDownloadURL(ctx context.Context, attachment *domain.Attachment) string {
	if s.s3Client == nil {
		return ""
	}
	url, err := s.s3Client.PresignDownload(ctx, attachment.StorageKey, attachment.FileName)
	if err != nil {
		s.logger.Warn("Failed to sign download URL",
			zap.String("storage_key", attachment.StorageKey),
			zap.Error(err),
		)
		return ""
	}
	return url
}

// recordViewAsync appends a CLIENT_VIEWED audit entry without blocking
// the view request. A failed view log is never surfaced.
func (s *ProjectService) recordViewAsync(projectID uuid.UUID, ip, userAgent string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := repository.NewAuditLogRepository(s.db).Create(ctx, &domain.AuditLog{
			BaseModel: domain.BaseModel{ID: uuid.New()},
			ProjectID: projectID,
			Action:    domain.LogActionClientViewed,
			ActorRole: domain.ActorRoleClient,
			IPAddress: ip,
			UserAgent: userAgent,
		})
		if err != nil {
			s.logger.Warn("Failed to record client view",
				zap.String("project_id", projectID.String()),
				zap.Error(err),
			)
		}
	}()
}

// cleanupObject deletes an object from the store best-effort. On
// failure the key lands in the orphan queue for the cleanup job.
func (s *ProjectService) cleanupObject(ctx context.Context, storageKey string) {
	if s.s3Client == nil {
		return
	}
	if err := s.s3Client.DeleteFile(ctx, storageKey); err != nil {
		s.logger.Warn("Failed to delete object, queueing for cleanup",
			zap.String("storage_key", storageKey),
			zap.Error(err),
		)
		if qerr := repository.NewOrphanedObjectRepository(s.db).Enqueue(ctx, storageKey); qerr != nil {
			s.logger.Error("Failed to queue orphaned object",
				zap.String("storage_key", storageKey),
				zap.Error(qerr),
			)
		}
	}
}
