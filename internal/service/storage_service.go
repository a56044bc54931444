package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"signoff-api/internal/client"
	"signoff-api/internal/config"
	"signoff-api/internal/domain"
	"signoff-api/internal/dto"
	"signoff-api/internal/metrics"
	"signoff-api/internal/notifier"
	"signoff-api/internal/repository"
	"signoff-api/internal/response"
)

// StorageService implements the attachment replacement protocol: one
// file per project, capability issuance, and orphan-safe replacement
type StorageService struct {
	db       *gorm.DB
	s3Client client.S3ClientInterface
	notifier notifier.Notifier
	logger   *zap.Logger
	metrics  *metrics.Metrics
	upload   config.UploadConfig
}

// NewStorageService creates a new StorageService
func NewStorageService(
	db *gorm.DB,
	s3Client client.S3ClientInterface,
	n notifier.Notifier,
	logger *zap.Logger,
	m *metrics.Metrics,
	upload config.UploadConfig,
) *StorageService {
	return &StorageService{
		db:       db,
		s3Client: s3Client,
		notifier: n,
		logger:   logger,
		metrics:  m,
		upload:   upload,
	}
}

// GetUploadURL issues a 10-minute write capability for a fresh storage
// key. It touches no metadata; the attachment row is only created on
// confirmation.
func (s *StorageService) GetUploadURL(ctx context.Context, projectID uuid.UUID, fileName, mimeType string, size int64) (*dto.SignUploadURLResponse, error) {
	if err := s.validateUpload(fileName, mimeType, size); err != nil {
		return nil, err
	}

	key := s.s3Client.GenerateFileKey(projectID, fileName)

	uploadURL, err := s.s3Client.PresignUpload(ctx, key, mimeType)
	if err != nil {
		s.logger.Error("Failed to presign upload URL",
			zap.String("project_id", projectID.String()),
			zap.Error(err),
		)
		return nil, response.NewAppError(response.ErrCodeStorage, "Failed to authorize upload", err.Error())
	}

	return &dto.SignUploadURLResponse{
		UploadURL: uploadURL,
		Key:       key,
		ExpiresIn: int(client.UploadURLExpiry.Seconds()),
	}, nil
}

// ConfirmUpload reconciles metadata after the caller has placed bytes
// at the given key.
//
// A project owns at most one attachment: an existing row is deleted in
// the same transaction that inserts the new one, so no reader ever
// observes two. The replaced object's deletion is best-effort; a
// failure leaves an orphaned object in the cleanup queue and never
// fails the request.
func (s *StorageService) ConfirmUpload(ctx context.Context, projectID uuid.UUID, req dto.ConfirmUploadRequest) (*domain.Attachment, error) {
	if req.Key == "" {
		return nil, response.NewAppError(response.ErrCodeValidation, "Storage key is required", "")
	}
	if err := s.validateUpload(req.FileName, req.MimeType, req.Size); err != nil {
		return nil, err
	}

	attachment := &domain.Attachment{
		BaseModel:  domain.BaseModel{ID: uuid.New()},
		ProjectID:  projectID,
		FileName:   req.FileName,
		MimeType:   req.MimeType,
		Size:       req.Size,
		StorageKey: req.Key,
	}

	var replacedKey string

	err := s.db.Transaction(func(tx *gorm.DB) error {
		attachmentRepo := repository.NewAttachmentRepository(tx)

		existing, err := attachmentRepo.FindByProjectID(ctx, projectID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if existing != nil {
			if err := attachmentRepo.Delete(ctx, existing.ID); err != nil {
				return err
			}
			replacedKey = existing.StorageKey
		}

		if err := attachmentRepo.Create(ctx, attachment); err != nil {
			return err
		}

		return repository.NewAuditLogRepository(tx).Create(ctx, &domain.AuditLog{
			BaseModel: domain.BaseModel{ID: uuid.New()},
			ProjectID: projectID,
			Action:    domain.LogActionFileUploaded,
			ActorRole: domain.ActorRoleAdmin,
		})
	})
	if err != nil {
		return nil, err
	}

	if replacedKey != "" {
		s.cleanupObject(ctx, replacedKey)
	}

	if s.metrics != nil {
		s.metrics.IncrementUpload()
	}

	s.notifier.Emit(ctx, projectID, notifier.EventFileUpdated, map[string]interface{}{
		"fileId":   attachment.ID,
		"filename": attachment.FileName,
	})

	return attachment, nil
}

// GetDownloadURL issues a 1-hour read capability for an attachment.
// An attachment that does not exist and one that belongs to another
// project both fail NotFound.
func (s *StorageService) GetDownloadURL(ctx context.Context, fileID, projectID uuid.UUID) (*dto.DownloadURLResponse, error) {
	attachment, err := repository.NewAttachmentRepository(s.db).FindByIDAndProjectID(ctx, fileID, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewAppError(response.ErrCodeNotFound, "File not found", "")
		}
		return nil, err
	}

	url, err := s.s3Client.PresignDownload(ctx, attachment.StorageKey, attachment.FileName)
	if err != nil {
		s.logger.Error("Failed to presign download URL",
			zap.String("file_id", fileID.String()),
			zap.Error(err),
		)
		return nil, response.NewAppError(response.ErrCodeStorage, "Failed to authorize download", err.Error())
	}

	return &dto.DownloadURLResponse{
		URL:      url,
		FileName: attachment.FileName,
	}, nil
}

// DeleteAttachment removes an attachment. Object store cleanup is
// best-effort and uniform with the replacement path: a failed object
// deletion is queued for the cleanup job, and the metadata row is
// removed either way.
func (s *StorageService) DeleteAttachment(ctx context.Context, fileID, projectID uuid.UUID) error {
	attachment, err := repository.NewAttachmentRepository(s.db).FindByIDAndProjectID(ctx, fileID, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewAppError(response.ErrCodeNotFound, "File not found", "")
		}
		return err
	}

	s.cleanupObject(ctx, attachment.StorageKey)

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := repository.NewAttachmentRepository(tx).Delete(ctx, attachment.ID); err != nil {
			return err
		}
		return repository.NewAuditLogRepository(tx).Create(ctx, &domain.AuditLog{
			BaseModel: domain.BaseModel{ID: uuid.New()},
			ProjectID: projectID,
			Action:    domain.LogActionFileDeleted,
			ActorRole: domain.ActorRoleAdmin,
		})
	})
}

// ListAttachments lists a project's attachments for the dashboard
func (s *StorageService) ListAttachments(ctx context.Context, projectID uuid.UUID) ([]dto.AttachmentResponse, error) {
	attachments, err := repository.NewAttachmentRepository(s.db).ListByProjectID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.AttachmentResponse, 0, len(attachments))
	for _, a := range attachments {
		responses = append(responses, dto.ToAttachmentResponse(a, ""))
	}
	return responses, nil
}

// validateUpload enforces the MIME allow-list and the size ceiling
func (s *StorageService) validateUpload(fileName, mimeType string, size int64) error {
	if fileName == "" {
		return response.NewAppError(response.ErrCodeValidation, "Filename is required", "")
	}

	allowed := false
	for _, m := range s.upload.AllowedMimeTypes {
		if m == mimeType {
			allowed = true
			break
		}
	}
	if !allowed {
		return response.NewAppError(response.ErrCodeValidation,
			"Invalid file type. Only PNG, JPG, WEBP, JPEG and PDF are allowed.", mimeType)
	}

	if size <= 0 || size > s.upload.MaxFileSize {
		return response.NewAppError(response.ErrCodeValidation,
			fmt.Sprintf("Invalid file size. Maximum size is %dMB.", s.upload.MaxFileSize/(1024*1024)), "")
	}

	return nil
}

// cleanupObject deletes an object from the store best-effort. On
// failure the key lands in the orphan queue for the cleanup job.
func (s *StorageService) cleanupObject(ctx context.Context, storageKey string) {
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
