package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"signoff-api/internal/domain"
)

// AttachmentRepository defines the interface for attachment data access
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *domain.Attachment) error
	FindByProjectID(ctx context.Context, projectID uuid.UUID) (*domain.Attachment, error)
	FindByIDAndProjectID(ctx context.Context, id, projectID uuid.UUID) (*domain.Attachment, error)
	ListByProjectID(ctx context.Context, projectID uuid.UUID) ([]*domain.Attachment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByProjectID(ctx context.Context, projectID uuid.UUID) error
}

// attachmentRepositoryImpl is the GORM implementation of AttachmentRepository
type attachmentRepositoryImpl struct {
	db *gorm.DB
}

// NewAttachmentRepository creates a new instance of AttachmentRepository
func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepositoryImpl{db: db}
}

// Create creates a new attachment record
func (r *attachmentRepositoryImpl) Create(ctx context.Context, attachment *domain.Attachment) error {
	return r.db.WithContext(ctx).Create(attachment).Error
}

// FindByProjectID finds the attachment owned by a project.
// A project owns at most one attachment.
func (r *attachmentRepositoryImpl) FindByProjectID(ctx context.Context, projectID uuid.UUID) (*domain.Attachment, error) {
	var attachment domain.Attachment
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		First(&attachment).Error; err != nil {
		return nil, err
	}
	return &attachment, nil
}

// FindByIDAndProjectID finds an attachment by ID scoped to a project.
// A missing attachment and one owned by another project are
// indistinguishable to the caller.
func (r *attachmentRepositoryImpl) FindByIDAndProjectID(ctx context.Context, id, projectID uuid.UUID) (*domain.Attachment, error) {
	var attachment domain.Attachment
	if err := r.db.WithContext(ctx).
		Where("id = ? AND project_id = ?", id, projectID).
		First(&attachment).Error; err != nil {
		return nil, err
	}
	return &attachment, nil
}

// ListByProjectID lists attachments for a project, newest first
func (r *attachmentRepositoryImpl) ListByProjectID(ctx context.Context, projectID uuid.UUID) ([]*domain.Attachment, error) {
	var attachments []*domain.Attachment
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&attachments).Error; err != nil {
		return nil, err
	}
	return attachments, nil
}

// Delete removes an attachment record
func (r *attachmentRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Attachment{}, "id = ?", id).Error
}

// DeleteByProjectID removes all attachment records for a project
func (r *attachmentRepositoryImpl) DeleteByProjectID(ctx context.Context, projectID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Attachment{}, "project_id = ?", projectID).Error
}
