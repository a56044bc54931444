package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"signoff-api/internal/domain"
)

// AuditLogRepository defines the interface for audit trail access.
// The trail is append-only.
type AuditLogRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
	ListByProjectID(ctx context.Context, projectID uuid.UUID) ([]*domain.AuditLog, error)
	CountByProjectAndAction(ctx context.Context, projectID uuid.UUID, action domain.LogAction) (int64, error)
	DeleteByProjectID(ctx context.Context, projectID uuid.UUID) error
}

// auditLogRepositoryImpl is the GORM implementation of AuditLogRepository
type auditLogRepositoryImpl struct {
	db *gorm.DB
}

// NewAuditLogRepository creates a new instance of AuditLogRepository
func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &auditLogRepositoryImpl{db: db}
}

// Create appends a new audit log entry
func (r *auditLogRepositoryImpl) Create(ctx context.Context, entry *domain.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListByProjectID lists the audit trail for a project, newest first
func (r *auditLogRepositoryImpl) ListByProjectID(ctx context.Context, projectID uuid.UUID) ([]*domain.AuditLog, error) {
	var entries []*domain.AuditLog
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// CountByProjectAndAction counts audit entries of one action type
func (r *auditLogRepositoryImpl) CountByProjectAndAction(ctx context.Context, projectID uuid.UUID, action domain.LogAction) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&domain.AuditLog{}).
		Where("project_id = ? AND action = ?", projectID, action).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteByProjectID removes the audit trail for a project (cascade path only)
func (r *auditLogRepositoryImpl) DeleteByProjectID(ctx context.Context, projectID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.AuditLog{}, "project_id = ?", projectID).Error
}
