package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"signoff-api/internal/domain"
)

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Project, error)
	FindByAdminToken(ctx context.Context, token string) (*domain.Project, error)
	FindByPublicToken(ctx context.Context, token string) (*domain.Project, error)
	FindByEitherToken(ctx context.Context, token string) (*domain.Project, error)
	FindByAdminTokenWithRelations(ctx context.Context, token string) (*domain.Project, error)
	FindByPublicTokenWithAttachment(ctx context.Context, token string) (*domain.Project, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ProjectStatus) error
	UpdateExpiration(ctx context.Context, id uuid.UUID, expiresAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// projectRepositoryImpl is the GORM implementation of ProjectRepository
type projectRepositoryImpl struct {
	db *gorm.DB
}

// NewProjectRepository creates a new instance of ProjectRepository.
// Pass a transaction handle to scope all operations to that transaction.
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepositoryImpl{db: db}
}

// Create creates a new project
func (r *projectRepositoryImpl) Create(ctx context.Context, project *domain.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

// FindByID finds a project by its ID
func (r *projectRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	var project domain.Project
	if err := r.db.WithContext(ctx).First(&project, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// FindByAdminToken finds a project by its admin capability token
func (r *projectRepositoryImpl) FindByAdminToken(ctx context.Context, token string) (*domain.Project, error) {
	var project domain.Project
	if err := r.db.WithContext(ctx).
		Where("admin_token = ?", token).
		First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// FindByPublicToken finds a project by its public capability token
func (r *projectRepositoryImpl) FindByPublicToken(ctx context.Context, token string) (*domain.Project, error) {
	var project domain.Project
	if err := r.db.WithContext(ctx).
		Where("public_token = ?", token).
		First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// FindByEitherToken finds a project whose admin token or public token
// matches. Callers decide the role by comparing against AdminToken.
func (r *projectRepositoryImpl) FindByEitherToken(ctx context.Context, token string) (*domain.Project, error) {
	var project domain.Project
	if err := r.db.WithContext(ctx).
		Where("admin_token = ? OR public_token = ?", token, token).
		First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// FindByAdminTokenWithRelations loads the project with its attachment
// and full audit trail, newest entries first
func (r *projectRepositoryImpl) FindByAdminTokenWithRelations(ctx context.Context, token string) (*domain.Project, error) {
	var project domain.Project
	if err := r.db.WithContext(ctx).
		Preload("Attachment").
		Preload("AuditLogs", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Where("admin_token = ?", token).
		First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// FindByPublicTokenWithAttachment loads the project with its attachment
func (r *projectRepositoryImpl) FindByPublicTokenWithAttachment(ctx context.Context, token string) (*domain.Project, error) {
	var project domain.Project
	if err := r.db.WithContext(ctx).
		Preload("Attachment").
		Where("public_token = ?", token).
		First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// UpdateStatus updates the project status
func (r *projectRepositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ProjectStatus) error {
	return r.db.WithContext(ctx).
		Model(&domain.Project{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now().UTC(),
		}).Error
}

// UpdateExpiration sets the project's link validity window
func (r *projectRepositoryImpl) UpdateExpiration(ctx context.Context, id uuid.UUID, expiresAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&domain.Project{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"expires_at": expiresAt,
			"updated_at": time.Now().UTC(),
		}).Error
}

// Delete removes a project. Attachment, decisions and audit logs
// cascade at the database level.
func (r *projectRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Project{}, "id = ?", id).Error
}
