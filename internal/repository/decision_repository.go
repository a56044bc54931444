package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"signoff-api/internal/domain"
)

// DecisionRepository defines the interface for decision data access.
// Decisions are append-only; there are no update or single-row delete
// operations by design.
type DecisionRepository interface {
	Create(ctx context.Context, decision *domain.Decision) error
	FindLatestByProjectID(ctx context.Context, projectID uuid.UUID) (*domain.Decision, error)
	ListByProjectID(ctx context.Context, projectID uuid.UUID) ([]*domain.Decision, error)
	CountByProjectID(ctx context.Context, projectID uuid.UUID) (int64, error)
	DeleteByProjectID(ctx context.Context, projectID uuid.UUID) error
}

// decisionRepositoryImpl is the GORM implementation of DecisionRepository
type decisionRepositoryImpl struct {
	db *gorm.DB
}

// NewDecisionRepository creates a new instance of DecisionRepository
func NewDecisionRepository(db *gorm.DB) DecisionRepository {
	return &decisionRepositoryImpl{db: db}
}

// Create appends a new decision
func (r *decisionRepositoryImpl) Create(ctx context.Context, decision *domain.Decision) error {
	return r.db.WithContext(ctx).Create(decision).Error
}

// FindLatestByProjectID returns the most recent decision for a project
func (r *decisionRepositoryImpl) FindLatestByProjectID(ctx context.Context, projectID uuid.UUID) (*domain.Decision, error) {
	var decision domain.Decision
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		First(&decision).Error; err != nil {
		return nil, err
	}
	return &decision, nil
}

// ListByProjectID lists all decisions for a project, newest first
func (r *decisionRepositoryImpl) ListByProjectID(ctx context.Context, projectID uuid.UUID) ([]*domain.Decision, error) {
	var decisions []*domain.Decision
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&decisions).Error; err != nil {
		return nil, err
	}
	return decisions, nil
}

// CountByProjectID counts decisions recorded for a project
func (r *decisionRepositoryImpl) CountByProjectID(ctx context.Context, projectID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&domain.Decision{}).
		Where("project_id = ?", projectID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteByProjectID removes all decisions for a project (cascade path only)
func (r *decisionRepositoryImpl) DeleteByProjectID(ctx context.Context, projectID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Decision{}, "project_id = ?", projectID).Error
}
