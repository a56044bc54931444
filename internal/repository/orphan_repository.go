package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"signoff-api/internal/domain"
)

// OrphanedObjectRepository tracks storage keys whose best-effort
// deletion failed so the cleanup job can retry them
type OrphanedObjectRepository interface {
	Enqueue(ctx context.Context, storageKey string) error
	ListPending(ctx context.Context, limit int) ([]*domain.OrphanedObject, error)
	MarkAttempt(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// orphanedObjectRepositoryImpl is the GORM implementation of OrphanedObjectRepository
type orphanedObjectRepositoryImpl struct {
	db *gorm.DB
}

// NewOrphanedObjectRepository creates a new instance of OrphanedObjectRepository
func NewOrphanedObjectRepository(db *gorm.DB) OrphanedObjectRepository {
	return &orphanedObjectRepositoryImpl{db: db}
}

// Enqueue records a storage key for retried deletion. Re-enqueueing
// the same key is a no-op.
func (r *orphanedObjectRepositoryImpl) Enqueue(ctx context.Context, storageKey string) error {
	orphan := &domain.OrphanedObject{
		ID:         uuid.New(),
		StorageKey: storageKey,
		CreatedAt:  time.Now().UTC(),
	}
	err := r.db.WithContext(ctx).Create(orphan).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil
	}
	return err
}

// ListPending returns up to limit orphaned objects, oldest first
func (r *orphanedObjectRepositoryImpl) ListPending(ctx context.Context, limit int) ([]*domain.OrphanedObject, error) {
	var orphans []*domain.OrphanedObject
	if err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Limit(limit).
		Find(&orphans).Error; err != nil {
		return nil, err
	}
	return orphans, nil
}

// MarkAttempt increments the retry counter on an orphaned object
func (r *orphanedObjectRepositoryImpl) MarkAttempt(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&domain.OrphanedObject{}).
		Where("id = ?", id).
		UpdateColumn("attempts", gorm.Expr("attempts + 1")).Error
}

// Delete removes a reconciled orphan record
func (r *orphanedObjectRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.OrphanedObject{}, "id = ?", id).Error
}
