package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"signoff-api/internal/domain"
)

// models lists every domain model, in dependency order
func models() []interface{} {
	return []interface{}{
		&domain.Project{},
		&domain.Attachment{},
		&domain.Decision{},
		&domain.AuditLog{},
		&domain.OrphanedObject{},
	}
}

// AutoMigrate runs GORM auto-migration for all domain models. Tables,
// indexes and foreign key constraints come from the struct tags in the
// domain package.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models()...); err != nil {
		return fmt.Errorf("failed to run auto-migration: %w", err)
	}
	return nil
}

// AutoMigrateWithRetry runs AutoMigrate with linear backoff. The
// database may still be coming up when the pod starts.
func AutoMigrateWithRetry(db *gorm.DB, logger *zap.Logger, maxRetries int) error {
	var err error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = AutoMigrate(db)
		if err == nil {
			logger.Info("Auto-migration completed",
				zap.Int("attempt", attempt),
			)
			return nil
		}

		if attempt < maxRetries {
			backoff := time.Duration(attempt) * time.Second
			logger.Warn("Migration attempt failed, retrying",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
				zap.Error(err),
			)
			time.Sleep(backoff)
		}
	}

	return fmt.Errorf("migration failed after %d attempts: %w", maxRetries, err)
}
