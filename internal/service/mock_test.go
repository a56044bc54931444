package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"signoff-api/internal/client"
	"signoff-api/internal/config"
	"signoff-api/internal/database"
)

// setupTestDB creates an in-memory SQLite database with the full schema
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// emittedEvent is one recorded notification
type emittedEvent struct {
	ProjectID uuid.UUID
	Event     string
	Payload   interface{}
}

// recordingNotifier captures emitted events for assertions
type recordingNotifier struct {
	mu     sync.Mutex
	events []emittedEvent
}

func (n *recordingNotifier) Emit(ctx context.Context, projectID uuid.UUID, event string, payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, emittedEvent{ProjectID: projectID, Event: event, Payload: payload})
}

func (n *recordingNotifier) Events() []emittedEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]emittedEvent, len(n.events))
	copy(out, n.events)
	return out
}

// testUploadConfig mirrors the production upload defaults
func testUploadConfig() config.UploadConfig {
	return config.UploadConfig{
		MaxFileSize: 50 * 1024 * 1024,
		AllowedMimeTypes: []string{
			"image/png",
			"image/jpeg",
			"image/jpg",
			"image/webp",
			"application/pdf",
		},
	}
}

// newTestProjectService wires a ProjectService over a fresh test database
func newTestProjectService(t *testing.T) (*ProjectService, *gorm.DB, *client.MockS3Client, *recordingNotifier) {
	t.Helper()

	db := setupTestDB(t)
	s3 := client.NewMockS3Client()
	n := &recordingNotifier{}
	svc := NewProjectService(db, s3, n, zap.NewNop(), nil)
	return svc, db, s3, n
}

// newTestStorageService wires a StorageService over an existing test database
func newTestStorageService(t *testing.T, db *gorm.DB, s3 *client.MockS3Client, n *recordingNotifier) *StorageService {
	t.Helper()
	return NewStorageService(db, s3, n, zap.NewNop(), nil, testUploadConfig())
}
