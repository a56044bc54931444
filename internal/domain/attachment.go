package domain

import (
	"time"

	"github.com/google/uuid"
)

// Attachment represents the single file attached to a project.
// The unique index on ProjectID enforces the one-file-per-project rule
// at the storage layer; replacement is delete-then-insert in one
// transaction.
type Attachment struct {
	BaseModel
	ProjectID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_attachments_project_id" json:"project_id"`
	FileName   string    `gorm:"type:varchar(255);not null" json:"file_name"`
	MimeType   string    `gorm:"type:varchar(100);not null" json:"mime_type"`
	Size       int64     `gorm:"not null" json:"size"`
	StorageKey string    `gorm:"type:varchar(512);not null;uniqueIndex:uq_attachments_storage_key" json:"storage_key"`
}

// TableName specifies the table name for Attachment
func (Attachment) TableName() string {
	return "attachments"
}

// OrphanedObject records a storage key whose best-effort deletion
// failed. The cleanup job retries these until the object store
// catches up with the metadata store.
type OrphanedObject struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StorageKey string    `gorm:"type:varchar(512);not null;uniqueIndex:uq_orphaned_objects_storage_key" json:"storage_key"`
	Attempts   int       `gorm:"not null;default:0" json:"attempts"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

// TableName specifies the table name for OrphanedObject
func (OrphanedObject) TableName() string {
	return "orphaned_objects"
}
