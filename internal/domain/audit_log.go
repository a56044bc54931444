package domain

import (
	"github.com/google/uuid"
)

// LogAction enumerates every state-changing or view action recorded
// in a project's audit trail
type LogAction string

const (
	LogActionProjectCreated         LogAction = "PROJECT_CREATED"
	LogActionProjectUpdated         LogAction = "PROJECT_UPDATED"
	LogActionClientViewed           LogAction = "CLIENT_VIEWED"
	LogActionClientApproved         LogAction = "CLIENT_APPROVED"
	LogActionClientRequestedChanges LogAction = "CLIENT_REQUESTED_CHANGES"
	LogActionFileUploaded           LogAction = "FILE_UPLOADED"
	LogActionFileDeleted            LogAction = "FILE_DELETED"
)

// AuditLog is an immutable, append-only event record. Entries are
// created alongside the state change they document and only removed
// through the owning project's cascade.
type AuditLog struct {
	BaseModel
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index:idx_audit_logs_project_id" json:"project_id"`
	Action    LogAction `gorm:"type:varchar(50);not null" json:"action"`
	ActorRole ActorRole `gorm:"type:varchar(50);not null" json:"actor_role"`
	IPAddress string    `gorm:"type:varchar(64)" json:"ip_address,omitempty"`
	UserAgent string    `gorm:"type:varchar(512)" json:"user_agent,omitempty"`
}

// TableName specifies the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}
