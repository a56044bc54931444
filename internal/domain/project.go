package domain

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// ProjectStatus represents the approval state of a project
type ProjectStatus string

const (
	ProjectStatusPending          ProjectStatus = "PENDING"
	ProjectStatusApproved         ProjectStatus = "APPROVED"
	ProjectStatusChangesRequested ProjectStatus = "CHANGES_REQUESTED"
)

// ActorRole identifies who performed an action on a project
type ActorRole string

const (
	ActorRoleAdmin  ActorRole = "ADMIN"
	ActorRoleClient ActorRole = "CLIENT"
)

// DefaultExpirationDays is the initial link validity window for new projects
const DefaultExpirationDays = 30

// Project represents a sign-off project shared with a client.
// AdminToken grants full control, PublicToken grants view + decision only.
type Project struct {
	BaseModel
	Name        string        `gorm:"type:varchar(255);not null" json:"name"`
	AdminToken  string        `gorm:"type:varchar(64);not null;uniqueIndex:uq_projects_admin_token" json:"admin_token"`
	PublicToken string        `gorm:"type:varchar(64);not null;uniqueIndex:uq_projects_public_token" json:"public_token"`
	Status      ProjectStatus `gorm:"type:varchar(50);not null;default:'PENDING';index:idx_projects_status" json:"status"`
	ExpiresAt   *time.Time    `gorm:"type:timestamp;index:idx_projects_expires_at" json:"expires_at,omitempty"`

	Attachment *Attachment `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"attachment,omitempty"`
	Decisions  []Decision  `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"decisions,omitempty"`
	AuditLogs  []AuditLog  `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"audit_logs,omitempty"`
}

// TableName specifies the table name for Project
func (Project) TableName() string {
	return "projects"
}

// IsLocked returns true once the project has reached the terminal APPROVED state
func (p *Project) IsLocked() bool {
	return p.Status == ProjectStatusApproved
}

// IsExpired returns true if the public link validity window is strictly in the past
func (p *Project) IsExpired(now time.Time) bool {
	return p.ExpiresAt != nil && p.ExpiresAt.Before(now)
}

// NewCapabilityToken generates an unguessable capability token.
// 32 bytes of entropy, hex encoded.
func NewCapabilityToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return hex.EncodeToString(buf)
}
