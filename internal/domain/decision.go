package domain

import (
	"github.com/google/uuid"
)

// DecisionType represents a client verdict on a project
type DecisionType string

const (
	DecisionApproved         DecisionType = "APPROVED"
	DecisionChangesRequested DecisionType = "CHANGES_REQUESTED"
)

// Valid reports whether the decision type is one of the known verdicts
func (d DecisionType) Valid() bool {
	return d == DecisionApproved || d == DecisionChangesRequested
}

// Status maps a decision 1:1 onto the resulting project status
func (d DecisionType) Status() ProjectStatus {
	if d == DecisionApproved {
		return ProjectStatusApproved
	}
	return ProjectStatusChangesRequested
}

// Decision is an immutable client verdict. Rows are append-only and
// ordered by creation time; they are never updated or deleted except
// through the owning project's cascade.
type Decision struct {
	BaseModel
	ProjectID uuid.UUID    `gorm:"type:uuid;not null;index:idx_decisions_project_id" json:"project_id"`
	Type      DecisionType `gorm:"type:varchar(50);not null" json:"type"`
	Comment   string       `gorm:"type:text" json:"comment"`
	ActorRole ActorRole    `gorm:"type:varchar(50);not null;default:'CLIENT'" json:"actor_role"`
	IPAddress string       `gorm:"type:varchar(64)" json:"ip_address,omitempty"`
	UserAgent string       `gorm:"type:varchar(512)" json:"user_agent,omitempty"`
}

// TableName specifies the table name for Decision
func (Decision) TableName() string {
	return "decisions"
}
