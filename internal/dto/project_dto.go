package dto

import (
	"time"

	"github.com/google/uuid"

	"signoff-api/internal/domain"
)

// CreateProjectRequest represents the request to create a new sign-off project
type CreateProjectRequest struct {
	Name string `json:"name" binding:"required,min=1,max=255" example:"Logo Redesign"`
}

// ProjectResponse is the full project view returned to the admin on
// creation. The frontend is expected to persist adminToken.
type ProjectResponse struct {
	ID          uuid.UUID            `json:"id"`
	Name        string               `json:"name"`
	AdminToken  string               `json:"adminToken"`
	PublicToken string               `json:"publicToken"`
	Status      domain.ProjectStatus `json:"status"`
	ExpiresAt   *time.Time           `json:"expiresAt,omitempty"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// ToProjectResponse converts a domain project to its admin-facing response
func ToProjectResponse(p *domain.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		Name:        p.Name,
		AdminToken:  p.AdminToken,
		PublicToken: p.PublicToken,
		Status:      p.Status,
		ExpiresAt:   p.ExpiresAt,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// AuditLogResponse is a single audit trail entry
type AuditLogResponse struct {
	ID        uuid.UUID        `json:"id"`
	Action    domain.LogAction `json:"action"`
	ActorRole domain.ActorRole `json:"actorRole"`
	IPAddress string           `json:"ipAddress,omitempty"`
	UserAgent string           `json:"userAgent,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

// AdminViewResponse is the dashboard view: everything the admin needs,
// including the audit trail and the latest client comment.
type AdminViewResponse struct {
	ProjectResponse
	File          *AttachmentResponse `json:"file"`
	Logs          []AuditLogResponse  `json:"logs"`
	LatestComment string              `json:"latestComment,omitempty"`
}

// PublicFileResponse is the limited file projection shown to clients
type PublicFileResponse struct {
	FileID   uuid.UUID `json:"fileId"`
	FileName string    `json:"filename"`
	MimeType string    `json:"mimeType"`
	Size     int64     `json:"size"`
	URL      string    `json:"url,omitempty"`
}

// PublicViewResponse is the read-only client view behind the public link
type PublicViewResponse struct {
	Name           string               `json:"name"`
	Status         domain.ProjectStatus `json:"status"`
	ExpiresAt      *time.Time           `json:"expiresAt,omitempty"`
	File           *PublicFileResponse  `json:"file"`
	ClientFeedback string               `json:"clientFeedback,omitempty"`
}

// SubmitDecisionRequest represents a client verdict submission
type SubmitDecisionRequest struct {
	Decision domain.DecisionType `json:"decision" binding:"required,oneof=APPROVED CHANGES_REQUESTED"`
	Comment  string              `json:"comment" binding:"max=2000"`
}

// DecisionResponse reflects the project state after a decision
type DecisionResponse struct {
	Status    domain.ProjectStatus `json:"status"`
	UpdatedAt time.Time            `json:"updatedAt"`
	Comment   string               `json:"comment,omitempty"`
}

// ExtendExpirationRequest extends a project's link validity window
type ExtendExpirationRequest struct {
	Days int `json:"days" binding:"required,min=1" example:"30"`
}
