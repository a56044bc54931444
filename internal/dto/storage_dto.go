package dto

import (
	"time"

	"github.com/google/uuid"

	"signoff-api/internal/domain"
)

// SignUploadURLRequest asks for a presigned PUT capability
type SignUploadURLRequest struct {
	FileName string `json:"filename" binding:"required,max=255"`
	MimeType string `json:"mimetype" binding:"required,max=100"`
	Size     int64  `json:"size" binding:"required,min=1"`
}

// SignUploadURLResponse carries the time-boxed write capability
type SignUploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	Key       string `json:"key"`
	ExpiresIn int    `json:"expiresIn"` // seconds
}

// ConfirmUploadRequest reconciles metadata after the client has
// uploaded bytes directly to the object store
type ConfirmUploadRequest struct {
	Key      string `json:"key" binding:"required,max=512"`
	FileName string `json:"filename" binding:"required,max=255"`
	MimeType string `json:"mimetype" binding:"required,max=100"`
	Size     int64  `json:"size" binding:"required,min=1"`
}

// AttachmentResponse is the attachment metadata returned to the admin
type AttachmentResponse struct {
	ID         uuid.UUID `json:"id"`
	ProjectID  uuid.UUID `json:"projectId"`
	FileName   string    `json:"filename"`
	MimeType   string    `json:"mimeType"`
	Size       int64     `json:"size"`
	StorageKey string    `json:"storageKey"`
	URL        string    `json:"url,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ToAttachmentResponse converts a domain attachment to its response form
func ToAttachmentResponse(a *domain.Attachment, url string) AttachmentResponse {
	return AttachmentResponse{
		ID:         a.ID,
		ProjectID:  a.ProjectID,
		FileName:   a.FileName,
		MimeType:   a.MimeType,
		Size:       a.Size,
		StorageKey: a.StorageKey,
		URL:        url,
		CreatedAt:  a.CreatedAt,
	}
}

// DownloadURLResponse carries the time-boxed read capability
type DownloadURLResponse struct {
	URL      string `json:"url"`
	FileName string `json:"filename"`
}
