package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"signoff-api/internal/dto"
	"signoff-api/internal/response"
	"signoff-api/internal/service"
)

// StorageHandler handles file upload, download and deletion endpoints.
// All routes sit behind the admin auth middleware.
type StorageHandler struct {
	storageService *service.StorageService
}

// NewStorageHandler creates a new StorageHandler
func NewStorageHandler(storageService *service.StorageService) *StorageHandler {
	return &StorageHandler{storageService: storageService}
}

// SignUploadURL issues a presigned PUT capability for a new file
func (h *StorageHandler) SignUploadURL(c *gin.Context) {
	projectID, ok := projectIDFromContext(c)
	if !ok {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Project ID not found in context")
		return
	}

	var req dto.SignUploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "filename, mimetype and size are required")
		return
	}

	result, err := h.storageService.GetUploadURL(c.Request.Context(), projectID, req.FileName, req.MimeType, req.Size)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, result)
}

// ConfirmUpload reconciles metadata after the bytes have been uploaded
func (h *StorageHandler) ConfirmUpload(c *gin.Context) {
	projectID, ok := projectIDFromContext(c)
	if !ok {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Project ID not found in context")
		return
	}

	var req dto.ConfirmUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "key, filename, mimetype and size are required")
		return
	}

	attachment, err := h.storageService.ConfirmUpload(c.Request.Context(), projectID, req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, dto.ToAttachmentResponse(attachment, ""))
}

// ListFiles lists the project's attachment metadata
func (h *StorageHandler) ListFiles(c *gin.Context) {
	projectID, ok := projectIDFromContext(c)
	if !ok {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Project ID not found in context")
		return
	}

	files, err := h.storageService.ListAttachments(c.Request.Context(), projectID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, files)
}

// GetDownloadURL issues a presigned GET capability for an attachment
func (h *StorageHandler) GetDownloadURL(c *gin.Context) {
	projectID, ok := projectIDFromContext(c)
	if !ok {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Project ID not found in context")
		return
	}

	fileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid file ID")
		return
	}

	result, err := h.storageService.GetDownloadURL(c.Request.Context(), fileID, projectID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, result)
}

// DeleteFile removes an attachment
func (h *StorageHandler) DeleteFile(c *gin.Context) {
	projectID, ok := projectIDFromContext(c)
	if !ok {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Project ID not found in context")
		return
	}

	fileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid file ID")
		return
	}

	if err := h.storageService.DeleteAttachment(c.Request.Context(), fileID, projectID); err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, map[string]string{"message": "File deleted successfully"})
}
