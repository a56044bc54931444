package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"signoff-api/internal/dto"
	"signoff-api/internal/response"
	"signoff-api/internal/service"
)

// ProjectHandler handles project lifecycle and decision endpoints
type ProjectHandler struct {
	projectService *service.ProjectService
}

// NewProjectHandler creates a new ProjectHandler
func NewProjectHandler(projectService *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// CreateProject creates a new sign-off project. This is the only
// unauthenticated write: the response carries both capability tokens
// and is the caller's sole chance to record them.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Project name is required (1-255 characters)")
		return
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), req.Name)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, dto.ToProjectResponse(project))
}

// GetAdminView returns the full dashboard view for the authenticated
// admin token
func (h *ProjectHandler) GetAdminView(c *gin.Context) {
	adminToken, ok := adminTokenFromContext(c)
	if !ok {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Admin token not found in context")
		return
	}

	view, err := h.projectService.GetAdminView(c.Request.Context(), adminToken)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, view)
}

// GetPublicView returns the read-only client view behind the public link
func (h *ProjectHandler) GetPublicView(c *gin.Context) {
	token := c.Param("token")

	view, err := h.projectService.GetPublicView(c.Request.Context(), token, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, view)
}

// SubmitDecision records a client verdict against the public token
func (h *ProjectHandler) SubmitDecision(c *gin.Context) {
	token := c.Param("token")

	var req dto.SubmitDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Decision must be APPROVED or CHANGES_REQUESTED with an optional comment")
		return
	}

	result, err := h.projectService.SubmitDecision(
		c.Request.Context(), token, req.Decision, req.Comment,
		c.ClientIP(), c.Request.UserAgent(),
	)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, result)
}

// ExtendExpiration moves the link validity window forward
func (h *ProjectHandler) ExtendExpiration(c *gin.Context) {
	adminToken, ok := adminTokenFromContext(c)
	if !ok {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Admin token not found in context")
		return
	}

	var req dto.ExtendExpirationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Duration (days) must be a positive integer")
		return
	}

	project, err := h.projectService.ExtendExpiration(c.Request.Context(), adminToken, req.Days)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, dto.ToProjectResponse(project))
}

// DeleteProject destroys the project and everything it owns
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	adminToken, ok := adminTokenFromContext(c)
	if !ok {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Admin token not found in context")
		return
	}

	if err := h.projectService.DeleteProject(c.Request.Context(), adminToken); err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, map[string]string{"message": "Project deleted successfully"})
}
