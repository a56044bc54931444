package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"signoff-api/internal/middleware"
)

// projectIDFromContext reads the project ID set by the auth middleware
func projectIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(middleware.ContextKeyProjectID)
	if !exists {
		return uuid.Nil, false
	}
	projectID, ok := value.(uuid.UUID)
	return projectID, ok
}

// adminTokenFromContext reads the raw admin token set by the auth middleware
func adminTokenFromContext(c *gin.Context) (string, bool) {
	value, exists := c.Get(middleware.ContextKeyAdminToken)
	if !exists {
		return "", false
	}
	token, ok := value.(string)
	return token, ok
}
