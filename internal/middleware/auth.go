package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"signoff-api/internal/domain"
	"signoff-api/internal/response"
	"signoff-api/internal/service"
)

// Context keys set by AdminAuth for downstream handlers
const (
	ContextKeyProjectID  = "project_id"
	ContextKeyRole       = "role"
	ContextKeyAdminToken = "admin_token"
)

// AdminAuth returns a middleware that resolves the Bearer capability
// token and requires the admin role. Handlers behind it read the
// project ID from the context; they never see the raw token.
//
// A token that matches nothing and a public token presented on an
// admin route both fail Unauthorized, so probing cannot distinguish
// the two.
func AdminAuth(resolver service.TokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.SendError(c, http.StatusUnauthorized,
				response.ErrCodeUnauthorized, "Authorization header is required")
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.SendError(c, http.StatusUnauthorized,
				response.ErrCodeUnauthorized, "Invalid authorization header format")
			c.Abort()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		identity, err := resolver.Resolve(ctx, parts[1])
		if err != nil {
			var appErr *response.AppError
			if errors.As(err, &appErr) && appErr.Code != response.ErrCodeInternal {
				response.SendError(c, http.StatusUnauthorized,
					response.ErrCodeUnauthorized, "Invalid or unknown token")
			} else {
				response.SendError(c, http.StatusInternalServerError,
					response.ErrCodeInternal, "Internal server error")
			}
			c.Abort()
			return
		}

		if identity.Role != domain.ActorRoleAdmin {
			response.SendError(c, http.StatusUnauthorized,
				response.ErrCodeUnauthorized, "Invalid or unknown token")
			c.Abort()
			return
		}

		c.Set(ContextKeyProjectID, identity.ProjectID)
		c.Set(ContextKeyRole, identity.Role)
		c.Set(ContextKeyAdminToken, parts[1])

		c.Next()
	}
}
