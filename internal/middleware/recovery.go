package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"signoff-api/internal/response"
)

// Recovery converts handler panics into a 500 envelope instead of a
// dropped connection.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			logger.Error("Panic recovered",
				zap.Any("panic", r),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.ByteString("stack", debug.Stack()),
			)

			response.SendError(c, http.StatusInternalServerError,
				response.ErrCodeInternal, "Internal server error")
			c.Abort()
		}()

		c.Next()
	}
}
