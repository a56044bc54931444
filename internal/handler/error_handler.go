package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"signoff-api/internal/response"
)

var statusByErrorCode = map[string]int{
	response.ErrCodeNotFound:      http.StatusNotFound,
	response.ErrCodeValidation:    http.StatusBadRequest,
	response.ErrCodeUnauthorized:  http.StatusUnauthorized,
	response.ErrCodeForbidden:     http.StatusForbidden,
	response.ErrCodeLocked:        http.StatusLocked,
	response.ErrCodeGone:          http.StatusGone,
	response.ErrCodeAlreadyExists: http.StatusConflict,
	response.ErrCodeStorage:       http.StatusBadGateway,
}

// handleServiceError translates service errors into the response envelope.
// Anything unmapped is a 500 with a generic message so internals never
// leak to the client.
func handleServiceError(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.SendError(c, http.StatusNotFound, response.ErrCodeNotFound, "Resource not found")
		return
	}

	var appErr *response.AppError
	if errors.As(err, &appErr) {
		status, ok := statusByErrorCode[appErr.Code]
		if !ok {
			status = http.StatusInternalServerError
		}
		response.SendError(c, status, appErr.Code, appErr.Message)
		return
	}

	response.SendError(c, http.StatusInternalServerError, response.ErrCodeInternal, "Internal server error")
}
