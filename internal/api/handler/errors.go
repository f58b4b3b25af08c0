package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/martijn/clientdesk/internal/api/dto"
	"github.com/martijn/clientdesk/internal/core/domain"
)

// writeError maps validation and conflict errors to 400 and 409, and
// anything else to 500.
func writeError(c *gin.Context, logger *slog.Logger, message string, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Bad Request",
			Message: validationErr.Message,
			Code:    http.StatusBadRequest,
			Field:   validationErr.Field,
		})
		return
	}

	var conflictErr *domain.ConflictError
	if errors.As(err, &conflictErr) {
		c.JSON(http.StatusConflict, dto.ErrorResponse{
			Error:   "Conflict",
			Message: conflictErr.Error(),
			Code:    http.StatusConflict,
			Field:   conflictErr.Field,
		})
		return
	}

	internalError(c, logger, message, err)
}

func internalError(c *gin.Context, logger *slog.Logger, message string, err error) {
	logger.ErrorContext(c.Request.Context(), message, "error", err, "path", c.Request.URL.Path)
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error:   "Internal Server Error",
		Message: message,
		Code:    http.StatusInternalServerError,
	})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error:   "Bad Request",
		Message: message,
		Code:    http.StatusBadRequest,
	})
}
