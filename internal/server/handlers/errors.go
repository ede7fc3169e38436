package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/turnos/internal/domain/models"
	"github.com/mamadbah2/turnos/internal/server/middleware"
)

var statusByErr = []struct {
	err    error
	status int
}{
	{models.ErrConflict, http.StatusConflict},
	{models.ErrNotFound, http.StatusNotFound},
	{models.ErrInvalidArgument, http.StatusBadRequest},
	{models.ErrOutOfRange, http.StatusBadRequest},
	{models.ErrInvalidState, http.StatusBadRequest},
	{models.ErrUnauthorized, http.StatusUnauthorized},
	{models.ErrForbidden, http.StatusForbidden},
}

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	for _, m := range statusByErr {
		if errors.Is(err, m.err) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}

// respondError writes err as {"error": "..."}. Unexpected errors are logged
// and answered with a generic message.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("request_id", middleware.RequestIDFrom(c)),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}
