package rest

import (
	"errors"
	"net/http"

	"github.com/InfinyLoop-Nexus/Oracle/internal/common"
	"github.com/gin-gonic/gin"
)

var badRequest = []error{
	common.ErrInvariantViolation,
	common.ErrUseSelfServiceRoute,
	common.ErrAlreadyLinked,
	common.ErrAlreadyExists,
	common.ErrIDNotAllowedForCreate,
	common.ErrAlreadyAdmin,
	common.ErrNotAdmin,
}

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	var verr *common.ValidationError
	switch {
	case errors.Is(err, common.ErrUnauthenticated), errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrConflict):
		return http.StatusConflict
	case errors.As(err, &verr):
		return http.StatusBadRequest
	}
	for _, target := range badRequest {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

// respondError writes {"detail": ...}. Validation errors list every problem;
// internal errors are logged and hidden behind a generic message.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := statusFor(err)

	var detail any = err.Error()
	var verr *common.ValidationError
	switch {
	case errors.As(err, &verr):
		detail = verr.Problems
	case status == http.StatusUnauthorized && errors.Is(err, common.ErrUnauthenticated):
		detail = common.ErrUnauthenticated.Error()
	case status == http.StatusConflict:
		detail = common.ErrConflict.Error()
	case status == http.StatusInternalServerError:
		h.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		detail = "internal server error"
	}

	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

func (h *Handler) badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": msg})
}
