package rest

import (
	"context"
	"strings"
	"time"

	"github.com/InfinyLoop-Nexus/Oracle/internal/server/services"
	"github.com/gin-gonic/gin"
)

const sessionKey = "session"

// Authenticator is implemented by services.Guard.
type Authenticator interface {
	RequireUser(ctx context.Context, token string) (*services.Session, error)
	RequireAdmin(ctx context.Context, token string) (*services.Session, error)
}

// extractToken returns the bearer token or "" when the header is missing or
// has another scheme.
func extractToken(c *gin.Context) string {
	scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func (h *Handler) requireUser() gin.HandlerFunc {
	return h.guarded(h.guard.RequireUser)
}

func (h *Handler) requireAdmin() gin.HandlerFunc {
	return h.guarded(h.guard.RequireAdmin)
}

func (h *Handler) guarded(check func(context.Context, string) (*services.Session, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := check(c.Request.Context(), extractToken(c))
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.Set(sessionKey, session)
		c.Next()
	}
}

// session is only valid behind requireUser or requireAdmin.
func session(c *gin.Context) *services.Session {
	return c.MustGet(sessionKey).(*services.Session)
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		h.logger.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}
