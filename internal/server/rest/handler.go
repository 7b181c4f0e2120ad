// Package rest is the HTTP boundary: gin routes, bearer authentication,
// error-to-status mapping and Prometheus metrics.
package rest

import (
	"context"
	"net/http"

	"github.com/InfinyLoop-Nexus/Oracle/internal/logging"
	"github.com/InfinyLoop-Nexus/Oracle/internal/server/auth"
	"github.com/InfinyLoop-Nexus/Oracle/internal/server/models"
	"github.com/InfinyLoop-Nexus/Oracle/internal/server/services"
	"github.com/gin-gonic/gin"
)

type AccountAPI interface {
	Register(ctx context.Context, r services.Registration) (*models.Account, error)
	Login(ctx context.Context, login, password string) (string, error)
	Logout(ctx context.Context, claims *auth.Claims) error
	List(ctx context.Context) ([]*models.Account, error)
	Promote(ctx context.Context, username string) error
	Demote(ctx context.Context, username string) error
	DeleteSelf(ctx context.Context, caller *models.Account) error
	DeleteAccount(ctx context.Context, caller *models.Account, targetID int64) error
}

type JobAPI interface {
	Claim(ctx context.Context, caller *models.Account, job *models.Job) (*services.ClaimResult, error)
	ListAll(ctx context.Context) ([]*models.Job, error)
	ListMine(ctx context.Context, caller *models.Account) ([]*models.Job, error)
	Update(ctx context.Context, caller *models.Account, patch *models.JobPatch) (*models.Job, error)
	UpdateRating(ctx context.Context, caller *models.Account, jobID int64, patch *models.RatingPatch) (*models.Rating, error)
	Delete(ctx context.Context, caller *models.Account, jobID int64) error
}

type SearchAPI interface {
	ListAll(ctx context.Context) ([]*models.Search, error)
	ListMine(ctx context.Context, caller *models.Account) ([]*models.Search, error)
	Upsert(ctx context.Context, caller *models.Account, search *models.Search) (*models.Search, error)
}

type Handler struct {
	guard    Authenticator
	accounts AccountAPI
	jobs     JobAPI
	searches SearchAPI
	logger   logging.Logger
}

func NewHandler(guard Authenticator, accounts AccountAPI, jobs JobAPI, searches SearchAPI, logger logging.Logger) *Handler {
	return &Handler{
		guard:    guard,
		accounts: accounts,
		jobs:     jobs,
		searches: searches,
		logger:   logger,
	}
}

// NewRouter wires every route onto a fresh gin engine.
func NewRouter(h *Handler, m *Metrics) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestLogger(), m.middleware())

	router.GET("/health", h.Health)
	router.GET("/metrics", m.handler())

	user := router.Group("/user")
	{
		user.POST("/create", h.Register)
		user.POST("/login", h.Login)
		user.POST("/logout", h.requireUser(), h.Logout)
		user.GET("/", h.requireAdmin(), h.ListAccounts)
		user.GET("/me", h.requireUser(), h.Me)
		user.POST("/:username/admin", h.requireAdmin(), h.Promote)
		user.DELETE("/:username/admin", h.requireAdmin(), h.Demote)
		user.DELETE("/delete", h.requireUser(), h.DeleteAccount)
	}

	jobs := router.Group("/jobs")
	{
		jobs.GET("/all", h.requireAdmin(), h.ListAllJobs)
		jobs.GET("/mine", h.requireUser(), h.ListMyJobs)
		jobs.POST("/create", h.requireUser(), h.ClaimJob)
		jobs.POST("/update", h.requireUser(), h.UpdateJob)
		jobs.PUT("/:id/rating", h.requireUser(), h.UpdateRating)
		jobs.DELETE("/delete/:id", h.requireUser(), h.DeleteJob)
	}

	search := router.Group("/search")
	{
		search.GET("/", h.requireAdmin(), h.ListAllSearches)
		search.GET("/mine", h.requireUser(), h.ListMySearches)
		search.POST("/", h.requireUser(), h.UpsertSearch)
	}

	return router
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func message(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, gin.H{"message": msg})
}
