package rest

import (
	"net/http"

	"github.com/InfinyLoop-Nexus/Oracle/internal/server/models"
	"github.com/gin-gonic/gin"
)

func (h *Handler) ListAllSearches(c *gin.Context) {
	searches, err := h.searches.ListAll(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, searches)
}

func (h *Handler) ListMySearches(c *gin.Context) {
	searches, err := h.searches.ListMine(c.Request.Context(), session(c).Account)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, searches)
}

// UpsertSearch creates a search when no id is given and updates it otherwise.
func (h *Handler) UpsertSearch(c *gin.Context) {
	var search models.Search
	if err := c.ShouldBindJSON(&search); err != nil {
		h.badRequest(c, "invalid search payload")
		return
	}

	saved, err := h.searches.Upsert(c.Request.Context(), session(c).Account, &search)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}
