package rest

import (
	"net/http"
	"strconv"

	"github.com/InfinyLoop-Nexus/Oracle/internal/server/models"
	"github.com/gin-gonic/gin"
)

func (h *Handler) ListAllJobs(c *gin.Context) {
	jobs, err := h.jobs.ListAll(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (h *Handler) ListMyJobs(c *gin.Context) {
	jobs, err := h.jobs.ListMine(c.Request.Context(), session(c).Account)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (h *Handler) ClaimJob(c *gin.Context) {
	var job models.Job
	if err := c.ShouldBindJSON(&job); err != nil {
		h.badRequest(c, "invalid job payload")
		return
	}

	res, err := h.jobs.Claim(c.Request.Context(), session(c).Account, &job)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": res.Message(), "job": res.Job})
}

func (h *Handler) UpdateJob(c *gin.Context) {
	var patch models.JobPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.badRequest(c, "invalid job payload")
		return
	}

	job, err := h.jobs.Update(c.Request.Context(), session(c).Account, &patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *Handler) UpdateRating(c *gin.Context) {
	jobID, ok := h.jobID(c)
	if !ok {
		return
	}

	var patch models.RatingPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.badRequest(c, "invalid rating payload")
		return
	}

	rating, err := h.jobs.UpdateRating(c.Request.Context(), session(c).Account, jobID, &patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rating)
}

func (h *Handler) DeleteJob(c *gin.Context) {
	jobID, ok := h.jobID(c)
	if !ok {
		return
	}

	if err := h.jobs.Delete(c.Request.Context(), session(c).Account, jobID); err != nil {
		h.respondError(c, err)
		return
	}
	message(c, "Job deleted successfully")
}

func (h *Handler) jobID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		h.badRequest(c, "job id must be a positive integer")
		return 0, false
	}
	return id, true
}
