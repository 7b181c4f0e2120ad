package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/InfinyLoop-Nexus/Oracle/internal/common"
	"github.com/InfinyLoop-Nexus/Oracle/internal/server/services"
	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	UsernameOrEmail string `json:"username_or_email" binding:"required"`
	Password        string `json:"password" binding:"required"`
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "username, email and password are required")
		return
	}

	account, err := h.accounts.Register(c.Request.Context(), services.Registration{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "username_or_email and password are required")
		return
	}

	token, err := h.accounts.Login(c.Request.Context(), req.UsernameOrEmail, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "invalid credentials"})
			return
		}
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, token)
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.accounts.Logout(c.Request.Context(), session(c).Claims); err != nil {
		h.respondError(c, err)
		return
	}
	message(c, "Logged out")
}

func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, session(c).Account)
}

func (h *Handler) ListAccounts(c *gin.Context) {
	accounts, err := h.accounts.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, accounts)
}

func (h *Handler) Promote(c *gin.Context) {
	if err := h.accounts.Promote(c.Request.Context(), c.Param("username")); err != nil {
		h.respondError(c, err)
		return
	}
	message(c, "User is now an admin")
}

func (h *Handler) Demote(c *gin.Context) {
	if err := h.accounts.Demote(c.Request.Context(), c.Param("username")); err != nil {
		h.respondError(c, err)
		return
	}
	message(c, "User is no longer an admin")
}

// DeleteAccount deletes the caller, or the account named by ?user_id= when
// the caller is an admin.
func (h *Handler) DeleteAccount(c *gin.Context) {
	caller := session(c).Account

	raw, ok := c.GetQuery("user_id")
	if !ok {
		if err := h.accounts.DeleteSelf(c.Request.Context(), caller); err != nil {
			h.respondError(c, err)
			return
		}
		message(c, "User deleted successfully")
		return
	}

	targetID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || targetID <= 0 {
		h.badRequest(c, "user_id must be a positive integer")
		return
	}

	if err := h.accounts.DeleteAccount(c.Request.Context(), caller, targetID); err != nil {
		h.respondError(c, err)
		return
	}
	message(c, "User deleted successfully")
}
