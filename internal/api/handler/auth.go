package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"strangerlink/backend/internal/auth"
)

type credentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// GetAnonID returns the visitor's anonymous identity (creating one if
// needed) plus a token for it. The device key scopes the record to one
// browser profile.
func (h *Handler) GetAnonID(c *gin.Context) {
	deviceKey := c.GetHeader("X-Device-Key")
	if deviceKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-Device-Key header required"})
		return
	}

	anonUser := h.Anon.GetOrCreate(c.Request.Context(), deviceKey)

	token, err := h.Auth.GenerateAnonToken(anonUser.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "anonymous_user": anonUser})
}

func (h *Handler) Signup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := h.Auth.Register(req.Email, req.Password)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, auth.ErrUserExists) || errors.Is(err, auth.ErrPasswordTooShort) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func (h *Handler) Signin(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := h.Auth.Login(req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// Signout exists for symmetry; tokens are stateless and the client
// simply discards its copy.
func (h *Handler) Signout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "signed out"})
}

// Me returns the caller's identity and profile, if completed.
func (h *Handler) Me(c *gin.Context) {
	userID := c.GetString("user_id")

	user, err := h.Storage.GetUserByID(userID)
	if err != nil || user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	profile, err := h.Storage.GetProfileByUserID(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user, "profile": profile})
}
