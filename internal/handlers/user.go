package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/repositories"
)

// UserHandler serves profile and contact listing endpoints.
type UserHandler struct {
	userRepo repositories.UserRepository
}

// NewUserHandler builds a UserHandler.
func NewUserHandler(userRepo repositories.UserRepository) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

// Me returns the caller's own profile.
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.userRepo.GetUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrUserNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// Contacts lists users matching an optional name/email query, paged.
func (h *UserHandler) Contacts(c *gin.Context) {
	page, limit := pageParams(c, 20)

	result, err := h.userRepo.SearchUsers(c.Request.Context(), c.Query("q"), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load users"})
		return
	}
	c.JSON(http.StatusOK, result)
}
