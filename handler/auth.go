package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ndeen17/Escrow/middleware"
	"github.com/ndeen17/Escrow/service"
)

type AuthHandler struct {
	profiles *service.ProfileStore
}

func NewAuthHandler(profiles *service.ProfileStore) *AuthHandler {
	return &AuthHandler{profiles: profiles}
}

// GetCurrentUser returns the cached profile for the authenticated caller.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	subject := middleware.GetSubject(c)

	profile, ok := h.profiles.Get(subject)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Account not registered",
			"subject": subject,
			"email":   middleware.GetEmail(c),
		})
		return
	}

	c.JSON(http.StatusOK, profile)
}
