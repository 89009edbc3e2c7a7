package handler

import (
	"github.com/activityhub/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MeResponse describes the caller and what they administer
type MeResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email,omitempty"`
	AdminSites []string  `json:"admin_sites"`
	IsAdmin    bool      `json:"is_admin"`
}

// MeHandler serves the current user
type MeHandler struct {
	BaseHandler
}

// NewMeHandler creates a new MeHandler
func NewMeHandler() *MeHandler {
	return &MeHandler{}
}

// Get returns the caller's profile and admin capabilities
// GET /me
func (h *MeHandler) Get(c *gin.Context) {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		h.Unauthorized(c)
		return
	}

	sites := user.Roles.AdminSites()
	names := make([]string, len(sites))
	for i, s := range sites {
		names[i] = s.String()
	}
	h.Success(c, MeResponse{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		AdminSites: names,
		IsAdmin:    user.Roles.IsAnyAdmin(),
	})
}
