package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mmo1994/meetsync/internal/middleware"
	"github.com/mmo1994/meetsync/internal/services"
	"github.com/mmo1994/meetsync/pkg/errors"
	"github.com/mmo1994/meetsync/pkg/response"
)

// PreferenceHandler exposes notification channel preferences.
type PreferenceHandler struct {
	service *services.PreferenceService
}

// NewPreferenceHandler constructs a preference handler.
func NewPreferenceHandler(db *gorm.DB) (*PreferenceHandler, error) {
	service, err := services.NewPreferenceService(db)
	if err != nil {
		return nil, err
	}
	return &PreferenceHandler{service: service}, nil
}

// Get returns the effective channel preferences for the current user.
func (h *PreferenceHandler) Get(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	prefs, err := h.service.Effective(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, prefs)
}

type updatePreferencesRequest struct {
	Email *bool `json:"email_enabled" binding:"required"`
	Push  *bool `json:"push_enabled" binding:"required"`
	InApp *bool `json:"in_app_enabled" binding:"required"`
}

// Update replaces the stored channel preferences for the current user.
func (h *PreferenceHandler) Update(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var req updatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errors.NewBadRequest("email_enabled, push_enabled and in_app_enabled flags are required"))
		return
	}

	prefs := services.ChannelPreferences{
		Email: *req.Email,
		Push:  *req.Push,
		InApp: *req.InApp,
	}
	if err := h.service.Update(c.Request.Context(), userID, prefs); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, prefs)
}
