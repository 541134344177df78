package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mmo1994/meetsync/internal/middleware"
	"github.com/mmo1994/meetsync/internal/models"
	apperrors "github.com/mmo1994/meetsync/pkg/errors"
	"github.com/mmo1994/meetsync/pkg/response"
)

// PushSubscriptionHandler registers and removes Web Push subscriptions.
type PushSubscriptionHandler struct {
	db *gorm.DB
}

// NewPushSubscriptionHandler constructs a push subscription handler.
func NewPushSubscriptionHandler(db *gorm.DB) (*PushSubscriptionHandler, error) {
	if db == nil {
		return nil, errors.New("push subscription handler: db is required")
	}
	return &PushSubscriptionHandler{db: db}, nil
}

type registerSubscriptionRequest struct {
	Endpoint   string `json:"endpoint" binding:"required,url"`
	P256dhKey  string `json:"p256dh_key" binding:"required"`
	AuthKey    string `json:"auth_key" binding:"required"`
	DeviceName string `json:"device_name"`
}

// Register stores a browser push subscription for the current user.
// Re-registering an existing endpoint updates its keys in place.
func (h *PushSubscriptionHandler) Register(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	var req registerSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.NewBadRequest("endpoint, p256dh_key and auth_key are required"))
		return
	}

	var sub models.PushSubscription
	err := h.db.WithContext(c.Request.Context()).
		Where("endpoint = ?", req.Endpoint).
		First(&sub).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		sub = models.PushSubscription{
			UserID:     userID,
			Endpoint:   req.Endpoint,
			P256dhKey:  req.P256dhKey,
			AuthKey:    req.AuthKey,
			DeviceName: req.DeviceName,
		}
		if err := h.db.WithContext(c.Request.Context()).Create(&sub).Error; err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, http.StatusCreated, sub)
		return
	case err != nil:
		response.Error(c, err)
		return
	}

	sub.UserID = userID
	sub.P256dhKey = req.P256dhKey
	sub.AuthKey = req.AuthKey
	sub.DeviceName = req.DeviceName
	if err := h.db.WithContext(c.Request.Context()).Save(&sub).Error; err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, sub)
}

// Unregister removes one of the current user's subscriptions.
func (h *PushSubscriptionHandler) Unregister(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	result := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.PushSubscription{})
	if result.Error != nil {
		response.Error(c, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		response.Error(c, apperrors.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
