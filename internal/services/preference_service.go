package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mmo1994/meetsync/internal/models"
	apperrors "github.com/mmo1994/meetsync/pkg/errors"
)

// ChannelPreferences is the effective per-channel toggle set for a user.
type ChannelPreferences struct {
	Email bool `json:"email_enabled"`
	Push  bool `json:"push_enabled"`
	InApp bool `json:"in_app_enabled"`
}

// DefaultChannelPreferences returns the fail-open default: all channels on.
func DefaultChannelPreferences() ChannelPreferences {
	return ChannelPreferences{Email: true, Push: true, InApp: true}
}

// PreferenceService resolves and updates per-user notification preferences.
type PreferenceService struct {
	db *gorm.DB
}

// NewPreferenceService constructs a PreferenceService.
func NewPreferenceService(db *gorm.DB) (*PreferenceService, error) {
	if db == nil {
		return nil, errors.New("preference service: db is required")
	}
	return &PreferenceService{db: db}, nil
}

// Effective returns the user's channel toggles. A missing preference row is
// not an error: new users get every channel enabled.
func (s *PreferenceService) Effective(ctx context.Context, userID string) (ChannelPreferences, error) {
	ctx = ensureContext(ctx)

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return DefaultChannelPreferences(), apperrors.NewBadRequest("user id is required")
	}

	var row models.NotificationPreference
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DefaultChannelPreferences(), nil
		}
		return DefaultChannelPreferences(), fmt.Errorf("preference service: load preferences: %w", err)
	}

	return ChannelPreferences{
		Email: row.EmailEnabled,
		Push:  row.PushEnabled,
		InApp: row.InAppEnabled,
	}, nil
}

// Update upserts the user's preference row.
func (s *PreferenceService) Update(ctx context.Context, userID string, prefs ChannelPreferences) error {
	ctx = ensureContext(ctx)

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return apperrors.NewBadRequest("user id is required")
	}

	var row models.NotificationPreference
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		row = models.NotificationPreference{
			UserID:       userID,
			EmailEnabled: prefs.Email,
			PushEnabled:  prefs.Push,
			InAppEnabled: prefs.InApp,
		}
		if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
			return fmt.Errorf("preference service: create preferences: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("preference service: load preferences: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&row).
		Updates(map[string]any{
			"email_enabled":  prefs.Email,
			"push_enabled":   prefs.Push,
			"in_app_enabled": prefs.InApp,
		}).Error; err != nil {
		return fmt.Errorf("preference service: update preferences: %w", err)
	}
	return nil
}
