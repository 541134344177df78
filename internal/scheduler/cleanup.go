package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mmo1994/meetsync/internal/models"
	"github.com/mmo1994/meetsync/pkg/metrics"
)

// CleanupSessions deletes sessions that have expired or been revoked and
// returns the number of rows removed.
func CleanupSessions(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	if db == nil {
		return 0, errors.New("cleanup sessions: db is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	result := db.WithContext(ctx).
		Where("expires_at < ? OR revoked_at IS NOT NULL", now).
		Delete(&models.Session{})
	if result.Error != nil {
		return 0, fmt.Errorf("cleanup sessions: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		metrics.SessionsCleaned.Add(float64(result.RowsAffected))
	}
	return result.RowsAffected, nil
}
