package reminders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mmo1994/meetsync/internal/models"
)

const (
	defaultBatchSize = 100
	defaultLookAhead = time.Minute
)

// Selector fetches the batch of reminders due for dispatch.
type Selector struct {
	db        *gorm.DB
	batchSize int
	lookAhead time.Duration
}

// NewSelector constructs a Selector. Zero batch size and look-ahead fall back
// to the defaults (100 rows, one minute).
func NewSelector(db *gorm.DB, batchSize int, lookAhead time.Duration) (*Selector, error) {
	if db == nil {
		return nil, errors.New("selector: db is required")
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if lookAhead <= 0 {
		lookAhead = defaultLookAhead
	}
	return &Selector{db: db, batchSize: batchSize, lookAhead: lookAhead}, nil
}

// DueBatch returns up to batchSize pending reminders whose fire time falls
// within the look-ahead window, excluding cancelled meetings and meetings
// already in progress or past. Results eagerly include the meeting, its
// owner, and its participants with linked users, so dispatch needs no
// further reads.
//
// A reminder whose meeting has already started is never returned, even if it
// is somehow still pending after scheduler downtime.
func (s *Selector) DueBatch(ctx context.Context, now time.Time) ([]models.Reminder, error) {
	var rows []models.Reminder
	err := s.db.WithContext(ctx).
		Joins("JOIN meetings ON meetings.id = reminders.meeting_id").
		Where("reminders.fire_time <= ?", now.Add(s.lookAhead)).
		Where("reminders.sent_at IS NULL").
		Where("meetings.is_cancelled = ?", false).
		Where("meetings.start_time > ?", now).
		Order("reminders.fire_time ASC").
		Limit(s.batchSize).
		Preload("Meeting").
		Preload("Meeting.Owner").
		Preload("Meeting.Participants").
		Preload("Meeting.Participants.User").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("selector: query due reminders: %w", err)
	}
	return rows, nil
}
