package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mmo1994/meetsync/internal/models"
	apperrors "github.com/mmo1994/meetsync/pkg/errors"
)

// ReminderService owns the reminder lifecycle. The meeting-management
// component calls Regenerate whenever a meeting is created or its start time
// or lead-time list changes, and Clear on cancellation or deletion.
type ReminderService struct {
	db *gorm.DB
}

// NewReminderService constructs a ReminderService.
func NewReminderService(db *gorm.DB) (*ReminderService, error) {
	if db == nil {
		return nil, errors.New("reminder service: db is required")
	}
	return &ReminderService{db: db}, nil
}

// Regenerate replaces all reminders for a meeting with one row per lead time,
// fire time = startTime minus the lead. Delete-then-insert keeps the
// operation idempotent and guarantees at most one row per (meeting, lead).
func (s *ReminderService) Regenerate(ctx context.Context, meetingID string, startTime time.Time, leadTimes []int) error {
	ctx = ensureContext(ctx)

	meetingID = strings.TrimSpace(meetingID)
	if meetingID == "" {
		return apperrors.NewBadRequest("meeting id is required")
	}
	if startTime.IsZero() {
		return apperrors.NewBadRequest("start time is required")
	}

	leads := normalizeLeadTimes(leadTimes)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("meeting_id = ?", meetingID).
			Delete(&models.Reminder{}).Error; err != nil {
			return fmt.Errorf("reminder service: clear old reminders: %w", err)
		}

		if len(leads) == 0 {
			return nil
		}

		rows := make([]models.Reminder, 0, len(leads))
		for _, lead := range leads {
			rows = append(rows, models.Reminder{
				MeetingID:       meetingID,
				LeadTimeMinutes: lead,
				FireTime:        startTime.Add(-time.Duration(lead) * time.Minute),
			})
		}

		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("reminder service: insert reminders: %w", err)
		}
		return nil
	})
}

// Clear deletes all reminders for a meeting.
func (s *ReminderService) Clear(ctx context.Context, meetingID string) error {
	ctx = ensureContext(ctx)

	meetingID = strings.TrimSpace(meetingID)
	if meetingID == "" {
		return apperrors.NewBadRequest("meeting id is required")
	}

	if err := s.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Delete(&models.Reminder{}).Error; err != nil {
		return fmt.Errorf("reminder service: clear reminders: %w", err)
	}
	return nil
}

// normalizeLeadTimes drops non-positive and duplicate values and returns the
// remainder sorted descending, so the farthest-out reminder is created first.
func normalizeLeadTimes(leadTimes []int) []int {
	seen := make(map[int]struct{}, len(leadTimes))
	var leads []int
	for _, lead := range leadTimes {
		if lead <= 0 {
			continue
		}
		if _, dup := seen[lead]; dup {
			continue
		}
		seen[lead] = struct{}{}
		leads = append(leads, lead)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(leads)))
	return leads
}
