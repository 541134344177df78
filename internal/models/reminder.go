package models

import "time"

// Reminder schedules a single pre-meeting notification burst.
//
// A reminder is pending while SentAt is NULL and terminal once it is set;
// the three channel flags record that dispatch was attempted, not that
// delivery was confirmed. DispatchStartedAt is the claim marker a tick sets
// before fanning out, so overlapping ticks never dispatch the same reminder.
type Reminder struct {
	BaseModel

	MeetingID string   `gorm:"type:uuid;not null;index" json:"meeting_id"`
	Meeting   *Meeting `gorm:"foreignKey:MeetingID;constraint:OnDelete:CASCADE" json:"meeting,omitempty"`

	LeadTimeMinutes int       `gorm:"not null" json:"lead_time_minutes"`
	FireTime        time.Time `gorm:"not null;index" json:"fire_time"`

	EmailSent    bool `gorm:"default:false" json:"email_sent"`
	PushSent     bool `gorm:"default:false" json:"push_sent"`
	InAppCreated bool `gorm:"default:false" json:"in_app_created"`

	SentAt            *time.Time `gorm:"index" json:"sent_at"`
	DispatchStartedAt *time.Time `json:"-"`
}

// Pending reports whether the reminder still awaits dispatch.
func (r *Reminder) Pending() bool {
	return r.SentAt == nil
}
