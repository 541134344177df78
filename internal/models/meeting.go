package models

import (
	"time"

	"gorm.io/datatypes"
)

// Meeting represents a scheduled event owned by a user.
//
// Start/end times, timezone, and the lead-time list remain mutable until the
// meeting is cancelled; cancellation is terminal and stops all reminders.
type Meeting struct {
	BaseModel

	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`

	StartTime time.Time `gorm:"not null;index" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`
	Timezone  string    `gorm:"type:varchar(64);default:'UTC'" json:"timezone"`
	VideoLink string    `gorm:"type:text" json:"video_link"`

	IsCancelled bool `gorm:"default:false;index" json:"is_cancelled"`

	// LeadTimes lists the minutes-before-start offsets at which reminders
	// fire, e.g. [1440, 15].
	LeadTimes datatypes.JSONSlice[int] `json:"lead_times"`

	OwnerID string `gorm:"type:uuid;not null;index" json:"owner_id"`
	Owner   *User  `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`

	Participants []Participant `gorm:"foreignKey:MeetingID;constraint:OnDelete:CASCADE" json:"participants,omitempty"`
	Reminders    []Reminder    `gorm:"foreignKey:MeetingID;constraint:OnDelete:CASCADE" json:"-"`
}
