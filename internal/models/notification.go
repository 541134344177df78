package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification type tags used by this service.
const (
	NotificationTypeMeetingReminder = "meeting.reminder"
)

// Notification represents an in-app notification for a user. The meeting
// reference is weak: deleting a meeting nulls it rather than removing the
// notification.
type Notification struct {
	BaseModel

	UserID  string `gorm:"type:uuid;not null;index" json:"user_id"`
	Type    string `gorm:"type:varchar(64);not null" json:"type"`
	Title   string `gorm:"type:varchar(255);not null" json:"title"`
	Message string `gorm:"type:text" json:"message"`

	MeetingID *string  `gorm:"type:uuid;index" json:"meeting_id,omitempty"`
	Meeting   *Meeting `gorm:"foreignKey:MeetingID;constraint:OnDelete:SET NULL" json:"-"`

	Metadata datatypes.JSON `json:"metadata"`

	IsRead bool       `gorm:"default:false;index" json:"is_read"`
	ReadAt *time.Time `json:"read_at"`
}
