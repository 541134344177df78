package models

// ParticipantStatus enumerates invitation responses.
type ParticipantStatus string

const (
	ParticipantInvited   ParticipantStatus = "invited"
	ParticipantAccepted  ParticipantStatus = "accepted"
	ParticipantDeclined  ParticipantStatus = "declined"
	ParticipantTentative ParticipantStatus = "tentative"
)

// Participant is a per-meeting membership record. Email is the identity when
// no account exists; UserID links the participant to an account when one does.
type Participant struct {
	BaseModel

	MeetingID string   `gorm:"type:uuid;not null;uniqueIndex:idx_participants_meeting_email" json:"meeting_id"`
	Meeting   *Meeting `gorm:"foreignKey:MeetingID" json:"-"`

	Email  string            `gorm:"type:varchar(255);not null;uniqueIndex:idx_participants_meeting_email" json:"email"`
	UserID *string           `gorm:"type:uuid;index" json:"user_id,omitempty"`
	User   *User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Status ParticipantStatus `gorm:"type:varchar(16);default:'invited'" json:"status"`
}
