package models

// NotificationPreference stores per-user channel toggles. Absence of a row
// means every channel is enabled; the fail-open default lives in the
// preference service, not in column defaults. No default tags on the
// booleans: gorm omits zero values for defaulted columns on insert, which
// would turn a stored opt-out back into true.
type NotificationPreference struct {
	BaseModel

	UserID string `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	User   *User  `gorm:"foreignKey:UserID" json:"-"`

	EmailEnabled bool `json:"email_enabled"`
	PushEnabled  bool `json:"push_enabled"`
	InAppEnabled bool `json:"in_app_enabled"`
}
