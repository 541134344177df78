package models

// User describes an account holder. Authentication state lives with the
// identity component; this service only reads profile fields for addressing
// reminders and notifications.
type User struct {
	BaseModel

	Username    string `gorm:"uniqueIndex;not null" json:"username"`
	Email       string `gorm:"uniqueIndex;not null" json:"email"`
	DisplayName string `json:"display_name"`
	Timezone    string `gorm:"type:varchar(64)" json:"timezone"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`

	Sessions []Session `gorm:"foreignKey:UserID" json:"-"`
}

// Name returns the preferred human-readable name for the user.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}
