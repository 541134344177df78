package models

// PushSubscription stores a Web Push endpoint registered by a browser or
// device. Endpoints the provider reports as gone are deleted during dispatch.
type PushSubscription struct {
	BaseModel

	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *User  `gorm:"foreignKey:UserID" json:"-"`

	Endpoint   string `gorm:"type:text;not null;uniqueIndex:idx_push_subscriptions_endpoint,length:255" json:"endpoint"`
	P256dhKey  string `gorm:"type:text;not null" json:"p256dh_key"`
	AuthKey    string `gorm:"type:text;not null" json:"auth_key"`
	DeviceName string `gorm:"type:varchar(128)" json:"device_name"`
}
