package models

// PushSubscription holds one browser push-subscription per user device.
// Keys are opaque to us and consumed by the web-push library.
type PushSubscription struct {
	BaseModel
	UserID     string `gorm:"type:uuid;not null;index" json:"user_id"`
	Endpoint   string `gorm:"uniqueIndex;not null" json:"endpoint"`
	P256dh     string `gorm:"not null" json:"p256dh"`
	Auth       string `gorm:"not null" json:"auth"`
	DeviceName string `json:"device_name"`
}
