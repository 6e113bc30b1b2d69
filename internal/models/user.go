package models

type User struct {
	BaseModel
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Name         string     `gorm:"not null" json:"name"`
	Phone        string     `json:"phone"`
	Role         UserRole   `gorm:"type:varchar(20);not null" json:"role"`
	Status       UserStatus `gorm:"type:varchar(20);default:'active'" json:"status"`

	// Relations
	Notifications []Notification     `gorm:"foreignKey:UserID" json:"-"`
	Subscriptions []PushSubscription `gorm:"foreignKey:UserID" json:"-"`
}
