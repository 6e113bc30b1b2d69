package models

import "time"

type Lead struct {
	BaseModel
	FirstName   string          `gorm:"not null" json:"first_name"`
	LastName    string          `gorm:"not null" json:"last_name"`
	Email       string          `gorm:"index" json:"email"`
	Phone       string          `json:"phone"`
	Source      string          `json:"source"` // walk-in, web form, phone, referral
	Status      LeadStatus      `gorm:"type:varchar(20);default:'new';index" json:"status"`
	Temperature LeadTemperature `gorm:"type:varchar(10);default:'warm'" json:"temperature"`
	Notes       string          `json:"notes"`

	AssignedTo  *string    `gorm:"type:uuid;index" json:"assigned_to"`
	AssignedAt  *time.Time `json:"assigned_at"`
	VehicleID   *string    `gorm:"type:uuid;index" json:"vehicle_id"` // vehicle of interest
	LastContact *time.Time `json:"last_contact"`
}
