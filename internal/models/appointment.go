package models

import "time"

type Appointment struct {
	BaseModel
	LeadID      string            `gorm:"type:uuid;not null;index" json:"lead_id"`
	AgentID     string            `gorm:"type:uuid;not null;index" json:"agent_id"`
	VehicleID   *string           `gorm:"type:uuid" json:"vehicle_id"`
	Kind        string            `gorm:"not null" json:"kind"` // test_drive, consultation, delivery, service
	ScheduledAt time.Time         `gorm:"not null;index" json:"scheduled_at"`
	Status      AppointmentStatus `gorm:"type:varchar(20);default:'scheduled';index" json:"status"`
	Notes       string            `json:"notes"`

	// ReminderSentAt prevents the reminder worker from notifying twice.
	ReminderSentAt *time.Time `json:"-"`
}
