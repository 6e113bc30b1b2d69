package models

import "gorm.io/datatypes"

// MessageTemplate is a reusable outreach template for email or SMS.
// Placeholders use Go text/template syntax ({{.FirstName}} etc).
type MessageTemplate struct {
	BaseModel
	Name      string                      `gorm:"uniqueIndex;not null" json:"name"`
	Channel   string                      `gorm:"type:varchar(10);not null" json:"channel"` // email, sms
	Subject   string                      `json:"subject"`                                  // email only
	Body      string                      `gorm:"not null" json:"body"`
	Variables datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"variables"`
	IsActive  bool                        `gorm:"default:true" json:"is_active"`
}
