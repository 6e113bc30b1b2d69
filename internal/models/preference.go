package models

import (
	"dealercrm_backend/internal/prefs"

	"gorm.io/datatypes"
)

// NotificationPreference stores one preference document per user, created
// lazily with defaults on first access and deleted only with the account.
type NotificationPreference struct {
	BaseModel
	UserID string                             `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Doc    datatypes.JSONType[prefs.Document] `gorm:"type:jsonb" json:"doc"`
}

// Document unwraps the stored JSONB into the typed preference document.
func (p *NotificationPreference) Document() prefs.Document {
	return p.Doc.Data()
}
