package models

import (
	"time"

	"gorm.io/datatypes"
)

// RelatedEntity is a weak back-reference used for navigation only; deleting
// the referenced entity never cascades to notifications.
type RelatedEntity struct {
	Kind string `json:"kind"` // lead, vehicle, appointment
	ID   string `json:"id"`
}

// Notification is the durable per-recipient record. Type, Title, Message and
// CreatedAt are immutable after creation; only the read state may change
// before deletion.
type Notification struct {
	BaseModel
	UserID   string `gorm:"type:uuid;not null;index" json:"user_id"`
	Type     string `gorm:"type:varchar(20);not null" json:"type"`
	Title    string `gorm:"not null" json:"title"`
	Message  string `json:"message"`
	Priority string `gorm:"type:varchar(10);default:'normal'" json:"priority"`
	Link     string `json:"link,omitempty"`

	Related datatypes.JSONType[RelatedEntity] `gorm:"type:jsonb" json:"related_entity"`

	IsRead bool       `gorm:"default:false;index" json:"read"`
	ReadAt *time.Time `json:"read_at"`
}

// HasRelated reports whether the record carries a back-reference.
func (n *Notification) HasRelated() bool {
	return n.Related.Data().Kind != ""
}
