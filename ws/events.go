package ws

import "time"

// Event is the wire envelope pushed to connected sessions.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Event types exposed to clients.
const (
	EventSession          = "session" // welcome event carrying the session id
	EventNotificationNew  = "notification:new"
	EventNotificationRead = "notification:read"
	EventMarkAllRead      = "notification:mark_all_read"
	EventPreferences      = "notification:preferences"
	EventUserStatus       = "user:status"

	// Entity room events, delivered only to sessions that joined the room.
	EventLeadUpdated    = "lead:updated"
	EventVehicleUpdated = "vehicle:updated"
)

// SessionPayload is sent once after the session is registered so the client
// can identify itself as the origin of control actions.
type SessionPayload struct {
	SessionID string `json:"sessionId"`
}

// StatusPayload announces a user going online or offline. Presence is
// broadcast to every connected session, not room-scoped.
type StatusPayload struct {
	UserID    string    `json:"userId"`
	Online    bool      `json:"online"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadPayload carries the record id of a read control event.
type ReadPayload struct {
	ID string `json:"id"`
}

// Room naming. Every session is auto-joined to its user and role rooms;
// entity rooms are joined explicitly.
const RoomAdmin = "admin"

func UserRoom(userID string) string { return "user:" + userID }

func RoleRoom(role string) string { return "role:" + role }

func LeadRoom(leadID string) string { return "lead:" + leadID }

func VehicleRoom(vehicleID string) string { return "vehicle:" + vehicleID }
