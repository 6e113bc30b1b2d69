package ws

import (
	"encoding/json"
	"strings"
	"time"

	"dealercrm_backend/internal/logger"
	"dealercrm_backend/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client is one live transport session belonging to exactly one
// authenticated user. The session id is assigned at connect time and echoed
// to the client in the welcome event.
type Client struct {
	ID     string
	UserID string
	Role   string

	conn *websocket.Conn
	send chan Event
	hub  *Hub

	// rooms and closed are owned by the hub and guarded by its lock.
	rooms  map[string]struct{}
	closed bool
}

// NewSession builds a session for an authenticated connection. conn may be
// nil in tests that exercise the hub without a transport.
func NewSession(hub *Hub, conn *websocket.Conn, userID, role string) *Client {
	return &Client{
		ID:     uuid.NewString(),
		UserID: userID,
		Role:   role,
		conn:   conn,
		send:   make(chan Event, hub.sendBuffer),
		hub:    hub,
		rooms:  make(map[string]struct{}),
	}
}

// incomingMessage is the client -> server frame: explicit room membership
// changes only; all data mutation happens over REST.
type incomingMessage struct {
	Action string `json:"action"` // join, leave
	Room   string `json:"room"`
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("websocket read error", "session", c.ID, "error", err)
			}
			return
		}

		var msg incomingMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			logger.Debug("unparseable websocket frame", "session", c.ID, "error", err)
			continue
		}
		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				logger.Debug("websocket write error", "session", c.ID, "error", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(msg incomingMessage) {
	switch msg.Action {
	case "join":
		if c.mayJoin(msg.Room) {
			c.hub.Join(c, msg.Room)
		}
	case "leave":
		c.hub.Leave(c, msg.Room)
	default:
		logger.Debug("unhandled websocket action", "session", c.ID, "action", msg.Action)
	}
}

// mayJoin restricts explicit joins to entity rooms and the admin room.
// User and role rooms are assigned by the hub, never requested.
func (c *Client) mayJoin(room string) bool {
	switch {
	case strings.HasPrefix(room, "lead:"), strings.HasPrefix(room, "vehicle:"):
		return true
	case room == RoomAdmin:
		return c.Role == string(models.UserRoleAdmin)
	default:
		return false
	}
}
