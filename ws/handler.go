package ws

import (
	"net/http"

	"dealercrm_backend/internal/auth"
	"dealercrm_backend/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // origin is enforced by the CORS layer in front
	},
}

// Handler upgrades authenticated HTTP requests into hub sessions.
type Handler struct {
	hub *Hub
}

func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

// Serve authenticates the caller, upgrades the connection and registers the
// session. Browsers cannot set headers on websocket dials, so the JWT
// arrives as a query parameter.
func (h *Handler) Serve(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token query parameter is required"})
		return
	}

	claims, err := auth.ParseToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := NewSession(h.hub, conn, claims.UserID, claims.Role)
	h.hub.Register(client)

	// The welcome frame carries the session id the client must echo in
	// X-Session-ID on control requests so its own actions are not replayed
	// back to it.
	h.hub.trySend(client, Event{Type: EventSession, Payload: SessionPayload{SessionID: client.ID}})

	go client.readPump()
	go client.writePump()
}
