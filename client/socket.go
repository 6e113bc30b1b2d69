package client

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"dealercrm_backend/internal/models"
	"dealercrm_backend/internal/prefs"
	"dealercrm_backend/ws"

	"github.com/gorilla/websocket"
)

// Fetcher loads authoritative state over REST. The socket uses it as the
// resync source after every (re)connect; events missed while disconnected
// are never replayed, only absorbed through a fresh snapshot.
type Fetcher interface {
	FetchNotifications(ctx context.Context) ([]models.Notification, int64, error)
	FetchPreferences(ctx context.Context) (*prefs.Document, error)
}

// wireEvent defers payload decoding until the type is known.
type wireEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Socket maintains the websocket connection feeding an Inbox, reconnecting
// with capped exponential backoff.
type Socket struct {
	url     string // full ws URL including the token query parameter
	inbox   *Inbox
	fetcher Fetcher

	mu        sync.Mutex
	sessionID string
	conn      *websocket.Conn
}

func NewSocket(url string, inbox *Inbox, fetcher Fetcher) *Socket {
	return &Socket{url: url, inbox: inbox, fetcher: fetcher}
}

// SessionID returns the id assigned by the server's welcome event, empty
// before the first connect. Callers send it as X-Session-ID on control
// requests so their own actions are not echoed back.
func (s *Socket) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// Run connects and processes events until ctx is cancelled. Each successful
// connect triggers a full resync before live events are applied.
func (s *Socket) Run(ctx context.Context) {
	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		if ctx.Err() != nil {
			return
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
		if err != nil {
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}
		backoff = time.Second

		s.mu.Lock()
		s.conn = conn
		s.mu.Unlock()

		s.resync(ctx)
		s.readLoop(ctx, conn)
		conn.Close()
	}
}

// Close tears down the current connection; Run will reconnect unless its
// context is cancelled.
func (s *Socket) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		s.conn.Close()
	}
}

func (s *Socket) resync(ctx context.Context) {
	if s.fetcher == nil {
		return
	}
	if doc, err := s.fetcher.FetchPreferences(ctx); err == nil {
		s.inbox.SetPreferences(doc)
	}
	if records, unread, err := s.fetcher.FetchNotifications(ctx); err == nil {
		s.inbox.Resync(records, unread)
	}
}

func (s *Socket) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		if ctx.Err() != nil {
			return
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var ev wireEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			continue
		}
		s.handle(ev)
	}
}

func (s *Socket) handle(ev wireEvent) {
	switch ev.Type {
	case ws.EventSession:
		var p ws.SessionPayload
		if json.Unmarshal(ev.Payload, &p) == nil {
			s.mu.Lock()
			s.sessionID = p.SessionID
			s.mu.Unlock()
		}
	case ws.EventNotificationNew:
		var n models.Notification
		if json.Unmarshal(ev.Payload, &n) == nil && n.ID != "" {
			s.inbox.ApplyNew(n)
		}
	case ws.EventNotificationRead:
		var p ws.ReadPayload
		if json.Unmarshal(ev.Payload, &p) == nil && p.ID != "" {
			s.inbox.ApplyRead(p.ID)
		}
	case ws.EventMarkAllRead:
		s.inbox.ApplyMarkAllRead()
	case ws.EventPreferences:
		var doc prefs.Document
		if json.Unmarshal(ev.Payload, &doc) == nil {
			s.inbox.SetPreferences(&doc)
		}
	}
}
