package ws

import (
	"context"
	"encoding/json"
	"time"

	"dealercrm_backend/internal/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// envelope is the broadcast unit. An empty Room targets every session;
// ExceptID names the origin session to skip. Origin identifies the
// publishing instance so it can ignore its own envelopes on replay.
type envelope struct {
	Room     string `json:"room,omitempty"`
	ExceptID string `json:"except_id,omitempty"`
	Origin   string `json:"origin,omitempty"`
	Event    Event  `json:"event"`
}

// RedisBridge fans hub broadcasts out across instances through a shared
// Redis Pub/Sub channel. Each instance replays received envelopes into its
// local hub; the origin-session exclusion still works because session ids
// are globally unique. Without a bridge the hub runs process-local.
type RedisBridge struct {
	client     *redis.Client
	channel    string
	hub        *Hub
	instanceID string
}

func NewRedisBridge(client *redis.Client, channel string, hub *Hub) *RedisBridge {
	return &RedisBridge{
		client:     client,
		channel:    channel,
		hub:        hub,
		instanceID: uuid.NewString(),
	}
}

// Publish delivers the envelope to local sessions first, then forwards it to
// the shared channel tagged with this instance's id. Local delivery never
// waits on Redis, so a broker outage degrades to single-instance delivery
// instead of silence.
func (b *RedisBridge) Publish(env envelope) {
	b.hub.deliverLocal(env)

	env.Origin = b.instanceID
	body, err := json.Marshal(env)
	if err != nil {
		logger.Error("bridge: encode envelope failed", "error", err)
		return
	}
	if err := b.client.Publish(context.Background(), b.channel, body).Err(); err != nil {
		logger.Error("bridge: redis publish failed", "channel", b.channel, "error", err)
	}
}

// Run subscribes to the shared channel and replays envelopes from other
// instances into the local hub until the context is cancelled. A failed
// subscribe is retried with capped backoff. Intended to run in its own
// goroutine.
func (b *RedisBridge) Run(ctx context.Context) {
	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		if ctx.Err() != nil {
			return
		}
		if err := b.consume(ctx); err != nil {
			logger.Error("bridge: subscribe failed", "channel", b.channel, "error", err)
		} else {
			// Subscription was live and then dropped; reconnect promptly.
			backoff = time.Second
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

// replay hands a received envelope to the local hub, dropping envelopes this
// instance published itself since Publish already delivered those locally.
func (b *RedisBridge) replay(env envelope) {
	if env.Origin == b.instanceID {
		return
	}
	b.hub.deliverLocal(env)
}

func (b *RedisBridge) consume(ctx context.Context) error {
	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				logger.Error("bridge: decode envelope failed", "error", err)
				continue
			}
			b.replay(env)
		}
	}
}
