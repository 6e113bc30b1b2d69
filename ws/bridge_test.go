package ws

import (
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unreachableRedis returns a client whose every command fails fast.
func unreachableRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestBridge_LocalDeliveryDuringBrokerOutage(t *testing.T) {
	hub := NewHub(16)
	hub.SetBridge(NewRedisBridge(unreachableRedis(), "events", hub))

	c := NewSession(hub, nil, "user-1", "agent")
	hub.Register(c)
	drain(c)

	hub.Broadcast(UserRoom("user-1"), Event{Type: EventNotificationNew})

	events := drain(c)
	require.Len(t, events, 1)
	assert.Equal(t, EventNotificationNew, events[0].Type)
}

func TestBridge_SkipsOwnEnvelopesOnReplay(t *testing.T) {
	hub := NewHub(16)
	bridge := NewRedisBridge(unreachableRedis(), "events", hub)
	hub.SetBridge(bridge)

	c := NewSession(hub, nil, "user-1", "agent")
	hub.Register(c)
	drain(c)

	// Publish delivers locally and tags the envelope with the instance id;
	// replaying that same envelope must not deliver it a second time.
	env := envelope{Room: UserRoom("user-1"), Event: Event{Type: EventNotificationNew}}
	bridge.Publish(env)
	require.Len(t, drain(c), 1)

	env.Origin = bridge.instanceID
	bridge.replay(env)
	assert.Empty(t, drain(c))

	env.Origin = "another-instance"
	bridge.replay(env)
	assert.Len(t, drain(c), 1)
}
