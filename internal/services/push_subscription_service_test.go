package services

import (
	"testing"

	"dealercrm_backend/internal/services/dto"
	"dealercrm_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushSubscriptionService_RegisterAndRemove(t *testing.T) {
	repo := newFakePushRepo()
	svc := NewPushSubscriptionService(repo)

	sub, err := svc.Register("user-1", dto.RegisterPushSubscriptionRequest{
		Endpoint:   "https://push.example.com/ep-1",
		P256dh:     "key",
		Auth:       "auth",
		DeviceName: "laptop",
	})
	require.NoError(t, err)
	require.Equal(t, "user-1", sub.UserID)

	require.NoError(t, svc.Remove("user-1", sub.Endpoint))

	subs, err := svc.List("user-1")
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestPushSubscriptionService_RemoveForeignSubscription(t *testing.T) {
	repo := newFakePushRepo()
	svc := NewPushSubscriptionService(repo)

	_, err := svc.Register("victim", dto.RegisterPushSubscriptionRequest{
		Endpoint: "https://push.example.com/ep-victim",
		P256dh:   "key",
		Auth:     "auth",
	})
	require.NoError(t, err)

	// Knowing another user's endpoint must not be enough to unregister it.
	err = svc.Remove("attacker", "https://push.example.com/ep-victim")
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)

	subs, err := svc.List("victim")
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}
