package push

import (
	"errors"
	"fmt"
	"net/http"

	"dealercrm_backend/internal/models"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// ErrSubscriptionGone marks an expired or revoked subscription. Callers
// delete the subscription instead of retrying.
var ErrSubscriptionGone = errors.New("push subscription gone")

// Sender is the browser push delivery channel.
type Sender interface {
	Send(sub *models.PushSubscription, payload []byte) error
}

type Config struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	Subscriber      string // mailto: contact required by push services
}

type WebPushSender struct {
	config Config
}

func NewWebPushSender(config Config) (*WebPushSender, error) {
	if config.VAPIDPublicKey == "" || config.VAPIDPrivateKey == "" {
		return nil, fmt.Errorf("VAPID key pair is required")
	}
	return &WebPushSender{config: config}, nil
}

func (s *WebPushSender) Send(sub *models.PushSubscription, payload []byte) error {
	resp, err := webpush.SendNotification(payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		Subscriber:      s.config.Subscriber,
		VAPIDPublicKey:  s.config.VAPIDPublicKey,
		VAPIDPrivateKey: s.config.VAPIDPrivateKey,
		TTL:             60,
	})
	if err != nil {
		return fmt.Errorf("web push send failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotFound, http.StatusGone:
		return ErrSubscriptionGone
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("web push rejected: status %d", resp.StatusCode)
	}
	return nil
}
