package reminders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mmo1994/meetsync/internal/models"
	"github.com/mmo1994/meetsync/pkg/logger"
)

// PushPayload is the message delivered to a user's push subscriptions.
type PushPayload struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// VAPIDKeys carry the Web Push application server credentials.
type VAPIDKeys struct {
	PublicKey  string
	PrivateKey string
	Subscriber string
}

// Configured reports whether both keys are present.
func (k VAPIDKeys) Configured() bool {
	return k.PublicKey != "" && k.PrivateKey != ""
}

type webpushSendFunc func(ctx context.Context, message []byte, sub *webpush.Subscription, opts *webpush.Options) (int, error)

// PushSender delivers Web Push notifications to every subscription a user has
// registered. Endpoints the provider reports as gone are deleted as a
// self-healing side effect. Without VAPID keys delivery degrades to a logged
// no-op treated as success.
type PushSender struct {
	db     *gorm.DB
	keys   VAPIDKeys
	sendFn webpushSendFunc
	log    *zap.Logger
}

// NewPushSender constructs a PushSender.
func NewPushSender(db *gorm.DB, keys VAPIDKeys) (*PushSender, error) {
	if db == nil {
		return nil, errors.New("push sender: db is required")
	}
	return &PushSender{
		db:     db,
		keys:   keys,
		sendFn: defaultWebpushSend,
		log:    logger.WithModule("reminders.push"),
	}, nil
}

// Send delivers the payload to each of the user's subscriptions
// independently; a failing endpoint does not stop delivery to the others.
// An error is returned only when every subscription failed.
func (s *PushSender) Send(ctx context.Context, userID string, payload PushPayload) error {
	if !s.keys.Configured() {
		s.log.Info("vapid keys not configured; skipping push",
			zap.String("user_id", userID),
			zap.String("title", payload.Title),
		)
		return nil
	}

	var subs []models.PushSubscription
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&subs).Error; err != nil {
		return fmt.Errorf("push sender: load subscriptions: %w", err)
	}
	if len(subs) == 0 {
		return nil
	}

	message, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("push sender: marshal payload: %w", err)
	}

	opts := &webpush.Options{
		Subscriber:      s.keys.Subscriber,
		VAPIDPublicKey:  s.keys.PublicKey,
		VAPIDPrivateKey: s.keys.PrivateKey,
		TTL:             60,
	}

	var (
		delivered int
		errs      error
	)
	for _, sub := range subs {
		status, err := s.sendFn(ctx, message, &webpush.Subscription{
			Endpoint: sub.Endpoint,
			Keys: webpush.Keys{
				P256dh: sub.P256dhKey,
				Auth:   sub.AuthKey,
			},
		}, opts)

		switch {
		case err != nil:
			s.log.Warn("push delivery failed",
				zap.String("user_id", userID),
				zap.String("endpoint", sub.Endpoint),
				zap.Error(err),
			)
			errs = multierr.Append(errs, err)
		case status == http.StatusGone || status == http.StatusNotFound:
			// The provider no longer knows this endpoint; drop it.
			if delErr := s.db.WithContext(ctx).Delete(&models.PushSubscription{}, "id = ?", sub.ID).Error; delErr != nil {
				s.log.Warn("failed to remove gone subscription",
					zap.String("endpoint", sub.Endpoint),
					zap.Error(delErr),
				)
			} else {
				s.log.Info("removed gone push subscription",
					zap.String("user_id", userID),
					zap.String("endpoint", sub.Endpoint),
				)
			}
		default:
			delivered++
		}
	}

	if delivered == 0 && errs != nil {
		return fmt.Errorf("push sender: all deliveries failed for user %s: %w", userID, errs)
	}
	return nil
}

func defaultWebpushSend(ctx context.Context, message []byte, sub *webpush.Subscription, opts *webpush.Options) (int, error) {
	resp, err := webpush.SendNotificationWithContext(ctx, message, sub, opts)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}
