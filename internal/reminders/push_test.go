package reminders

import (
	"context"
	"errors"
	"net/http"
	"testing"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mmo1994/meetsync/internal/database/testutil"
	"github.com/mmo1994/meetsync/internal/models"
)

var testVAPID = VAPIDKeys{
	PublicKey:  "test-public",
	PrivateKey: "test-private",
	Subscriber: "mailto:ops@example.com",
}

func seedSubscription(t *testing.T, db *gorm.DB, userID, endpoint string) *models.PushSubscription {
	t.Helper()
	sub := &models.PushSubscription{
		UserID:    userID,
		Endpoint:  endpoint,
		P256dhKey: "p256dh-key",
		AuthKey:   "auth-key",
	}
	require.NoError(t, db.Create(sub).Error)
	return sub
}

func newTestPushSender(t *testing.T, db *gorm.DB, keys VAPIDKeys, fn webpushSendFunc) *PushSender {
	t.Helper()
	sender, err := NewPushSender(db, keys)
	require.NoError(t, err)
	if fn != nil {
		sender.sendFn = fn
	}
	return sender
}

func TestPushSenderDeliversToEverySubscription(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	user := seedUser(t, db, "alice")
	seedSubscription(t, db, user.ID, "https://push.example.com/sub/1")
	seedSubscription(t, db, user.ID, "https://push.example.com/sub/2")

	var endpoints []string
	sender := newTestPushSender(t, db, testVAPID, func(_ context.Context, message []byte, sub *webpush.Subscription, opts *webpush.Options) (int, error) {
		require.Equal(t, testVAPID.Subscriber, opts.Subscriber)
		require.Contains(t, string(message), "Meeting Reminder")
		endpoints = append(endpoints, sub.Endpoint)
		return http.StatusCreated, nil
	})

	err := sender.Send(context.Background(), user.ID, PushPayload{Title: "Meeting Reminder", Body: "Standup starts in 15 minutes"})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{
		"https://push.example.com/sub/1",
		"https://push.example.com/sub/2",
	}, endpoints)
}

func TestPushSenderRemovesGoneSubscriptions(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	user := seedUser(t, db, "alice")
	alive := seedSubscription(t, db, user.ID, "https://push.example.com/alive")
	gone := seedSubscription(t, db, user.ID, "https://push.example.com/gone")

	sender := newTestPushSender(t, db, testVAPID, func(_ context.Context, _ []byte, sub *webpush.Subscription, _ *webpush.Options) (int, error) {
		if sub.Endpoint == gone.Endpoint {
			return http.StatusGone, nil
		}
		return http.StatusCreated, nil
	})

	require.NoError(t, sender.Send(context.Background(), user.ID, PushPayload{Title: "t"}))

	var remaining []models.PushSubscription
	require.NoError(t, db.Where("user_id = ?", user.ID).Find(&remaining).Error)
	require.Len(t, remaining, 1)
	require.Equal(t, alive.ID, remaining[0].ID)
}

func TestPushSenderPartialFailureIsSuccess(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	user := seedUser(t, db, "alice")
	seedSubscription(t, db, user.ID, "https://push.example.com/ok")
	seedSubscription(t, db, user.ID, "https://push.example.com/bad")

	sender := newTestPushSender(t, db, testVAPID, func(_ context.Context, _ []byte, sub *webpush.Subscription, _ *webpush.Options) (int, error) {
		if sub.Endpoint == "https://push.example.com/bad" {
			return 0, errors.New("provider unreachable")
		}
		return http.StatusCreated, nil
	})

	require.NoError(t, sender.Send(context.Background(), user.ID, PushPayload{Title: "t"}))
}

func TestPushSenderAllFailuresReturnError(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	user := seedUser(t, db, "alice")
	seedSubscription(t, db, user.ID, "https://push.example.com/bad")

	providerErr := errors.New("provider unreachable")
	sender := newTestPushSender(t, db, testVAPID, func(_ context.Context, _ []byte, _ *webpush.Subscription, _ *webpush.Options) (int, error) {
		return 0, providerErr
	})

	err := sender.Send(context.Background(), user.ID, PushPayload{Title: "t"})
	require.Error(t, err)
	require.ErrorIs(t, err, providerErr)
}

func TestPushSenderUnconfiguredIsNoOp(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	user := seedUser(t, db, "alice")
	seedSubscription(t, db, user.ID, "https://push.example.com/sub")

	called := false
	sender := newTestPushSender(t, db, VAPIDKeys{}, func(_ context.Context, _ []byte, _ *webpush.Subscription, _ *webpush.Options) (int, error) {
		called = true
		return http.StatusCreated, nil
	})

	require.NoError(t, sender.Send(context.Background(), user.ID, PushPayload{Title: "t"}))
	require.False(t, called)
}

func TestPushSenderNoSubscriptionsIsNoOp(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	user := seedUser(t, db, "alice")

	sender := newTestPushSender(t, db, testVAPID, func(_ context.Context, _ []byte, _ *webpush.Subscription, _ *webpush.Options) (int, error) {
		t.Fatal("send should not be called")
		return 0, nil
	})

	require.NoError(t, sender.Send(context.Background(), user.ID, PushPayload{Title: "t"}))
}
