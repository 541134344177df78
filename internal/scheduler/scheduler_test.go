package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/require"

	"github.com/mmo1994/meetsync/internal/database/testutil"
	"github.com/mmo1994/meetsync/internal/models"
)

type fakeTicker struct {
	ticks int
	err   error
}

func (f *fakeTicker) RunTick(_ context.Context) error {
	f.ticks++
	return f.err
}

func TestCleanupSessions(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	now := time.Date(2026, 2, 10, 15, 0, 0, 0, time.UTC)

	user := models.User{Username: "alice", Email: "alice@example.com"}
	require.NoError(t, db.Create(&user).Error)

	expired := models.Session{
		UserID:       user.ID,
		RefreshToken: "expired",
		ExpiresAt:    now.Add(-time.Hour),
	}
	revokedAt := now.Add(-time.Minute)
	revoked := models.Session{
		UserID:       user.ID,
		RefreshToken: "revoked",
		ExpiresAt:    now.Add(time.Hour),
		RevokedAt:    &revokedAt,
	}
	active := models.Session{
		UserID:       user.ID,
		RefreshToken: "active",
		ExpiresAt:    now.Add(time.Hour),
	}
	require.NoError(t, db.Create(&expired).Error)
	require.NoError(t, db.Create(&revoked).Error)
	require.NoError(t, db.Create(&active).Error)

	removed, err := CleanupSessions(context.Background(), db, now)
	require.NoError(t, err)
	require.Equal(t, int64(2), removed)

	var remaining []models.Session
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	require.Equal(t, "active", remaining[0].RefreshToken)
}

func TestCleanupSessionsRequiresDB(t *testing.T) {
	_, err := CleanupSessions(context.Background(), nil, time.Now())
	require.Error(t, err)
}

func TestSchedulerRunOnce(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	ticker := &fakeTicker{}

	s, err := New(ticker, db, WithNow(func() time.Time {
		return time.Date(2026, 2, 10, 15, 0, 0, 0, time.UTC)
	}))
	require.NoError(t, err)

	require.NoError(t, s.RunOnce(context.Background()))
	require.Equal(t, 1, ticker.ticks)
}

func TestSchedulerRunOncePropagatesTickError(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	tickErr := errors.New("selection failed")
	ticker := &fakeTicker{err: tickErr}

	s, err := New(ticker, db)
	require.NoError(t, err)

	err = s.RunOnce(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, tickErr)
}

func TestSchedulerStartRegistersJobs(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	c := cron.New(cron.WithLogger(cron.DiscardLogger))

	s, err := New(&fakeTicker{}, db, WithCron(c))
	require.NoError(t, err)
	require.NoError(t, s.Start())
	t.Cleanup(func() { <-s.Stop().Done() })

	require.Len(t, c.Entries(), 2)
}

func TestSchedulerStartWithoutDBSkipsCleanup(t *testing.T) {
	c := cron.New(cron.WithLogger(cron.DiscardLogger))

	s, err := New(&fakeTicker{}, nil, WithCron(c))
	require.NoError(t, err)
	require.NoError(t, s.Start())
	t.Cleanup(func() { <-s.Stop().Done() })

	require.Len(t, c.Entries(), 1)
}

func TestSchedulerRejectsBadSchedule(t *testing.T) {
	s, err := New(&fakeTicker{}, nil, WithDispatchSchedule("not a spec"))
	require.NoError(t, err)
	require.Error(t, s.Start())
}

func TestNewRequiresDispatcher(t *testing.T) {
	_, err := New(nil, nil)
	require.Error(t, err)
}
