package reminders

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mmo1994/meetsync/internal/database/testutil"
	"github.com/mmo1994/meetsync/internal/models"
)

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedMeeting(t *testing.T, db *gorm.DB, owner *models.User, start time.Time) *models.Meeting {
	t.Helper()
	meeting := &models.Meeting{
		Title:     "Sprint Planning",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Timezone:  "UTC",
		OwnerID:   owner.ID,
	}
	require.NoError(t, db.Create(meeting).Error)
	return meeting
}

func seedReminder(t *testing.T, db *gorm.DB, meeting *models.Meeting, fireTime time.Time, lead int) *models.Reminder {
	t.Helper()
	reminder := &models.Reminder{
		MeetingID:       meeting.ID,
		LeadTimeMinutes: lead,
		FireTime:        fireTime,
	}
	require.NoError(t, db.Create(reminder).Error)
	return reminder
}

func TestDueBatchWindowAndExclusions(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	owner := seedUser(t, db, "owner")
	now := time.Now().UTC().Truncate(time.Second)

	upcoming := seedMeeting(t, db, owner, now.Add(30*time.Minute))
	due := seedReminder(t, db, upcoming, now.Add(-2*time.Minute), 30)
	withinWindow := seedReminder(t, db, upcoming, now.Add(30*time.Second), 29)
	seedReminder(t, db, upcoming, now.Add(5*time.Minute), 25) // beyond look-ahead

	sent := seedReminder(t, db, upcoming, now.Add(-time.Minute), 15)
	sentAt := now.Add(-time.Minute)
	require.NoError(t, db.Model(sent).Update("sent_at", sentAt).Error)

	cancelled := seedMeeting(t, db, owner, now.Add(30*time.Minute))
	require.NoError(t, db.Model(cancelled).Update("is_cancelled", true).Error)
	seedReminder(t, db, cancelled, now.Add(-time.Minute), 30)

	started := seedMeeting(t, db, owner, now.Add(-10*time.Minute))
	seedReminder(t, db, started, now.Add(-40*time.Minute), 30)

	selector, err := NewSelector(db, 0, 0)
	require.NoError(t, err)

	batch, err := selector.DueBatch(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, batch, 2)

	// Ordered by fire time ascending.
	require.Equal(t, due.ID, batch[0].ID)
	require.Equal(t, withinWindow.ID, batch[1].ID)
}

func TestDueBatchRespectsBatchSize(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	owner := seedUser(t, db, "owner")
	now := time.Now().UTC()

	meeting := seedMeeting(t, db, owner, now.Add(time.Hour))
	for i := 0; i < 5; i++ {
		seedReminder(t, db, meeting, now.Add(-time.Duration(i)*time.Second), 60)
	}

	selector, err := NewSelector(db, 3, time.Minute)
	require.NoError(t, err)

	batch, err := selector.DueBatch(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, batch, 3)
}

func TestDueBatchEagerLoadsGraph(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	owner := seedUser(t, db, "owner")
	member := seedUser(t, db, "member")
	now := time.Now().UTC()

	meeting := seedMeeting(t, db, owner, now.Add(time.Hour))
	require.NoError(t, db.Create(&models.Participant{
		MeetingID: meeting.ID,
		Email:     member.Email,
		UserID:    &member.ID,
		Status:    models.ParticipantAccepted,
	}).Error)
	require.NoError(t, db.Create(&models.Participant{
		MeetingID: meeting.ID,
		Email:     "guest@example.com",
		Status:    models.ParticipantInvited,
	}).Error)
	seedReminder(t, db, meeting, now, 60)

	selector, err := NewSelector(db, 10, time.Minute)
	require.NoError(t, err)

	batch, err := selector.DueBatch(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, batch, 1)

	got := batch[0]
	require.NotNil(t, got.Meeting)
	require.NotNil(t, got.Meeting.Owner)
	require.Equal(t, owner.ID, got.Meeting.Owner.ID)
	require.Len(t, got.Meeting.Participants, 2)

	var linked, guest bool
	for _, p := range got.Meeting.Participants {
		if p.UserID != nil {
			require.NotNil(t, p.User)
			require.Equal(t, member.ID, p.User.ID)
			linked = true
		} else {
			require.Nil(t, p.User)
			guest = true
		}
	}
	require.True(t, linked)
	require.True(t, guest)
}

func TestNewSelectorRequiresDB(t *testing.T) {
	_, err := NewSelector(nil, 10, time.Minute)
	require.Error(t, err)
}
