package reminders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mmo1994/meetsync/internal/models"
	"github.com/mmo1994/meetsync/internal/services"
	"github.com/mmo1994/meetsync/pkg/logger"
	"github.com/mmo1994/meetsync/pkg/metrics"
)

const (
	defaultChannelTimeout = 5 * time.Second

	// claimTTL bounds how long a claim blocks other ticks. A tick that died
	// mid-dispatch releases its reminders after this long.
	claimTTL = 10 * time.Minute
)

// EmailChannel sends one reminder email.
type EmailChannel interface {
	Send(ctx context.Context, to string, payload MeetingEmail) error
}

// PushChannel sends one push notification burst to a user.
type PushChannel interface {
	Send(ctx context.Context, userID string, payload PushPayload) error
}

// NotificationWriter persists one in-app notification.
type NotificationWriter interface {
	Create(ctx context.Context, input services.CreateNotificationInput) (*services.NotificationDTO, error)
}

// PreferenceResolver returns the effective channel toggles for a user.
type PreferenceResolver interface {
	Effective(ctx context.Context, userID string) (services.ChannelPreferences, error)
}

// Dispatcher runs one reminder tick: select the due batch, fan out across
// channels per participant, mark each reminder sent.
type Dispatcher struct {
	db             *gorm.DB
	selector       *Selector
	email          EmailChannel
	push           PushChannel
	inApp          NotificationWriter
	prefs          PreferenceResolver
	channelTimeout time.Duration
	now            func() time.Time
	log            *zap.Logger
}

// DispatcherOption customises the Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithNow overrides the clock, primarily for tests.
func WithNow(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

// WithChannelTimeout bounds each outbound email/push call.
func WithChannelTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.channelTimeout = timeout
		}
	}
}

// NewDispatcher wires the dispatch loop to its collaborators.
func NewDispatcher(
	db *gorm.DB,
	selector *Selector,
	email EmailChannel,
	push PushChannel,
	inApp NotificationWriter,
	prefs PreferenceResolver,
	opts ...DispatcherOption,
) (*Dispatcher, error) {
	switch {
	case db == nil:
		return nil, errors.New("dispatcher: db is required")
	case selector == nil:
		return nil, errors.New("dispatcher: selector is required")
	case email == nil:
		return nil, errors.New("dispatcher: email channel is required")
	case push == nil:
		return nil, errors.New("dispatcher: push channel is required")
	case inApp == nil:
		return nil, errors.New("dispatcher: notification writer is required")
	case prefs == nil:
		return nil, errors.New("dispatcher: preference resolver is required")
	}

	d := &Dispatcher{
		db:             db,
		selector:       selector,
		email:          email,
		push:           push,
		inApp:          inApp,
		prefs:          prefs,
		channelTimeout: defaultChannelTimeout,
		now:            time.Now,
		log:            logger.WithModule("reminders.dispatch"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// RunTick executes one dispatch cycle. A selection failure aborts the tick;
// per-reminder failures are isolated so the rest of the batch still runs.
func (d *Dispatcher) RunTick(ctx context.Context) error {
	started := d.now()
	defer func() {
		metrics.DispatchTickDuration.Observe(d.now().Sub(started).Seconds())
	}()

	batch, err := d.selector.DueBatch(ctx, started)
	if err != nil {
		d.log.Error("due-batch query failed; aborting tick", zap.Error(err))
		return err
	}
	if len(batch) == 0 {
		return nil
	}

	metrics.RemindersSelected.Add(float64(len(batch)))
	d.log.Info("dispatching due reminders", zap.Int("count", len(batch)))

	for i := range batch {
		d.dispatchReminder(ctx, &batch[i])
	}
	return nil
}

// dispatchReminder fans one reminder out to every linked participant and
// marks it sent. Never returns an error and never lets a panic escape: one
// broken reminder must not sink the batch.
func (d *Dispatcher) dispatchReminder(ctx context.Context, reminder *models.Reminder) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("panic while dispatching reminder",
				zap.String("reminder_id", reminder.ID),
				zap.Any("panic", r),
			)
		}
	}()

	if reminder.Meeting == nil {
		d.log.Warn("reminder missing meeting; skipping", zap.String("reminder_id", reminder.ID))
		return
	}

	if !d.claim(ctx, reminder) {
		d.log.Debug("reminder already claimed by another tick", zap.String("reminder_id", reminder.ID))
		return
	}

	clean := true
	for i := range reminder.Meeting.Participants {
		if !d.notifyParticipant(ctx, reminder, &reminder.Meeting.Participants[i]) {
			clean = false
		}
	}

	// Completion is unconditional: the flags record that dispatch was
	// attempted. Failed channels are visible in logs and metrics only.
	if err := d.markSent(ctx, reminder); err != nil {
		d.log.Error("failed to mark reminder sent",
			zap.String("reminder_id", reminder.ID),
			zap.Error(err),
		)
		return
	}

	result := "complete"
	if !clean {
		result = "partial"
	}
	metrics.RemindersDispatched.WithLabelValues(result).Inc()
	d.log.Info("reminder dispatched",
		zap.String("reminder_id", reminder.ID),
		zap.String("meeting_id", reminder.MeetingID),
		zap.Int("lead_time_minutes", reminder.LeadTimeMinutes),
		zap.String("result", result),
	)
}

// claim atomically marks the reminder as being dispatched by this tick.
// The conditional update is the guard against overlapping ticks double
// sending: only one writer can flip dispatch_started_at from NULL (or a
// stale value) to now.
func (d *Dispatcher) claim(ctx context.Context, reminder *models.Reminder) bool {
	now := d.now()
	result := d.db.WithContext(ctx).
		Model(&models.Reminder{}).
		Where("id = ? AND sent_at IS NULL", reminder.ID).
		Where("dispatch_started_at IS NULL OR dispatch_started_at < ?", now.Add(-claimTTL)).
		Update("dispatch_started_at", now)
	if result.Error != nil {
		d.log.Error("claim update failed",
			zap.String("reminder_id", reminder.ID),
			zap.Error(result.Error),
		)
		return false
	}
	return result.RowsAffected == 1
}

// notifyParticipant attempts the enabled channels for one participant.
// Returns false when any channel call failed. Participants without linked
// accounts are skipped silently: they cannot receive in-app or push
// notifications, and this mechanism does not retry them.
func (d *Dispatcher) notifyParticipant(ctx context.Context, reminder *models.Reminder, participant *models.Participant) bool {
	if participant.UserID == nil || participant.User == nil {
		return true
	}
	userID := *participant.UserID

	prefs, err := d.prefs.Effective(ctx, userID)
	if err != nil {
		// Preferences are advisory; fail open rather than dropping the user.
		d.log.Warn("preference lookup failed; using defaults",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		prefs = services.DefaultChannelPreferences()
	}

	meeting := reminder.Meeting
	leadHuman := humanizeLeadTime(reminder.LeadTimeMinutes)
	clean := true

	if prefs.InApp {
		_, err := d.inApp.Create(ctx, services.CreateNotificationInput{
			UserID:    userID,
			Type:      models.NotificationTypeMeetingReminder,
			Title:     "Meeting Reminder",
			Message:   fmt.Sprintf("%q starts in %s", meeting.Title, leadHuman),
			MeetingID: &reminder.MeetingID,
			Metadata:  map[string]any{"lead_time_minutes": reminder.LeadTimeMinutes},
		})
		if err != nil {
			clean = false
			metrics.ChannelSends.WithLabelValues("in_app", "failure").Inc()
			d.log.Warn("in-app notification failed",
				zap.String("user_id", userID),
				zap.Error(err),
			)
		} else {
			metrics.ChannelSends.WithLabelValues("in_app", "success").Inc()
		}
	} else {
		metrics.ChannelSends.WithLabelValues("in_app", "skipped").Inc()
	}

	if prefs.Email {
		if err := d.sendEmail(ctx, reminder, participant); err != nil {
			clean = false
			metrics.ChannelSends.WithLabelValues("email", "failure").Inc()
			d.log.Warn("email delivery failed",
				zap.String("to", participant.Email),
				zap.String("meeting_id", reminder.MeetingID),
				zap.Error(err),
			)
		} else {
			metrics.ChannelSends.WithLabelValues("email", "success").Inc()
		}
	} else {
		metrics.ChannelSends.WithLabelValues("email", "skipped").Inc()
	}

	if prefs.Push {
		if err := d.sendPush(ctx, reminder, userID, leadHuman); err != nil {
			clean = false
			metrics.ChannelSends.WithLabelValues("push", "failure").Inc()
			d.log.Warn("push delivery failed",
				zap.String("user_id", userID),
				zap.String("meeting_id", reminder.MeetingID),
				zap.Error(err),
			)
		} else {
			metrics.ChannelSends.WithLabelValues("push", "success").Inc()
		}
	} else {
		metrics.ChannelSends.WithLabelValues("push", "skipped").Inc()
	}

	return clean
}

func (d *Dispatcher) sendEmail(ctx context.Context, reminder *models.Reminder, participant *models.Participant) error {
	ctx, cancel := context.WithTimeout(ctx, d.channelTimeout)
	defer cancel()

	meeting := reminder.Meeting

	emails := make([]string, 0, len(meeting.Participants))
	for _, p := range meeting.Participants {
		emails = append(emails, p.Email)
	}

	organizer := ""
	if meeting.Owner != nil {
		organizer = meeting.Owner.Name()
	}

	return d.email.Send(ctx, participant.Email, MeetingEmail{
		MeetingTitle:      meeting.Title,
		Description:       meeting.Description,
		StartTime:         meeting.StartTime,
		EndTime:           meeting.EndTime,
		Timezone:          meeting.Timezone,
		VideoLink:         meeting.VideoLink,
		OrganizerName:     organizer,
		ParticipantEmails: emails,
		LeadTimeMinutes:   reminder.LeadTimeMinutes,
	})
}

func (d *Dispatcher) sendPush(ctx context.Context, reminder *models.Reminder, userID, leadHuman string) error {
	ctx, cancel := context.WithTimeout(ctx, d.channelTimeout)
	defer cancel()

	return d.push.Send(ctx, userID, PushPayload{
		Title: "Meeting Reminder",
		Body:  fmt.Sprintf("%s starts in %s", reminder.Meeting.Title, leadHuman),
		Data:  map[string]string{"meeting_id": reminder.MeetingID},
	})
}

func (d *Dispatcher) markSent(ctx context.Context, reminder *models.Reminder) error {
	now := d.now()
	return d.db.WithContext(ctx).
		Model(&models.Reminder{}).
		Where("id = ?", reminder.ID).
		Updates(map[string]any{
			"sent_at":        now,
			"email_sent":     true,
			"push_sent":      true,
			"in_app_created": true,
		}).Error
}
