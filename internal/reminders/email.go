package reminders

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mmo1994/meetsync/pkg/logger"
	"github.com/mmo1994/meetsync/pkg/mail"
)

// MeetingEmail is the structured payload the email channel renders.
type MeetingEmail struct {
	MeetingTitle      string
	Description       string
	StartTime         time.Time
	EndTime           time.Time
	Timezone          string
	VideoLink         string
	OrganizerName     string
	ParticipantEmails []string
	LeadTimeMinutes   int
}

// EmailSender delivers meeting reminder emails over SMTP. When the mailer is
// not configured, delivery degrades to a logged no-op: callers treat that the
// same as success.
type EmailSender struct {
	mailer mail.Mailer
	log    *zap.Logger
}

// NewEmailSender constructs an EmailSender. A nil mailer is allowed and
// yields the logged no-op behaviour.
func NewEmailSender(mailer mail.Mailer) *EmailSender {
	return &EmailSender{
		mailer: mailer,
		log:    logger.WithModule("reminders.email"),
	}
}

var emailTemplate = template.Must(template.New("reminder").Parse(`<html>
<body>
  <h2>Meeting Reminder</h2>
  <p><strong>{{.MeetingTitle}}</strong> starts in {{.LeadHuman}}.</p>
  {{if .Description}}<p>{{.Description}}</p>{{end}}
  <ul>
    <li>Starts: {{.StartFormatted}} ({{.Timezone}})</li>
    <li>Ends: {{.EndFormatted}} ({{.Timezone}})</li>
    <li>Organizer: {{.OrganizerName}}</li>
    {{if .VideoLink}}<li>Join: <a href="{{.VideoLink}}">{{.VideoLink}}</a></li>{{end}}
  </ul>
  {{if .ParticipantEmails}}<p>Participants: {{.ParticipantList}}</p>{{end}}
</body>
</html>`))

type emailTemplateData struct {
	MeetingEmail
	LeadHuman       string
	StartFormatted  string
	EndFormatted    string
	ParticipantList string
}

// Send composes and dispatches one reminder email. A disabled SMTP transport
// logs the intent and returns nil; transport-level failures are returned.
func (s *EmailSender) Send(ctx context.Context, to string, payload MeetingEmail) error {
	subject := fmt.Sprintf("Reminder: %s starts in %s", payload.MeetingTitle, humanizeLeadTime(payload.LeadTimeMinutes))

	if s.mailer == nil {
		s.log.Info("smtp not configured; skipping email",
			zap.String("to", to),
			zap.String("subject", subject),
		)
		return nil
	}

	body, err := renderEmailBody(payload)
	if err != nil {
		return fmt.Errorf("email sender: render template: %w", err)
	}

	err = s.mailer.Send(ctx, mail.Message{
		To:      []string{to},
		Subject: subject,
		Body:    body,
		HTML:    true,
	})
	if errors.Is(err, mail.ErrSMTPDisabled) {
		s.log.Info("smtp disabled; skipping email",
			zap.String("to", to),
			zap.String("subject", subject),
		)
		return nil
	}
	if err != nil {
		return fmt.Errorf("email sender: deliver to %s: %w", to, err)
	}
	return nil
}

func renderEmailBody(payload MeetingEmail) (string, error) {
	loc := payload.StartTime.Location()
	if tz, err := time.LoadLocation(payload.Timezone); err == nil && payload.Timezone != "" {
		loc = tz
	}

	data := emailTemplateData{
		MeetingEmail:    payload,
		LeadHuman:       humanizeLeadTime(payload.LeadTimeMinutes),
		StartFormatted:  payload.StartTime.In(loc).Format("Mon, 02 Jan 2006 15:04"),
		EndFormatted:    payload.EndTime.In(loc).Format("Mon, 02 Jan 2006 15:04"),
		ParticipantList: strings.Join(payload.ParticipantEmails, ", "),
	}

	var buf bytes.Buffer
	if err := emailTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// humanizeLeadTime renders a lead time in minutes as operator-friendly text.
func humanizeLeadTime(minutes int) string {
	switch {
	case minutes <= 0:
		return "moments"
	case minutes < 60:
		return plural(minutes, "minute")
	case minutes%1440 == 0:
		return plural(minutes/1440, "day")
	case minutes%60 == 0:
		return plural(minutes/60, "hour")
	default:
		return fmt.Sprintf("%s %s", plural(minutes/60, "hour"), plural(minutes%60, "minute"))
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
