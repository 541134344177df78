package app

import "github.com/mmo1994/meetsync/pkg/mail"

// SMTPSettings converts EmailConfig to the mail package representation.
func (c EmailConfig) SMTPSettings() mail.SMTPSettings {
	return mail.SMTPSettings{
		Enabled:  c.SMTP.Enabled,
		Host:     c.SMTP.Host,
		Port:     c.SMTP.Port,
		Username: c.SMTP.Username,
		Password: c.SMTP.Password,
		From:     c.SMTP.From,
		UseTLS:   c.SMTP.UseTLS,
		Timeout:  c.SMTP.Timeout,
	}
}

// Configured reports whether VAPID keys are present; without them the push
// channel degrades to a logged no-op.
func (c PushConfig) Configured() bool {
	return c.Enabled && c.VAPIDPublicKey != "" && c.VAPIDPrivateKey != ""
}
