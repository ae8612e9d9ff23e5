package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// MailConfig holds SMTP settings.
type MailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	From         string
}

// Mailer sends email through an SMTP server.
type Mailer struct {
	cfg    MailConfig
	dialer *gomail.Dialer
}

// New creates a Mailer. It does not connect until the first message is sent.
func New(cfg MailConfig) *Mailer {
	return &Mailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
	}
}

// NewMessage builds a plain text message from the configured sender.
func (m *Mailer) NewMessage(toEmail, subject, body string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return msg
}

// SendMail delivers one message.
func (m *Mailer) SendMail(toEmail, subject, body string) error {
	if err := m.dialer.DialAndSend(m.NewMessage(toEmail, subject, body)); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", toEmail, err)
	}
	return nil
}
