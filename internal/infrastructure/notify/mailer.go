package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/suraksha/efir-anchor/internal/config"
)

// Mailer delivers one-time codes over SMTP. With no host configured it runs
// in dev mode and only logs the delivery, mirroring a console transport.
type Mailer struct {
	config config.Notify
}

func NewMailer(config config.Notify) *Mailer {
	return &Mailer{config: config}
}

func (m *Mailer) SendOTP(ctx context.Context, email, code string) error {
	if m.config.SMTPHost == "" {
		slog.InfoContext(ctx, "otp issued (dev delivery)",
			slog.String("to", email),
		)
		return nil
	}

	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Your Access Code\r\n\r\nYour verification code is: %s\r\n",
		m.config.From, email, code,
	)

	addr := fmt.Sprintf("%s:%d", m.config.SMTPHost, m.config.SMTPPort)
	var auth smtp.Auth
	if m.config.SMTPUser != "" {
		auth = smtp.PlainAuth("", m.config.SMTPUser, m.config.SMTPPassword, m.config.SMTPHost)
	}

	if err := smtp.SendMail(addr, auth, m.config.From, []string{email}, []byte(msg)); err != nil {
		return fmt.Errorf("send otp mail: %w", err)
	}
	return nil
}
