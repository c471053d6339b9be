// Package mailer delivers one-time codes and password-reset links. The
// services depend on the interface declared alongside them; both
// implementations here are fire-and-forget with errors surfaced to the
// caller, no retries.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
)

// SMTP sends real mail through a plain SMTP relay. SMS delivery has no
// upstream provider wired yet and falls back to logging.
type SMTP struct {
	host string
	port string
	auth smtp.Auth
	from string
}

func NewSMTP(host, port, username, password, from string) *SMTP {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTP{host: host, port: port, auth: auth, from: from}
}

func (m *SMTP) SendOTPEmail(ctx context.Context, email, code string) error {
	body := fmt.Sprintf("Your lunamarket verification code is %s. It expires soon; do not share it.", code)
	return m.send(email, "Your verification code", body)
}

func (m *SMTP) SendPasswordResetEmail(ctx context.Context, email, resetToken string) error {
	body := fmt.Sprintf("Use this token to reset your lunamarket password: %s\nIf you did not request a reset, ignore this mail.", resetToken)
	return m.send(email, "Password reset", body)
}

func (m *SMTP) SendSMS(ctx context.Context, phone, code string) error {
	// No SMS gateway configured in this deployment.
	slog.Info("sms delivery skipped, no gateway", "phone", phone)
	return nil
}

func (m *SMTP) send(to, subject, body string) error {
	msg := []byte("From: " + m.from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n\r\n" +
		body + "\r\n")
	if err := smtp.SendMail(m.host+":"+m.port, m.auth, m.from, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}

// Log writes deliveries to the structured log instead of sending them.
// Used in development and as the fallback when SMTP is not configured.
type Log struct{}

func (Log) SendOTPEmail(ctx context.Context, email, code string) error {
	slog.Info("otp email", "email", email, "code", code)
	return nil
}

func (Log) SendPasswordResetEmail(ctx context.Context, email, resetToken string) error {
	slog.Info("password reset email", "email", email, "token", resetToken)
	return nil
}

func (Log) SendSMS(ctx context.Context, phone, code string) error {
	slog.Info("otp sms", "phone", phone, "code", code)
	return nil
}
