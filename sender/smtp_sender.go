package sender

import (
	"context"
	"fmt"
	"net/smtp"
	"time"
)

// SMTPSender delivers mail over plain-auth SMTP.
type SMTPSender struct {
	host string
	port string
	user string
	pass string
	from string
}

// NewSMTPSender returns an SMTP-backed sender. All fields are required.
func NewSMTPSender(host, port, user, pass, from string) (*SMTPSender, error) {
	if host == "" || port == "" || user == "" || pass == "" {
		return nil, fmt.Errorf("incomplete SMTP configuration")
	}
	return &SMTPSender{host: host, port: port, user: user, pass: pass, from: from}, nil
}

func (s *SMTPSender) SendEmail(ctx context.Context, to, subject, body string) (SendResult, error) {
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	auth := smtp.PlainAuth("", s.user, s.pass, s.host)

	msg := []byte(
		"From: " + s.from + "\r\n" +
			"To: " + to + "\r\n" +
			"Subject: " + subject + "\r\n" +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n" +
			"\r\n" +
			body,
	)

	if err := smtp.SendMail(addr, auth, s.from, []string{to}, msg); err != nil {
		return SendResult{}, fmt.Errorf("smtp send failed: %w", err)
	}

	return SendResult{
		MessageID: fmt.Sprintf("smtp-%d", time.Now().UnixNano()),
		SentAt:    time.Now(),
	}, nil
}
