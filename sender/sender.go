package sender

import (
	"context"
	"time"
)

// SendResult describes a completed dispatch.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// EmailSender delivers a single email.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) (SendResult, error)
}
