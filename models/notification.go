package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ChannelEmail = "email"

	NotificationStatusSent   = "sent"
	NotificationStatusFailed = "failed"

	TypeOrderConfirmation = "order_confirmation"
	TypeOrderShipped      = "order_shipped"
	TypeNewsletterConfirm = "newsletter_confirmation"
	TypeNewsletterWelcome = "newsletter_welcome"
	TypeTestEmail         = "test_email"
)

// NotificationLog records every dispatch attempt, successful or not.
type NotificationLog struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Recipient string     `gorm:"type:varchar(254);not null" json:"recipient"`
	Type      string     `gorm:"type:varchar(40);not null" json:"type"`
	Channel   string     `gorm:"type:varchar(10);not null" json:"channel"`
	Status    string     `gorm:"type:varchar(10);not null" json:"status"`
	Error     string     `gorm:"type:text" json:"error,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// NotificationFilter narrows log listings.
type NotificationFilter struct {
	UserID   *uuid.UUID
	Status   string
	Type     string
	Page     int
	PageSize int
}
