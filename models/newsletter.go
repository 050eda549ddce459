package models

import (
	"time"

	"github.com/google/uuid"
)

// NewsletterSubscriber tracks a double opt-in subscription. A row is
// created unconfirmed on signup, confirmed by visiting the tokened link,
// and deactivated (never deleted) on unsubscribe so a later signup
// reactivates the same row.
type NewsletterSubscriber struct {
	ID                uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email             string     `gorm:"type:varchar(254);uniqueIndex;not null" json:"email"`
	IsConfirmed       bool       `gorm:"default:false" json:"is_confirmed"`
	IsActive          bool       `gorm:"default:true" json:"is_active"`
	ConfirmationToken uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"-"`
	SubscribedAt      time.Time  `gorm:"autoCreateTime" json:"subscribed_at"`
	ConfirmedAt       *time.Time `json:"confirmed_at,omitempty"`
}
