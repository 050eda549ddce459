package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Nickflanagn24/bookstore/models"
)

// NewsletterRepository defines data access for newsletter subscribers.
type NewsletterRepository interface {
	Create(ctx context.Context, sub *models.NewsletterSubscriber) error
	FindByEmail(ctx context.Context, email string) (*models.NewsletterSubscriber, error)
	FindByToken(ctx context.Context, token uuid.UUID) (*models.NewsletterSubscriber, error)
	Save(ctx context.Context, sub *models.NewsletterSubscriber) error
}

type gormNewsletterRepository struct {
	db *gorm.DB
}

// NewGormNewsletterRepository creates the GORM-backed subscriber repository.
func NewGormNewsletterRepository(db *gorm.DB) NewsletterRepository {
	return &gormNewsletterRepository{db: db}
}

func (r *gormNewsletterRepository) Create(ctx context.Context, sub *models.NewsletterSubscriber) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *gormNewsletterRepository) FindByEmail(ctx context.Context, email string) (*models.NewsletterSubscriber, error) {
	var sub models.NewsletterSubscriber
	if err := r.db.WithContext(ctx).First(&sub, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormNewsletterRepository) FindByToken(ctx context.Context, token uuid.UUID) (*models.NewsletterSubscriber, error) {
	var sub models.NewsletterSubscriber
	if err := r.db.WithContext(ctx).First(&sub, "confirmation_token = ?", token).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormNewsletterRepository) Save(ctx context.Context, sub *models.NewsletterSubscriber) error {
	return r.db.WithContext(ctx).Save(sub).Error
}
