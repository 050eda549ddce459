package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Nickflanagn24/bookstore/models"
	"github.com/Nickflanagn24/bookstore/repository"
)

// SubscribeResult reports what subscribing did for an address.
type SubscribeResult struct {
	Subscriber *models.NewsletterSubscriber
	// AlreadySubscribed is set when the address was already confirmed
	// and active; no email is sent in that case.
	AlreadySubscribed bool
}

// NewsletterService implements double opt-in newsletter membership.
// A subscription only becomes active once the confirmation link sent
// to the address is followed.
type NewsletterService interface {
	Subscribe(ctx context.Context, email string) (*SubscribeResult, *ServiceError)
	Confirm(ctx context.Context, token uuid.UUID) (*models.NewsletterSubscriber, *ServiceError)
	Unsubscribe(ctx context.Context, token uuid.UUID) *ServiceError
}

type newsletterServiceImpl struct {
	subscribers   repository.NewsletterRepository
	notifications NotificationService
	siteBaseURL   string
	logger        *zap.Logger
}

// NewNewsletterService creates the newsletter service.
func NewNewsletterService(subscribers repository.NewsletterRepository, notifications NotificationService, siteBaseURL string, logger *zap.Logger) NewsletterService {
	return &newsletterServiceImpl{
		subscribers:   subscribers,
		notifications: notifications,
		siteBaseURL:   siteBaseURL,
		logger:        logger,
	}
}

func (s *newsletterServiceImpl) Subscribe(ctx context.Context, email string) (*SubscribeResult, *ServiceError) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, badRequest("Email address is required")
	}

	sub, err := s.subscribers.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return s.resubscribe(ctx, sub)
	case errors.Is(err, gorm.ErrRecordNotFound):
		// New address, fall through.
	default:
		s.logger.Error("Failed to look up subscriber", zap.Error(err))
		return nil, internal("Failed to subscribe")
	}

	sub = &models.NewsletterSubscriber{
		Email:             email,
		ConfirmationToken: uuid.New(),
		IsActive:          true,
	}
	if err := s.subscribers.Create(ctx, sub); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// A concurrent subscribe for the same address won; treat it
			// as already handled.
			return &SubscribeResult{Subscriber: sub, AlreadySubscribed: true}, nil
		}
		s.logger.Error("Failed to create subscriber", zap.Error(err))
		return nil, internal("Failed to subscribe")
	}

	s.notifications.SendNewsletterConfirmation(ctx, sub, s.confirmURL(sub.ConfirmationToken))
	s.logger.Info("Newsletter subscription started", zap.String("email", email))
	return &SubscribeResult{Subscriber: sub}, nil
}

// resubscribe handles an address that already has a row. A confirmed,
// active subscriber is a no-op; a lapsed or unconfirmed one is revived.
func (s *newsletterServiceImpl) resubscribe(ctx context.Context, sub *models.NewsletterSubscriber) (*SubscribeResult, *ServiceError) {
	if sub.IsConfirmed && sub.IsActive {
		return &SubscribeResult{Subscriber: sub, AlreadySubscribed: true}, nil
	}

	sub.IsActive = true
	if sub.IsConfirmed {
		// Previously confirmed and unsubscribed: reactivate without a
		// second opt-in round trip.
		if err := s.subscribers.Save(ctx, sub); err != nil {
			s.logger.Error("Failed to reactivate subscriber", zap.Error(err))
			return nil, internal("Failed to subscribe")
		}
		s.notifications.SendNewsletterWelcome(ctx, sub)
		s.logger.Info("Newsletter subscription reactivated", zap.String("email", sub.Email))
		return &SubscribeResult{Subscriber: sub}, nil
	}

	// Unconfirmed: rotate the token and resend the confirmation.
	sub.ConfirmationToken = uuid.New()
	if err := s.subscribers.Save(ctx, sub); err != nil {
		s.logger.Error("Failed to refresh subscriber token", zap.Error(err))
		return nil, internal("Failed to subscribe")
	}
	s.notifications.SendNewsletterConfirmation(ctx, sub, s.confirmURL(sub.ConfirmationToken))
	return &SubscribeResult{Subscriber: sub}, nil
}

func (s *newsletterServiceImpl) Confirm(ctx context.Context, token uuid.UUID) (*models.NewsletterSubscriber, *ServiceError) {
	sub, err := s.subscribers.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Invalid or expired confirmation link")
		}
		s.logger.Error("Failed to look up confirmation token", zap.Error(err))
		return nil, internal("Failed to confirm subscription")
	}

	if sub.IsConfirmed {
		// Clicking the link twice is fine.
		return sub, nil
	}

	now := time.Now().UTC()
	sub.IsConfirmed = true
	sub.IsActive = true
	sub.ConfirmedAt = &now
	if err := s.subscribers.Save(ctx, sub); err != nil {
		s.logger.Error("Failed to confirm subscriber", zap.Error(err))
		return nil, internal("Failed to confirm subscription")
	}

	s.notifications.SendNewsletterWelcome(ctx, sub)
	s.logger.Info("Newsletter subscription confirmed", zap.String("email", sub.Email))
	return sub, nil
}

func (s *newsletterServiceImpl) Unsubscribe(ctx context.Context, token uuid.UUID) *ServiceError {
	sub, err := s.subscribers.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("Invalid unsubscribe link")
		}
		s.logger.Error("Failed to look up subscriber", zap.Error(err))
		return internal("Failed to unsubscribe")
	}

	if !sub.IsActive {
		return nil
	}

	sub.IsActive = false
	if err := s.subscribers.Save(ctx, sub); err != nil {
		s.logger.Error("Failed to unsubscribe", zap.Error(err))
		return internal("Failed to unsubscribe")
	}

	s.logger.Info("Newsletter unsubscribed", zap.String("email", sub.Email))
	return nil
}

func (s *newsletterServiceImpl) confirmURL(token uuid.UUID) string {
	return fmt.Sprintf("%s/newsletter/confirm/%s", s.siteBaseURL, token)
}
