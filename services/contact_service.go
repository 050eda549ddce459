package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Nickflanagn24/bookstore/models"
	"github.com/Nickflanagn24/bookstore/repository"
)

// ContactInput is a contact-form submission.
type ContactInput struct {
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"required,max=100"`
	Email     string `json:"email" binding:"required,email"`
	Subject   string `json:"subject" binding:"required,max=200"`
	Message   string `json:"message" binding:"required"`
}

// ContactService stores contact messages for staff follow-up.
type ContactService interface {
	Submit(ctx context.Context, input ContactInput) (*models.ContactMessage, *ServiceError)
	List(ctx context.Context, page, limit int) ([]models.ContactMessage, int64, *ServiceError)
	MarkRead(ctx context.Context, id uuid.UUID) *ServiceError
}

type contactServiceImpl struct {
	messages repository.ContactRepository
	logger   *zap.Logger
}

// NewContactService creates the contact service.
func NewContactService(messages repository.ContactRepository, logger *zap.Logger) ContactService {
	return &contactServiceImpl{messages: messages, logger: logger}
}

func (s *contactServiceImpl) Submit(ctx context.Context, input ContactInput) (*models.ContactMessage, *ServiceError) {
	msg := &models.ContactMessage{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Subject:   input.Subject,
		Message:   input.Message,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		s.logger.Error("Failed to store contact message", zap.Error(err))
		return nil, internal("Failed to submit message")
	}

	s.logger.Info("Contact message received", zap.String("subject", msg.Subject))
	return msg, nil
}

func (s *contactServiceImpl) List(ctx context.Context, page, limit int) ([]models.ContactMessage, int64, *ServiceError) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	messages, total, err := s.messages.List(ctx, page, limit)
	if err != nil {
		s.logger.Error("Failed to list contact messages", zap.Error(err))
		return nil, 0, internal("Failed to list messages")
	}
	return messages, total, nil
}

func (s *contactServiceImpl) MarkRead(ctx context.Context, id uuid.UUID) *ServiceError {
	if err := s.messages.MarkRead(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("Message not found")
		}
		s.logger.Error("Failed to mark message read", zap.String("message_id", id.String()), zap.Error(err))
		return internal("Failed to update message")
	}
	return nil
}
