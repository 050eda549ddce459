package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Nickflanagn24/bookstore/models"
	"github.com/Nickflanagn24/bookstore/repository"
	"github.com/Nickflanagn24/bookstore/sender"
)

// NotificationService sends transactional email and records every
// attempt. Order and newsletter emails are best-effort: a delivery
// failure is logged but never propagated, so a mail outage cannot fail
// a payment confirmation or a subscription.
type NotificationService interface {
	SendOrderConfirmation(ctx context.Context, order *models.Order)
	SendOrderShipped(ctx context.Context, order *models.Order)
	SendNewsletterConfirmation(ctx context.Context, sub *models.NewsletterSubscriber, confirmURL string)
	SendNewsletterWelcome(ctx context.Context, sub *models.NewsletterSubscriber)
	SendTest(ctx context.Context, to string) (*models.NotificationLog, *ServiceError)
	GetLogs(ctx context.Context, filter models.NotificationFilter) ([]models.NotificationLog, int64, *ServiceError)
}

type notificationServiceImpl struct {
	repo     repository.NotificationRepository
	sender   sender.EmailSender
	siteName string
	logger   *zap.Logger
}

// NewNotificationService creates the notification service.
func NewNotificationService(repo repository.NotificationRepository, emailSender sender.EmailSender, logger *zap.Logger) NotificationService {
	return &notificationServiceImpl{
		repo:     repo,
		sender:   emailSender,
		siteName: "Tales & Tails",
		logger:   logger,
	}
}

// dispatch sends one email and persists the outcome. The returned error
// reflects delivery only; a log write failure is logged and swallowed.
func (s *notificationServiceImpl) dispatch(ctx context.Context, userID *uuid.UUID, recipient, notifType, subject, body string) (*models.NotificationLog, error) {
	log := models.NotificationLog{
		UserID:    userID,
		Recipient: recipient,
		Type:      notifType,
		Channel:   models.ChannelEmail,
		Status:    models.NotificationStatusSent,
	}

	_, sendErr := s.sender.SendEmail(ctx, recipient, subject, body)
	if sendErr != nil {
		log.Status = models.NotificationStatusFailed
		log.Error = sendErr.Error()
		s.logger.Error("Email delivery failed",
			zap.String("type", notifType),
			zap.String("recipient", recipient),
			zap.Error(sendErr),
		)
	} else {
		s.logger.Info("Email sent",
			zap.String("type", notifType),
			zap.String("recipient", recipient),
		)
	}

	if err := s.repo.SaveLog(ctx, &log); err != nil {
		s.logger.Error("Failed to record notification", zap.String("type", notifType), zap.Error(err))
	}

	return &log, sendErr
}

func (s *notificationServiceImpl) SendOrderConfirmation(ctx context.Context, order *models.Order) {
	subject := fmt.Sprintf("%s | Order %s confirmed", s.siteName, order.OrderNumber)

	var items strings.Builder
	for _, item := range order.Items {
		items.WriteString(fmt.Sprintf("<li>%s × %d — %s</li>", item.BookTitle, item.Quantity, formatPence(item.TotalPrice())))
	}

	body := fmt.Sprintf(`<h2>Thank you for your order, %s!</h2>
<p>Your payment has been received and order <strong>%s</strong> is confirmed.</p>
<ul>%s</ul>
<p>Order total: <strong>%s</strong></p>
<p>We will email you again when your books are on their way.</p>`,
		order.CustomerFirstName, order.OrderNumber, items.String(), formatPence(order.TotalAmount))

	s.dispatch(ctx, &order.UserID, order.CustomerEmail, models.TypeOrderConfirmation, subject, body)
}

func (s *notificationServiceImpl) SendOrderShipped(ctx context.Context, order *models.Order) {
	subject := fmt.Sprintf("%s | Order %s has shipped", s.siteName, order.OrderNumber)
	body := fmt.Sprintf(`<h2>Good news, %s!</h2>
<p>Your order <strong>%s</strong> has been dispatched and is on its way to you.</p>`,
		order.CustomerFirstName, order.OrderNumber)

	s.dispatch(ctx, &order.UserID, order.CustomerEmail, models.TypeOrderShipped, subject, body)
}

func (s *notificationServiceImpl) SendNewsletterConfirmation(ctx context.Context, sub *models.NewsletterSubscriber, confirmURL string) {
	subject := fmt.Sprintf("%s | Please confirm your subscription", s.siteName)
	body := fmt.Sprintf(`<h2>One more step</h2>
<p>Please confirm your subscription to the %s newsletter by clicking the link below.</p>
<p><a href="%s">Confirm my subscription</a></p>
<p>If you did not request this, you can safely ignore this email.</p>`,
		s.siteName, confirmURL)

	s.dispatch(ctx, nil, sub.Email, models.TypeNewsletterConfirm, subject, body)
}

func (s *notificationServiceImpl) SendNewsletterWelcome(ctx context.Context, sub *models.NewsletterSubscriber) {
	subject := fmt.Sprintf("Welcome to the %s newsletter", s.siteName)
	body := fmt.Sprintf(`<h2>Welcome aboard!</h2>
<p>Your subscription is confirmed. Expect hand-picked dog books and news from %s.</p>`, s.siteName)

	s.dispatch(ctx, nil, sub.Email, models.TypeNewsletterWelcome, subject, body)
}

// SendTest delivers a staff-triggered test email. Unlike the
// transactional paths it reports the delivery error to the caller.
func (s *notificationServiceImpl) SendTest(ctx context.Context, to string) (*models.NotificationLog, *ServiceError) {
	subject := fmt.Sprintf("%s | Test email", s.siteName)
	body := fmt.Sprintf("<p>This is a test email sent at %s.</p>", time.Now().UTC().Format(time.RFC3339))

	log, err := s.dispatch(ctx, nil, to, models.TypeTestEmail, subject, body)
	if err != nil {
		return log, badRequest("Test email delivery failed: " + err.Error())
	}
	return log, nil
}

func (s *notificationServiceImpl) GetLogs(ctx context.Context, filter models.NotificationFilter) ([]models.NotificationLog, int64, *ServiceError) {
	logs, total, err := s.repo.GetLogs(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list notification logs", zap.Error(err))
		return nil, 0, internal("Failed to list notifications")
	}
	return logs, total, nil
}

// formatPence renders minor currency units as pounds for email bodies.
func formatPence(amount int64) string {
	return fmt.Sprintf("£%d.%02d", amount/100, amount%100)
}
