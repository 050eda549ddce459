package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Nickflanagn24/bookstore/models"
	"github.com/Nickflanagn24/bookstore/repository"
)

// CheckoutResult is returned when a checkout begins: the pending order
// and the hosted payment page to redirect the customer to.
type CheckoutResult struct {
	Order       *models.Order
	CheckoutURL string
}

// PaymentService drives the Stripe checkout lifecycle. Confirmation is
// idempotent: the browser redirect (ConfirmFromRedirect, which checks
// the session's payment status with the gateway) and the signed
// webhook (ConfirmBySessionID / ConfirmByPaymentIntentID) can race,
// and only the first caller triggers the confirmation side effects.
type PaymentService interface {
	StartCheckout(ctx context.Context, user *models.User) (*CheckoutResult, *ServiceError)
	ConfirmFromRedirect(ctx context.Context, sessionID string, actor *uuid.UUID) (*models.Order, *ServiceError)
	ConfirmBySessionID(ctx context.Context, sessionID string, paymentIntentID *string, actor *uuid.UUID) (*models.Order, *ServiceError)
	ConfirmByPaymentIntentID(ctx context.Context, intentID string) (*models.Order, *ServiceError)
	FailByPaymentIntentID(ctx context.Context, intentID, reason string) *ServiceError
}

type paymentServiceImpl struct {
	orders        repository.OrderRepository
	orderService  OrderService
	gateway       PaymentGateway
	notifications NotificationService
	siteBaseURL   string
	logger        *zap.Logger
}

// NewPaymentService creates the payment service. siteBaseURL is the
// public origin used to build the checkout redirect URLs.
func NewPaymentService(
	orders repository.OrderRepository,
	orderService OrderService,
	gateway PaymentGateway,
	notifications NotificationService,
	siteBaseURL string,
	logger *zap.Logger,
) PaymentService {
	return &paymentServiceImpl{
		orders:        orders,
		orderService:  orderService,
		gateway:       gateway,
		notifications: notifications,
		siteBaseURL:   siteBaseURL,
		logger:        logger,
	}
}

// StartCheckout snapshots the cart into a pending order, creates a
// Stripe Checkout Session for it and claims the session on the order.
// A user with a pending order that already holds a live session gets
// ErrAlreadyInProgress instead of a second payable order, and the
// claim itself is a conditional update, so two concurrent checkouts
// for the same order cannot both attach a session.
func (s *paymentServiceImpl) StartCheckout(ctx context.Context, user *models.User) (*CheckoutResult, *ServiceError) {
	existing, err := s.orders.FindPendingCheckout(ctx, user.ID)
	if err == nil {
		s.logger.Warn("Checkout already in progress",
			zap.String("order_number", existing.OrderNumber),
			zap.String("user_id", user.ID.String()),
		)
		return nil, ErrAlreadyInProgress
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("Failed to look up pending checkout", zap.Error(err))
		return nil, internal("Failed to start checkout")
	}

	order, svcErr := s.orderService.CreateFromCart(ctx, user)
	if svcErr != nil {
		return nil, svcErr
	}

	successURL := fmt.Sprintf("%s/checkout/success?session_id={CHECKOUT_SESSION_ID}", s.siteBaseURL)
	cancelURL := fmt.Sprintf("%s/checkout/cancelled?order=%s", s.siteBaseURL, order.OrderNumber)

	session, err := s.gateway.CreateCheckoutSession(order, successURL, cancelURL)
	if err != nil {
		s.logger.Error("Failed to create checkout session",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err),
		)
		return nil, internal("Failed to start checkout")
	}

	claimed, err := s.orders.ClaimPaymentSession(ctx, order.ID, session.ID)
	if err != nil {
		s.logger.Error("Failed to claim checkout session",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err),
		)
		return nil, internal("Failed to start checkout")
	}
	if !claimed {
		// Another session already owns this order; the orphaned session
		// is never completed and Stripe expires it unpaid.
		return nil, ErrAlreadyInProgress
	}

	s.logger.Info("Checkout started",
		zap.String("order_number", order.OrderNumber),
		zap.String("session_id", session.ID),
	)
	return &CheckoutResult{Order: order, CheckoutURL: session.URL}, nil
}

// ConfirmFromRedirect handles the browser return from Stripe. The
// session id in the query string only proves the customer saw the
// checkout page, so the session's payment status is retrieved from the
// gateway and the order is confirmed only when Stripe reports it paid.
// A gateway failure leaves the order pending; the webhook confirms it
// once the signed event arrives.
func (s *paymentServiceImpl) ConfirmFromRedirect(ctx context.Context, sessionID string, actor *uuid.UUID) (*models.Order, *ServiceError) {
	order, err := s.orders.FindBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("No order found for this checkout session")
		}
		s.logger.Error("Failed to load order by session", zap.String("session_id", sessionID), zap.Error(err))
		return nil, internal("Failed to confirm payment")
	}

	if order.PaymentStatus != models.PaymentStatusPending {
		// The webhook already settled this order one way or the other.
		return order, nil
	}

	session, gwErr := s.gateway.GetCheckoutSession(sessionID)
	if gwErr != nil {
		s.logger.Warn("Could not retrieve checkout session, leaving order pending",
			zap.String("session_id", sessionID),
			zap.Error(gwErr),
		)
		return order, nil
	}
	if !session.Paid() {
		s.logger.Info("Checkout session not paid yet",
			zap.String("order_number", order.OrderNumber),
			zap.String("payment_status", session.PaymentStatus),
		)
		return order, nil
	}

	var intentID *string
	if session.PaymentIntentID != "" {
		intentID = &session.PaymentIntentID
	}
	return s.confirm(ctx, order, intentID, actor)
}

// ConfirmBySessionID confirms payment for the order attached to a
// checkout session, used by the checkout.session.completed webhook
// where the signed event itself attests the payment. Safe to race with
// the redirect path; only the winning call sends the confirmation
// email.
func (s *paymentServiceImpl) ConfirmBySessionID(ctx context.Context, sessionID string, paymentIntentID *string, actor *uuid.UUID) (*models.Order, *ServiceError) {
	order, err := s.orders.FindBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("No order found for this checkout session")
		}
		s.logger.Error("Failed to load order by session", zap.String("session_id", sessionID), zap.Error(err))
		return nil, internal("Failed to confirm payment")
	}

	return s.confirm(ctx, order, paymentIntentID, actor)
}

// ConfirmByPaymentIntentID confirms via the payment intent, used by the
// payment_intent.succeeded webhook when the order already carries the
// intent id.
func (s *paymentServiceImpl) ConfirmByPaymentIntentID(ctx context.Context, intentID string) (*models.Order, *ServiceError) {
	order, err := s.orders.FindByPaymentIntentID(ctx, intentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// The intent may not be attached yet; checkout.session.completed
			// carries it and will confirm instead.
			return nil, notFound("No order found for this payment intent")
		}
		s.logger.Error("Failed to load order by payment intent", zap.String("intent_id", intentID), zap.Error(err))
		return nil, internal("Failed to confirm payment")
	}

	return s.confirm(ctx, order, &intentID, nil)
}

func (s *paymentServiceImpl) confirm(ctx context.Context, order *models.Order, paymentIntentID *string, actor *uuid.UUID) (*models.Order, *ServiceError) {
	confirmed, err := s.orders.ConfirmPaid(ctx, order.ID, paymentIntentID, actor)
	if err != nil {
		s.logger.Error("Failed to confirm payment",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err),
		)
		return nil, internal("Failed to confirm payment")
	}

	if confirmed {
		s.logger.Info("Payment confirmed", zap.String("order_number", order.OrderNumber))
		s.notifications.SendOrderConfirmation(ctx, order)
	} else {
		s.logger.Debug("Payment confirmation skipped, order already settled", zap.String("order_number", order.OrderNumber))
	}

	// Return the order in its post-confirmation shape.
	fresh, loadErr := s.orders.FindByID(ctx, order.ID)
	if loadErr != nil {
		return order, nil
	}
	return fresh, nil
}

// FailByPaymentIntentID cancels the order for a failed payment. The
// customer's cart is intentionally preserved for a retry.
func (s *paymentServiceImpl) FailByPaymentIntentID(ctx context.Context, intentID, reason string) *ServiceError {
	order, err := s.orders.FindByPaymentIntentID(ctx, intentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("Payment failure for unknown intent", zap.String("intent_id", intentID))
			return nil
		}
		s.logger.Error("Failed to load order by payment intent", zap.String("intent_id", intentID), zap.Error(err))
		return internal("Failed to record payment failure")
	}

	if reason == "" {
		reason = "Payment failed"
	}

	failed, err := s.orders.MarkPaymentFailed(ctx, order.ID, reason, &intentID)
	if err != nil {
		s.logger.Error("Failed to mark payment failed",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err),
		)
		return internal("Failed to record payment failure")
	}

	if failed {
		s.logger.Info("Payment failed",
			zap.String("order_number", order.OrderNumber),
			zap.String("reason", reason),
		)
	}
	return nil
}
