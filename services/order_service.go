package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Nickflanagn24/bookstore/models"
	"github.com/Nickflanagn24/bookstore/repository"
)

const orderNumberAttempts = 5

// OrderService creates orders from carts and drives the fulfillment
// state machine.
type OrderService interface {
	CreateFromCart(ctx context.Context, user *models.User) (*models.Order, *ServiceError)
	GetUserOrders(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Order, int64, *ServiceError)
	GetOrderByNumber(ctx context.Context, orderNumber string, userID uuid.UUID) (*models.Order, *ServiceError)
	ListAll(ctx context.Context, page, limit int) ([]models.Order, int64, *ServiceError)
	TransitionStatus(ctx context.Context, orderID uuid.UUID, toStatus string, actorID uuid.UUID, note string) (*models.Order, *ServiceError)
}

type orderServiceImpl struct {
	orders        repository.OrderRepository
	carts         repository.CartRepository
	notifications NotificationService
	logger        *zap.Logger
}

// NewOrderService creates the order service.
func NewOrderService(orders repository.OrderRepository, carts repository.CartRepository, notifications NotificationService, logger *zap.Logger) OrderService {
	return &orderServiceImpl{orders: orders, carts: carts, notifications: notifications, logger: logger}
}

// CreateFromCart snapshots the user's cart into a pending order. The
// cart itself is left untouched; it is cleared only when payment is
// confirmed, so an abandoned checkout keeps the cart intact.
func (s *orderServiceImpl) CreateFromCart(ctx context.Context, user *models.User) (*models.Order, *ServiceError) {
	cart, err := s.carts.GetByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmptyCart
		}
		s.logger.Error("Failed to load cart", zap.String("user_id", user.ID.String()), zap.Error(err))
		return nil, internal("Failed to load cart")
	}
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	for _, item := range cart.Items {
		if !item.Book.IsInStock() {
			return nil, badRequest(fmt.Sprintf("%q is no longer in stock", item.Book.Title))
		}
	}

	orderNumber, numErr := s.uniqueOrderNumber(ctx)
	if numErr != nil {
		s.logger.Error("Failed to generate order number", zap.Error(numErr))
		return nil, internal("Failed to create order")
	}

	order := &models.Order{
		OrderNumber:       orderNumber,
		UserID:            user.ID,
		Status:            models.OrderStatusPending,
		PaymentStatus:     models.PaymentStatusPending,
		CustomerEmail:     user.Email,
		CustomerFirstName: user.FirstName,
		CustomerLastName:  user.LastName,
	}

	var total int64
	for _, item := range cart.Items {
		order.Items = append(order.Items, models.OrderItem{
			BookID:      item.BookID,
			BookTitle:   item.Book.Title,
			BookAuthors: item.Book.AuthorsList(),
			BookISBN:    item.Book.ISBN(),
			UnitPrice:   item.Book.Price,
			Quantity:    item.Quantity,
		})
		total += item.Book.Price * int64(item.Quantity)
	}
	order.TotalAmount = total

	if err := s.orders.Create(ctx, order); err != nil {
		s.logger.Error("Failed to create order", zap.String("user_id", user.ID.String()), zap.Error(err))
		return nil, internal("Failed to create order")
	}

	s.logger.Info("Order created",
		zap.String("order_number", order.OrderNumber),
		zap.String("user_id", user.ID.String()),
		zap.Int64("total_amount", order.TotalAmount),
	)
	return order, nil
}

func (s *orderServiceImpl) GetUserOrders(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Order, int64, *ServiceError) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	orders, total, err := s.orders.FindByUserID(ctx, userID, page, limit)
	if err != nil {
		s.logger.Error("Failed to list orders", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, 0, internal("Failed to list orders")
	}
	return orders, total, nil
}

func (s *orderServiceImpl) GetOrderByNumber(ctx context.Context, orderNumber string, userID uuid.UUID) (*models.Order, *ServiceError) {
	order, err := s.orders.FindByNumberAndUser(ctx, orderNumber, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Order not found")
		}
		s.logger.Error("Failed to load order", zap.String("order_number", orderNumber), zap.Error(err))
		return nil, internal("Failed to load order")
	}
	return order, nil
}

func (s *orderServiceImpl) ListAll(ctx context.Context, page, limit int) ([]models.Order, int64, *ServiceError) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	orders, total, err := s.orders.FindAll(ctx, page, limit)
	if err != nil {
		s.logger.Error("Failed to list orders", zap.Error(err))
		return nil, 0, internal("Failed to list orders")
	}
	return orders, total, nil
}

// TransitionStatus performs a staff-driven fulfillment move. The
// transition is validated against the state machine, applied with a
// guard on the current status, and a shipped transition notifies the
// customer.
func (s *orderServiceImpl) TransitionStatus(ctx context.Context, orderID uuid.UUID, toStatus string, actorID uuid.UUID, note string) (*models.Order, *ServiceError) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Order not found")
		}
		s.logger.Error("Failed to load order", zap.String("order_id", orderID.String()), zap.Error(err))
		return nil, internal("Failed to load order")
	}

	if !models.ValidOrderTransition(order.Status, toStatus) {
		return nil, badRequest(fmt.Sprintf("Cannot transition order from %s to %s", order.Status, toStatus))
	}

	moved, err := s.orders.TransitionStatus(ctx, orderID, order.Status, toStatus, &actorID, note)
	if err != nil {
		s.logger.Error("Failed to transition order", zap.String("order_id", orderID.String()), zap.Error(err))
		return nil, internal("Failed to update order")
	}
	if !moved {
		// The status changed under us between the read and the update.
		return nil, badRequest("Order status changed concurrently, please retry")
	}

	if toStatus == models.OrderStatusShipped {
		s.notifications.SendOrderShipped(ctx, order)
	}

	s.logger.Info("Order status changed",
		zap.String("order_number", order.OrderNumber),
		zap.String("from", order.Status),
		zap.String("to", toStatus),
		zap.String("actor", actorID.String()),
	)

	order.Status = toStatus
	return order, nil
}

// uniqueOrderNumber generates TT-YYYYMMDD-XXXXX order numbers, retrying
// on the unlikely collision.
func (s *orderServiceImpl) uniqueOrderNumber(ctx context.Context) (string, error) {
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		number, err := newOrderNumber()
		if err != nil {
			return "", err
		}
		exists, err := s.orders.OrderNumberExists(ctx, number)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique order number after %d attempts", orderNumberAttempts)
}

const orderNumberCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func newOrderNumber() (string, error) {
	buf := make([]byte, 5)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = orderNumberCharset[int(b)%len(orderNumberCharset)]
	}
	return fmt.Sprintf("TT-%s-%s", time.Now().UTC().Format("20060102"), string(buf)), nil
}
