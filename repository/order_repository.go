package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Nickflanagn24/bookstore/models"
)

// OrderRepository defines data access for orders, their items and the
// append-only status history. The payment transition methods return a
// boolean reporting whether this call actually performed the transition,
// so callers can keep side effects (cart clear already included, email
// dispatch) at-most-once under concurrent confirmation.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByNumberAndUser(ctx context.Context, orderNumber string, userID uuid.UUID) (*models.Order, error)
	FindBySessionID(ctx context.Context, sessionID string) (*models.Order, error)
	FindByPaymentIntentID(ctx context.Context, intentID string) (*models.Order, error)

	// FindPendingCheckout returns the user's pending order that already
	// has a gateway session attached, if one exists. Used to refuse a
	// second checkout while one is in flight.
	FindPendingCheckout(ctx context.Context, userID uuid.UUID) (*models.Order, error)

	FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Order, int64, error)
	FindAll(ctx context.Context, page, limit int) ([]models.Order, int64, error)
	OrderNumberExists(ctx context.Context, orderNumber string) (bool, error)

	// ClaimPaymentSession attaches a gateway session to a pending order
	// only if no session is attached yet. Returns false when another
	// session already claimed the order.
	ClaimPaymentSession(ctx context.Context, orderID uuid.UUID, sessionID string) (bool, error)

	// ConfirmPaid atomically transitions the order to confirmed/paid,
	// appends the history row and clears the owning user's cart. The
	// conditional update keyed on payment_status = pending guarantees
	// at-most-once effect when the redirect and webhook paths race, and
	// keeps a late success from reviving an order already cancelled for
	// a failed payment.
	ConfirmPaid(ctx context.Context, orderID uuid.UUID, paymentIntentID *string, actor *uuid.UUID) (bool, error)

	// MarkPaymentFailed transitions a not-yet-paid order to
	// cancelled/failed and appends history. The cart is deliberately left
	// intact so the user can retry checkout.
	MarkPaymentFailed(ctx context.Context, orderID uuid.UUID, reason string, paymentIntentID *string) (bool, error)

	// TransitionStatus performs a staff-driven fulfillment transition,
	// guarded on the expected current status, and appends history.
	TransitionStatus(ctx context.Context, orderID uuid.UUID, from, to string, actor *uuid.UUID, note string) (bool, error)
}

type gormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates the GORM-backed order repository.
func NewGormOrderRepository(db *gorm.DB) OrderRepository {
	return &gormOrderRepository{db: db}
}

func (r *gormOrderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *gormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *gormOrderRepository) FindByNumberAndUser(ctx context.Context, orderNumber string, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_status_histories.changed_at DESC")
		}).
		First(&order, "order_number = ? AND user_id = ?", orderNumber, userID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *gormOrderRepository) FindBySessionID(ctx context.Context, sessionID string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "stripe_session_id = ?", sessionID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *gormOrderRepository) FindByPaymentIntentID(ctx context.Context, intentID string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "stripe_payment_intent_id = ?", intentID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *gormOrderRepository) FindPendingCheckout(ctx context.Context, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		First(&order, "user_id = ? AND status = ? AND payment_status = ? AND stripe_session_id IS NOT NULL",
			userID, models.OrderStatusPending, models.PaymentStatusPending).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *gormOrderRepository) FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Order, int64, error) {
	var orders []models.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Preload("Items").
		Offset(offset).
		Limit(limit).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *gormOrderRepository) FindAll(ctx context.Context, page, limit int) ([]models.Order, int64, error) {
	var orders []models.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Order{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Preload("Items").
		Offset(offset).
		Limit(limit).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *gormOrderRepository) OrderNumberExists(ctx context.Context, orderNumber string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("order_number = ?", orderNumber).
		Count(&count).Error
	return count > 0, err
}

func (r *gormOrderRepository) ClaimPaymentSession(ctx context.Context, orderID uuid.UUID, sessionID string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND stripe_session_id IS NULL AND payment_status = ?", orderID, models.PaymentStatusPending).
		Update("stripe_session_id", sessionID)
	return res.RowsAffected > 0, res.Error
}

func (r *gormOrderRepository) ConfirmPaid(ctx context.Context, orderID uuid.UUID, paymentIntentID *string, actor *uuid.UUID) (bool, error) {
	confirmed := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, "id = ?", orderID).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		updates := map[string]interface{}{
			"status":         models.OrderStatusConfirmed,
			"payment_status": models.PaymentStatusPaid,
			"confirmed_at":   &now,
		}
		if paymentIntentID != nil {
			updates["stripe_payment_intent_id"] = *paymentIntentID
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND payment_status = ?", orderID, models.PaymentStatusPending).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Either already paid (the other confirmation path won the
			// race) or already cancelled for a failed payment. Cancelled
			// is terminal, so a late gateway success is ignored.
			return nil
		}
		confirmed = true

		history := models.OrderStatusHistory{
			OrderID:    orderID,
			FromStatus: order.Status,
			ToStatus:   models.OrderStatusConfirmed,
			Notes:      "Payment confirmed",
			ChangedBy:  actor,
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}

		// The originating cart is cleared only on the first successful
		// confirmation.
		var cart models.Cart
		err := tx.First(&cart, "user_id = ?", order.UserID).Error
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return tx.Delete(&models.CartItem{}, "cart_id = ?", cart.ID).Error
	})

	if err != nil {
		return false, err
	}
	return confirmed, nil
}

func (r *gormOrderRepository) MarkPaymentFailed(ctx context.Context, orderID uuid.UUID, reason string, paymentIntentID *string) (bool, error) {
	failed := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, "id = ?", orderID).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"status":         models.OrderStatusCancelled,
			"payment_status": models.PaymentStatusFailed,
		}
		if paymentIntentID != nil {
			updates["stripe_payment_intent_id"] = *paymentIntentID
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND payment_status = ?", orderID, models.PaymentStatusPending).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		failed = true

		history := models.OrderStatusHistory{
			OrderID:    orderID,
			FromStatus: order.Status,
			ToStatus:   models.OrderStatusCancelled,
			Notes:      reason,
		}
		return tx.Create(&history).Error
	})

	if err != nil {
		return false, err
	}
	return failed, nil
}

func (r *gormOrderRepository) TransitionStatus(ctx context.Context, orderID uuid.UUID, from, to string, actor *uuid.UUID, note string) (bool, error) {
	transitioned := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, from).
			Update("status", to)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		transitioned = true

		history := models.OrderStatusHistory{
			OrderID:    orderID,
			FromStatus: from,
			ToStatus:   to,
			Notes:      note,
			ChangedBy:  actor,
		}
		return tx.Create(&history).Error
	})

	if err != nil {
		return false, err
	}
	return transitioned, nil
}
