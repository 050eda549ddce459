package models

import (
	"time"

	"github.com/google/uuid"
)

// Order statuses. Transitions are monotonic along the fulfillment chain,
// with a cancellation exit from pending or confirmed.
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Payment statuses.
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

var orderTransitions = map[string][]string{
	OrderStatusPending:    {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped},
	OrderStatusShipped:    {OrderStatusDelivered},
}

// ValidOrderTransition reports whether from -> to is an allowed status change.
func ValidOrderTransition(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Order is an immutable-once-created snapshot of a purchase. Customer
// contact fields and item prices are copied at creation so later catalog
// or account edits never alter a historical order.
type Order struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderNumber string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"order_number"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	Status        string `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	PaymentStatus string `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`
	TotalAmount   int64  `gorm:"not null" json:"total_amount"`

	StripeSessionID       *string `gorm:"type:varchar(255);uniqueIndex" json:"stripe_session_id,omitempty"`
	StripePaymentIntentID *string `gorm:"type:varchar(255);index" json:"stripe_payment_intent_id,omitempty"`

	CustomerEmail     string `gorm:"type:varchar(254);not null" json:"customer_email"`
	CustomerFirstName string `gorm:"type:varchar(100)" json:"customer_first_name"`
	CustomerLastName  string `gorm:"type:varchar(100)" json:"customer_last_name"`

	CreatedAt   time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`

	Items   []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	History []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"history,omitempty"`
}

func (o *Order) CustomerFullName() string {
	return o.CustomerFirstName + " " + o.CustomerLastName
}

// TotalItems sums the quantities of all order items.
func (o *Order) TotalItems() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

// TotalPrice derives the order total from its items. TotalAmount and this
// sum agree by construction; the derived sum is the source of truth when
// checking that invariant.
func (o *Order) TotalPrice() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.TotalPrice()
	}
	return total
}

// OrderItem freezes a book's title, authors, ISBN and unit price at the
// moment of order creation.
type OrderItem struct {
	ID      uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_order_items_order_book" json:"order_id"`
	BookID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_order_items_order_book" json:"book_id"`

	BookTitle   string `gorm:"type:varchar(300);not null" json:"book_title"`
	BookAuthors string `gorm:"type:varchar(500)" json:"book_authors"`
	BookISBN    string `gorm:"type:varchar(20)" json:"book_isbn"`

	UnitPrice int64 `gorm:"not null" json:"unit_price"`
	Quantity  int   `gorm:"not null;default:1" json:"quantity"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TotalPrice is unit price times quantity in minor currency units.
func (i *OrderItem) TotalPrice() int64 {
	return i.UnitPrice * int64(i.Quantity)
}

// OrderStatusHistory is an append-only log of status changes. Rows are
// created exactly once per observed change and never mutated.
type OrderStatusHistory struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"order_id"`
	FromStatus string     `gorm:"type:varchar(20)" json:"from_status"`
	ToStatus   string     `gorm:"type:varchar(20);not null" json:"to_status"`
	Notes      string     `gorm:"type:text" json:"notes,omitempty"`
	ChangedBy  *uuid.UUID `gorm:"type:uuid" json:"changed_by,omitempty"`
	ChangedAt  time.Time  `gorm:"autoCreateTime" json:"changed_at"`
}
