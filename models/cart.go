package models

import (
	"time"

	"github.com/google/uuid"
)

// Cart is a user's shopping cart. Exactly one per user, created lazily on
// the first add. Cart line prices are live: totals are recomputed from the
// current book price at read time, unlike order items which freeze them.
type Cart struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TotalItems sums the quantities of all lines. Requires Items preloaded.
func (c *Cart) TotalItems() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// TotalPrice sums book price times quantity over all lines, in minor
// currency units. Requires Items and their Books preloaded.
func (c *Cart) TotalPrice() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.Book.Price * int64(item.Quantity)
	}
	return total
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// CartItem is one (book, quantity) line. At most one line per (cart, book)
// pair; quantity never exceeds the book's stock at the time of save.
type CartItem struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CartID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_cart_book" json:"cart_id"`
	BookID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_cart_book" json:"book_id"`
	Book      Book      `gorm:"foreignKey:BookID" json:"book"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	AddedAt   time.Time `gorm:"autoCreateTime" json:"added_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TotalPrice is the live line total in minor currency units.
func (i *CartItem) TotalPrice() int64 {
	return i.Book.Price * int64(i.Quantity)
}
