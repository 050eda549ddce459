package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Nickflanagn24/bookstore/models"
)

// CartRepository defines data access for carts and their lines.
type CartRepository interface {
	// GetOrCreate returns the user's cart with items and books preloaded,
	// creating an empty cart on first use.
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	FindItem(ctx context.Context, cartID, bookID uuid.UUID) (*models.CartItem, error)
	// FindItemForUser resolves a cart line by id, scoped to its owner.
	FindItemForUser(ctx context.Context, itemID, userID uuid.UUID) (*models.CartItem, error)
	SaveItem(ctx context.Context, item *models.CartItem) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	ClearByCartID(ctx context.Context, cartID uuid.UUID) error
}

type gormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates the GORM-backed cart repository.
func NewGormCartRepository(db *gorm.DB) CartRepository {
	return &gormCartRepository{db: db}
}

func (r *gormCartRepository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := r.GetByUserID(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	created := models.Cart{UserID: userID}
	if err := r.db.WithContext(ctx).Create(&created).Error; err != nil {
		// A concurrent request may have created the cart first.
		return r.GetByUserID(ctx, userID)
	}
	created.Items = []models.CartItem{}
	return &created, nil
}

func (r *gormCartRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("cart_items.added_at DESC")
		}).
		Preload("Items.Book").
		First(&cart, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *gormCartRepository) FindItem(ctx context.Context, cartID, bookID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.WithContext(ctx).
		Preload("Book").
		First(&item, "cart_id = ? AND book_id = ?", cartID, bookID).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *gormCartRepository) FindItemForUser(ctx context.Context, itemID, userID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.WithContext(ctx).
		Preload("Book").
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("cart_items.id = ? AND carts.user_id = ?", itemID, userID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *gormCartRepository) SaveItem(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *gormCartRepository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.CartItem{}, "id = ?", itemID).Error
}

func (r *gormCartRepository) ClearByCartID(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.CartItem{}, "cart_id = ?", cartID).Error
}
