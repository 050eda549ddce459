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

// CartUpdate reports the cart state after a mutation. Capped is set when
// the requested quantity exceeded the book's stock and was clamped; it is
// a warning, not an error.
type CartUpdate struct {
	Cart   *models.Cart
	Capped bool
}

// CartService manages the per-user shopping cart.
type CartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, *ServiceError)
	AddItem(ctx context.Context, userID, bookID uuid.UUID, quantity int) (*CartUpdate, *ServiceError)
	SetQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*CartUpdate, *ServiceError)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*models.Cart, *ServiceError)
	Clear(ctx context.Context, userID uuid.UUID) (*models.Cart, *ServiceError)
}

type cartServiceImpl struct {
	carts  repository.CartRepository
	books  repository.BookRepository
	logger *zap.Logger
}

// NewCartService creates the cart service.
func NewCartService(carts repository.CartRepository, books repository.BookRepository, logger *zap.Logger) CartService {
	return &cartServiceImpl{carts: carts, books: books, logger: logger}
}

func (s *cartServiceImpl) GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, *ServiceError) {
	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load cart", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, internal("Failed to load cart")
	}
	return cart, nil
}

func (s *cartServiceImpl) AddItem(ctx context.Context, userID, bookID uuid.UUID, quantity int) (*CartUpdate, *ServiceError) {
	if quantity < 1 {
		quantity = 1
	}

	book, err := s.books.FindByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Book not found")
		}
		s.logger.Error("Failed to load book", zap.String("book_id", bookID.String()), zap.Error(err))
		return nil, internal("Failed to load book")
	}
	if !book.IsInStock() {
		return nil, ErrOutOfStock
	}

	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load cart", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, internal("Failed to load cart")
	}

	requested := quantity
	item, err := s.carts.FindItem(ctx, cart.ID, bookID)
	switch {
	case err == nil:
		requested = item.Quantity + quantity
		item.Quantity = requested
	case errors.Is(err, gorm.ErrRecordNotFound):
		item = &models.CartItem{CartID: cart.ID, BookID: bookID, Quantity: quantity}
	default:
		s.logger.Error("Failed to load cart item", zap.Error(err))
		return nil, internal("Failed to update cart")
	}

	// Quantity is clamped to the stock ceiling on every save.
	capped := false
	if item.Quantity > book.StockQuantity {
		item.Quantity = book.StockQuantity
		capped = true
	}

	if err := s.carts.SaveItem(ctx, item); err != nil {
		s.logger.Error("Failed to save cart item", zap.Error(err))
		return nil, internal("Failed to update cart")
	}

	if capped {
		s.logger.Info("Cart quantity capped to stock",
			zap.String("book_id", bookID.String()),
			zap.Int("requested", requested),
			zap.Int("stock", book.StockQuantity),
		)
	}

	cart, err = s.carts.GetByUserID(ctx, userID)
	if err != nil {
		return nil, internal("Failed to load cart")
	}
	return &CartUpdate{Cart: cart, Capped: capped}, nil
}

func (s *cartServiceImpl) SetQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*CartUpdate, *ServiceError) {
	item, err := s.carts.FindItemForUser(ctx, itemID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Cart item not found")
		}
		s.logger.Error("Failed to load cart item", zap.Error(err))
		return nil, internal("Failed to update cart")
	}

	// A non-positive quantity deletes the line.
	if quantity <= 0 {
		if err := s.carts.DeleteItem(ctx, item.ID); err != nil {
			s.logger.Error("Failed to delete cart item", zap.Error(err))
			return nil, internal("Failed to update cart")
		}
		cart, err := s.carts.GetByUserID(ctx, userID)
		if err != nil {
			return nil, internal("Failed to load cart")
		}
		return &CartUpdate{Cart: cart}, nil
	}

	capped := false
	if quantity > item.Book.StockQuantity {
		quantity = item.Book.StockQuantity
		capped = true
	}
	item.Quantity = quantity

	if err := s.carts.SaveItem(ctx, item); err != nil {
		s.logger.Error("Failed to save cart item", zap.Error(err))
		return nil, internal("Failed to update cart")
	}

	cart, loadErr := s.carts.GetByUserID(ctx, userID)
	if loadErr != nil {
		return nil, internal("Failed to load cart")
	}
	return &CartUpdate{Cart: cart, Capped: capped}, nil
}

func (s *cartServiceImpl) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*models.Cart, *ServiceError) {
	item, err := s.carts.FindItemForUser(ctx, itemID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Cart item not found")
		}
		s.logger.Error("Failed to load cart item", zap.Error(err))
		return nil, internal("Failed to update cart")
	}

	if err := s.carts.DeleteItem(ctx, item.ID); err != nil {
		s.logger.Error("Failed to delete cart item", zap.Error(err))
		return nil, internal("Failed to update cart")
	}

	cart, loadErr := s.carts.GetByUserID(ctx, userID)
	if loadErr != nil {
		return nil, internal("Failed to load cart")
	}
	return cart, nil
}

func (s *cartServiceImpl) Clear(ctx context.Context, userID uuid.UUID) (*models.Cart, *ServiceError) {
	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, internal("Failed to load cart")
	}

	if err := s.carts.ClearByCartID(ctx, cart.ID); err != nil {
		s.logger.Error("Failed to clear cart", zap.String("cart_id", cart.ID.String()), zap.Error(err))
		return nil, internal("Failed to clear cart")
	}

	cart.Items = []models.CartItem{}
	return cart, nil
}
