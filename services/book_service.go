package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Nickflanagn24/bookstore/models"
	"github.com/Nickflanagn24/bookstore/repository"
)

// BookInput carries the staff-editable catalog fields. Authors and
// Categories are names; missing ones are created on the fly.
type BookInput struct {
	Title         string   `json:"title" binding:"required,max=300"`
	Subtitle      string   `json:"subtitle" binding:"max=300"`
	Description   string   `json:"description"`
	ISBN10        string   `json:"isbn_10" binding:"max=10"`
	ISBN13        string   `json:"isbn_13" binding:"max=13"`
	Publisher     string   `json:"publisher" binding:"max=200"`
	PublishedDate string   `json:"published_date" binding:"max=20"`
	PageCount     int      `json:"page_count" binding:"min=0"`
	Language      string   `json:"language" binding:"max=10"`
	Thumbnail     string   `json:"thumbnail"`
	CoverImage    string   `json:"cover_image"`
	Price         int64    `json:"price" binding:"min=0"`
	StockQuantity int      `json:"stock_quantity" binding:"min=0"`
	IsAvailable   *bool    `json:"is_available"`
	IsFeatured    *bool    `json:"is_featured"`
	Authors       []string `json:"authors" binding:"required,min=1"`
	Categories    []string `json:"categories"`
}

// BookService exposes the public catalog and the staff management
// operations.
type BookService interface {
	List(ctx context.Context, params repository.BookListParams) ([]models.Book, int64, *ServiceError)
	Get(ctx context.Context, id uuid.UUID) (*models.Book, *ServiceError)
	Create(ctx context.Context, input BookInput) (*models.Book, *ServiceError)
	Update(ctx context.Context, id uuid.UUID, input BookInput) (*models.Book, *ServiceError)
	Retire(ctx context.Context, id uuid.UUID) *ServiceError
}

type bookServiceImpl struct {
	books  repository.BookRepository
	logger *zap.Logger
}

// NewBookService creates the catalog service.
func NewBookService(books repository.BookRepository, logger *zap.Logger) BookService {
	return &bookServiceImpl{books: books, logger: logger}
}

func (s *bookServiceImpl) List(ctx context.Context, params repository.BookListParams) ([]models.Book, int64, *ServiceError) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PerPage < 1 || params.PerPage > 100 {
		params.PerPage = 20
	}

	books, total, err := s.books.List(ctx, params)
	if err != nil {
		s.logger.Error("Failed to list books", zap.Error(err))
		return nil, 0, internal("Failed to list books")
	}
	return books, total, nil
}

func (s *bookServiceImpl) Get(ctx context.Context, id uuid.UUID) (*models.Book, *ServiceError) {
	book, err := s.books.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Book not found")
		}
		s.logger.Error("Failed to load book", zap.String("book_id", id.String()), zap.Error(err))
		return nil, internal("Failed to load book")
	}
	return book, nil
}

func (s *bookServiceImpl) Create(ctx context.Context, input BookInput) (*models.Book, *ServiceError) {
	book := &models.Book{Language: "en"}
	applyBookInput(book, input)

	if err := s.books.Create(ctx, book); err != nil {
		s.logger.Error("Failed to create book", zap.Error(err))
		return nil, internal("Failed to create book")
	}

	if svcErr := s.attachRelations(ctx, book, input); svcErr != nil {
		return nil, svcErr
	}

	s.logger.Info("Book created", zap.String("book_id", book.ID.String()), zap.String("title", book.Title))
	return s.Get(ctx, book.ID)
}

func (s *bookServiceImpl) Update(ctx context.Context, id uuid.UUID, input BookInput) (*models.Book, *ServiceError) {
	book, err := s.books.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Book not found")
		}
		s.logger.Error("Failed to load book", zap.String("book_id", id.String()), zap.Error(err))
		return nil, internal("Failed to update book")
	}

	applyBookInput(book, input)
	updates := map[string]interface{}{
		"title":          book.Title,
		"subtitle":       book.Subtitle,
		"description":    book.Description,
		"isbn10":         book.ISBN10,
		"isbn13":         book.ISBN13,
		"publisher":      book.Publisher,
		"published_date": book.PublishedDate,
		"page_count":     book.PageCount,
		"language":       book.Language,
		"thumbnail":      book.Thumbnail,
		"cover_image":    book.CoverImage,
		"price":          book.Price,
		"stock_quantity": book.StockQuantity,
		"is_available":   book.IsAvailable,
		"is_featured":    book.IsFeatured,
	}
	if _, err := s.books.Update(ctx, id, updates); err != nil {
		s.logger.Error("Failed to update book", zap.String("book_id", id.String()), zap.Error(err))
		return nil, internal("Failed to update book")
	}

	if svcErr := s.attachRelations(ctx, book, input); svcErr != nil {
		return nil, svcErr
	}

	s.logger.Info("Book updated", zap.String("book_id", id.String()))
	return s.Get(ctx, id)
}

// Retire takes a book off sale. Hard deletion is never offered because
// historical order items reference the row.
func (s *bookServiceImpl) Retire(ctx context.Context, id uuid.UUID) *ServiceError {
	if _, svcErr := s.Get(ctx, id); svcErr != nil {
		return svcErr
	}
	if err := s.books.SetUnavailable(ctx, id); err != nil {
		s.logger.Error("Failed to retire book", zap.String("book_id", id.String()), zap.Error(err))
		return internal("Failed to retire book")
	}
	s.logger.Info("Book retired", zap.String("book_id", id.String()))
	return nil
}

func (s *bookServiceImpl) attachRelations(ctx context.Context, book *models.Book, input BookInput) *ServiceError {
	authors := make([]models.Author, 0, len(input.Authors))
	for _, name := range input.Authors {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		author, err := s.books.FindOrCreateAuthor(ctx, name, nil)
		if err != nil {
			s.logger.Error("Failed to resolve author", zap.String("name", name), zap.Error(err))
			return internal("Failed to save book authors")
		}
		authors = append(authors, *author)
	}
	if err := s.books.ReplaceAuthors(ctx, book, authors); err != nil {
		s.logger.Error("Failed to attach authors", zap.Error(err))
		return internal("Failed to save book authors")
	}

	categories := make([]models.Category, 0, len(input.Categories))
	for _, name := range input.Categories {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		category, err := s.books.FindOrCreateCategory(ctx, name, Slugify(name))
		if err != nil {
			s.logger.Error("Failed to resolve category", zap.String("name", name), zap.Error(err))
			return internal("Failed to save book categories")
		}
		categories = append(categories, *category)
	}
	if err := s.books.ReplaceCategories(ctx, book, categories); err != nil {
		s.logger.Error("Failed to attach categories", zap.Error(err))
		return internal("Failed to save book categories")
	}

	return nil
}

func applyBookInput(book *models.Book, input BookInput) {
	book.Title = input.Title
	book.Subtitle = input.Subtitle
	book.Description = input.Description
	book.ISBN10 = input.ISBN10
	book.ISBN13 = input.ISBN13
	book.Publisher = input.Publisher
	book.PublishedDate = input.PublishedDate
	book.PageCount = input.PageCount
	if input.Language != "" {
		book.Language = input.Language
	}
	book.Thumbnail = input.Thumbnail
	book.CoverImage = input.CoverImage
	book.Price = input.Price
	book.StockQuantity = input.StockQuantity
	if input.IsAvailable != nil {
		book.IsAvailable = *input.IsAvailable
	} else {
		book.IsAvailable = true
	}
	if input.IsFeatured != nil {
		book.IsFeatured = *input.IsFeatured
	}
}

// Slugify lowercases a name and collapses non-alphanumerics to hyphens.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}
