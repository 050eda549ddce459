package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Nickflanagn24/bookstore/models"
)

// BookListParams narrows and pages catalog listings.
type BookListParams struct {
	Page               int
	PerPage            int
	Search             string
	CategorySlug       string
	AuthorID           *uuid.UUID
	FeaturedOnly       bool
	IncludeUnavailable bool
}

// BookRepository defines data access for the catalog.
type BookRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Book, error)
	FindByGoogleBooksID(ctx context.Context, googleID string) (*models.Book, error)
	List(ctx context.Context, params BookListParams) ([]models.Book, int64, error)
	Create(ctx context.Context, book *models.Book) error
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (int64, error)
	SetUnavailable(ctx context.Context, id uuid.UUID) error
	UpdateRating(ctx context.Context, id uuid.UUID, average float64, count int) error
	FindOrCreateAuthor(ctx context.Context, name string, googleID *string) (*models.Author, error)
	FindOrCreateCategory(ctx context.Context, name, slug string) (*models.Category, error)
	ReplaceAuthors(ctx context.Context, book *models.Book, authors []models.Author) error
	ReplaceCategories(ctx context.Context, book *models.Book, categories []models.Category) error
}

type gormBookRepository struct {
	db *gorm.DB
}

// NewGormBookRepository creates the GORM-backed catalog repository.
func NewGormBookRepository(db *gorm.DB) BookRepository {
	return &gormBookRepository{db: db}
}

func (r *gormBookRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	var book models.Book
	if err := r.db.WithContext(ctx).
		Preload("Authors").
		Preload("Categories").
		First(&book, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *gormBookRepository) FindByGoogleBooksID(ctx context.Context, googleID string) (*models.Book, error) {
	var book models.Book
	if err := r.db.WithContext(ctx).
		Preload("Authors").
		Preload("Categories").
		First(&book, "google_books_id = ?", googleID).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *gormBookRepository) List(ctx context.Context, params BookListParams) ([]models.Book, int64, error) {
	var books []models.Book
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Book{})

	if !params.IncludeUnavailable {
		query = query.Where("is_available = ?", true)
	}
	if params.FeaturedOnly {
		query = query.Where("is_featured = ?", true)
	}
	if params.Search != "" {
		like := "%" + params.Search + "%"
		query = query.Where("title ILIKE ? OR subtitle ILIKE ?", like, like)
	}
	if params.CategorySlug != "" {
		query = query.
			Joins("JOIN book_categories bc ON bc.book_id = books.id").
			Joins("JOIN categories c ON c.id = bc.category_id").
			Where("c.slug = ?", params.CategorySlug)
	}
	if params.AuthorID != nil {
		query = query.
			Joins("JOIN book_authors ba ON ba.book_id = books.id").
			Where("ba.author_id = ?", *params.AuthorID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (params.Page - 1) * params.PerPage
	if err := query.
		Preload("Authors").
		Offset(offset).
		Limit(params.PerPage).
		Order("created_at DESC").
		Find(&books).Error; err != nil {
		return nil, 0, err
	}

	return books, total, nil
}

func (r *gormBookRepository) Create(ctx context.Context, book *models.Book) error {
	return r.db.WithContext(ctx).Create(book).Error
}

func (r *gormBookRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Book{}).Where("id = ?", id).Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *gormBookRepository) SetUnavailable(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.Book{}).
		Where("id = ?", id).
		Update("is_available", false).Error
}

func (r *gormBookRepository) UpdateRating(ctx context.Context, id uuid.UUID, average float64, count int) error {
	return r.db.WithContext(ctx).Model(&models.Book{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"average_rating": average,
			"ratings_count":  count,
		}).Error
}

func (r *gormBookRepository) FindOrCreateAuthor(ctx context.Context, name string, googleID *string) (*models.Author, error) {
	var author models.Author
	query := r.db.WithContext(ctx)
	if googleID != nil {
		query = query.Where("google_books_id = ? OR name = ?", *googleID, name)
	} else {
		query = query.Where("name = ?", name)
	}
	err := query.First(&author).Error
	if err == nil {
		return &author, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	author = models.Author{Name: name, GoogleBooksID: googleID}
	if err := r.db.WithContext(ctx).Create(&author).Error; err != nil {
		return nil, err
	}
	return &author, nil
}

func (r *gormBookRepository) FindOrCreateCategory(ctx context.Context, name, slug string) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error
	if err == nil {
		return &category, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	category = models.Category{Name: name, Slug: slug}
	if err := r.db.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *gormBookRepository) ReplaceAuthors(ctx context.Context, book *models.Book, authors []models.Author) error {
	return r.db.WithContext(ctx).Model(book).Association("Authors").Replace(authors)
}

func (r *gormBookRepository) ReplaceCategories(ctx context.Context, book *models.Book, categories []models.Category) error {
	return r.db.WithContext(ctx).Model(book).Association("Categories").Replace(categories)
}
