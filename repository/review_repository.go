package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Nickflanagn24/bookstore/models"
)

// ReviewRepository defines data access for book reviews.
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Review, error)
	FindByBookAndUser(ctx context.Context, bookID, userID uuid.UUID) (*models.Review, error)
	Save(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByBook(ctx context.Context, bookID uuid.UUID, page, limit int) ([]models.Review, int64, error)
	ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Review, int64, error)
	// AggregateForBook computes the arithmetic mean and count over all
	// ratings of a book. Zero reviews yields (0, 0).
	AggregateForBook(ctx context.Context, bookID uuid.UUID) (float64, int64, error)
}

type gormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates the GORM-backed review repository.
func NewGormReviewRepository(db *gorm.DB) ReviewRepository {
	return &gormReviewRepository{db: db}
}

func (r *gormReviewRepository) Create(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *gormReviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).First(&review, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *gormReviewRepository) FindByBookAndUser(ctx context.Context, bookID, userID uuid.UUID) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).
		First(&review, "book_id = ? AND user_id = ?", bookID, userID).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *gormReviewRepository) Save(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Save(review).Error
}

func (r *gormReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Review{}, "id = ?", id).Error
}

func (r *gormReviewRepository) ListByBook(ctx context.Context, bookID uuid.UUID, page, limit int) ([]models.Review, int64, error) {
	return r.list(ctx, "book_id = ?", bookID, page, limit)
}

func (r *gormReviewRepository) ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Review, int64, error) {
	return r.list(ctx, "user_id = ?", userID, page, limit)
}

func (r *gormReviewRepository) list(ctx context.Context, cond string, arg uuid.UUID, page, limit int) ([]models.Review, int64, error) {
	var reviews []models.Review
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Review{}).Where(cond, arg)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Offset(offset).
		Limit(limit).
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		return nil, 0, err
	}

	return reviews, total, nil
}

func (r *gormReviewRepository) AggregateForBook(ctx context.Context, bookID uuid.UUID) (float64, int64, error) {
	var result struct {
		Average float64
		Count   int64
	}
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("book_id = ?", bookID).
		Scan(&result).Error
	return result.Average, result.Count, err
}
