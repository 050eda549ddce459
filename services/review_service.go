package services

import (
	"context"
	"errors"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Nickflanagn24/bookstore/models"
	"github.com/Nickflanagn24/bookstore/repository"
)

// ReviewInput carries the user-editable review fields.
type ReviewInput struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Title   string `json:"title" binding:"required,max=200"`
	Comment string `json:"comment"`
}

// ReviewService manages book reviews and keeps the denormalized rating
// aggregates on the book in sync.
type ReviewService interface {
	ListForBook(ctx context.Context, bookID uuid.UUID, page, limit int) ([]models.Review, int64, *ServiceError)
	ListForUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Review, int64, *ServiceError)
	Create(ctx context.Context, bookID, userID uuid.UUID, input ReviewInput) (*models.Review, *ServiceError)
	Update(ctx context.Context, reviewID, userID uuid.UUID, input ReviewInput) (*models.Review, *ServiceError)
	Delete(ctx context.Context, reviewID, userID uuid.UUID, isStaff bool) *ServiceError
}

type reviewServiceImpl struct {
	reviews repository.ReviewRepository
	books   repository.BookRepository
	logger  *zap.Logger
}

// NewReviewService creates the review service.
func NewReviewService(reviews repository.ReviewRepository, books repository.BookRepository, logger *zap.Logger) ReviewService {
	return &reviewServiceImpl{reviews: reviews, books: books, logger: logger}
}

func (s *reviewServiceImpl) ListForBook(ctx context.Context, bookID uuid.UUID, page, limit int) ([]models.Review, int64, *ServiceError) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	reviews, total, err := s.reviews.ListByBook(ctx, bookID, page, limit)
	if err != nil {
		s.logger.Error("Failed to list reviews", zap.String("book_id", bookID.String()), zap.Error(err))
		return nil, 0, internal("Failed to list reviews")
	}
	return reviews, total, nil
}

func (s *reviewServiceImpl) ListForUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Review, int64, *ServiceError) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	reviews, total, err := s.reviews.ListByUser(ctx, userID, page, limit)
	if err != nil {
		s.logger.Error("Failed to list reviews", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, 0, internal("Failed to list reviews")
	}
	return reviews, total, nil
}

func (s *reviewServiceImpl) Create(ctx context.Context, bookID, userID uuid.UUID, input ReviewInput) (*models.Review, *ServiceError) {
	if _, err := s.books.FindByID(ctx, bookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Book not found")
		}
		s.logger.Error("Failed to load book", zap.String("book_id", bookID.String()), zap.Error(err))
		return nil, internal("Failed to create review")
	}

	if _, err := s.reviews.FindByBookAndUser(ctx, bookID, userID); err == nil {
		return nil, ErrDuplicateReview
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("Failed to check existing review", zap.Error(err))
		return nil, internal("Failed to create review")
	}

	review := &models.Review{
		BookID:  bookID,
		UserID:  userID,
		Rating:  input.Rating,
		Title:   input.Title,
		Comment: input.Comment,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		// The unique index catches a racing duplicate submission.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateReview
		}
		s.logger.Error("Failed to create review", zap.Error(err))
		return nil, internal("Failed to create review")
	}

	s.recomputeRating(ctx, bookID)
	return review, nil
}

func (s *reviewServiceImpl) Update(ctx context.Context, reviewID, userID uuid.UUID, input ReviewInput) (*models.Review, *ServiceError) {
	review, err := s.reviews.FindByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Review not found")
		}
		s.logger.Error("Failed to load review", zap.String("review_id", reviewID.String()), zap.Error(err))
		return nil, internal("Failed to update review")
	}
	if review.UserID != userID {
		return nil, forbidden("You can only edit your own reviews")
	}

	review.Rating = input.Rating
	review.Title = input.Title
	review.Comment = input.Comment
	if err := s.reviews.Save(ctx, review); err != nil {
		s.logger.Error("Failed to save review", zap.Error(err))
		return nil, internal("Failed to update review")
	}

	s.recomputeRating(ctx, review.BookID)
	return review, nil
}

func (s *reviewServiceImpl) Delete(ctx context.Context, reviewID, userID uuid.UUID, isStaff bool) *ServiceError {
	review, err := s.reviews.FindByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("Review not found")
		}
		s.logger.Error("Failed to load review", zap.String("review_id", reviewID.String()), zap.Error(err))
		return internal("Failed to delete review")
	}
	if review.UserID != userID && !isStaff {
		return forbidden("You can only delete your own reviews")
	}

	if err := s.reviews.Delete(ctx, reviewID); err != nil {
		s.logger.Error("Failed to delete review", zap.Error(err))
		return internal("Failed to delete review")
	}

	s.recomputeRating(ctx, review.BookID)
	return nil
}

// recomputeRating refreshes the book's denormalized average and count
// from the live review rows. The book record converges to the correct
// aggregate because every mutation triggers a full recompute.
func (s *reviewServiceImpl) recomputeRating(ctx context.Context, bookID uuid.UUID) {
	average, count, err := s.reviews.AggregateForBook(ctx, bookID)
	if err != nil {
		s.logger.Error("Failed to aggregate ratings", zap.String("book_id", bookID.String()), zap.Error(err))
		return
	}

	rounded := math.Round(average*100) / 100
	if err := s.books.UpdateRating(ctx, bookID, rounded, int(count)); err != nil {
		s.logger.Error("Failed to update book rating", zap.String("book_id", bookID.String()), zap.Error(err))
	}
}
