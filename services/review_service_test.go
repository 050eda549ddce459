package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Nickflanagn24/bookstore/models"
	"github.com/Nickflanagn24/bookstore/services"
)

// ---- mock review repository ----

type mockReviewRepo struct {
	reviews map[uuid.UUID]*models.Review
}

func newMockReviewRepo() *mockReviewRepo {
	return &mockReviewRepo{reviews: map[uuid.UUID]*models.Review{}}
}

func (m *mockReviewRepo) Create(_ context.Context, review *models.Review) error {
	for _, existing := range m.reviews {
		if existing.BookID == review.BookID && existing.UserID == review.UserID {
			return gorm.ErrDuplicatedKey
		}
	}
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	m.reviews[review.ID] = review
	return nil
}

func (m *mockReviewRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Review, error) {
	if review, ok := m.reviews[id]; ok {
		return review, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockReviewRepo) FindByBookAndUser(_ context.Context, bookID, userID uuid.UUID) (*models.Review, error) {
	for _, review := range m.reviews {
		if review.BookID == bookID && review.UserID == userID {
			return review, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockReviewRepo) Save(_ context.Context, review *models.Review) error {
	m.reviews[review.ID] = review
	return nil
}

func (m *mockReviewRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.reviews, id)
	return nil
}

func (m *mockReviewRepo) ListByBook(_ context.Context, bookID uuid.UUID, _, _ int) ([]models.Review, int64, error) {
	var out []models.Review
	for _, review := range m.reviews {
		if review.BookID == bookID {
			out = append(out, *review)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockReviewRepo) ListByUser(_ context.Context, userID uuid.UUID, _, _ int) ([]models.Review, int64, error) {
	var out []models.Review
	for _, review := range m.reviews {
		if review.UserID == userID {
			out = append(out, *review)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockReviewRepo) AggregateForBook(_ context.Context, bookID uuid.UUID) (float64, int64, error) {
	var sum, count int64
	for _, review := range m.reviews {
		if review.BookID == bookID {
			sum += int64(review.Rating)
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}

// ---- tests ----

func newReviewService(reviews *mockReviewRepo, books *mockBookRepo) services.ReviewService {
	return services.NewReviewService(reviews, books, zap.NewNop())
}

func TestCreateReview_UpdatesAggregate(t *testing.T) {
	reviews := newMockReviewRepo()
	books := newMockBookRepo()
	book := inStockBook(5)
	books.add(book)
	svc := newReviewService(reviews, books)

	review, svcErr := svc.Create(context.Background(), book.ID, uuid.New(), services.ReviewInput{
		Rating: 4, Title: "Lovely read",
	})

	assert.Nil(t, svcErr)
	assert.Equal(t, 4, review.Rating)
	assert.Equal(t, 4.0, book.AverageRating)
	assert.Equal(t, 1, book.RatingsCount)
}

func TestCreateReview_AverageRoundedToTwoPlaces(t *testing.T) {
	reviews := newMockReviewRepo()
	books := newMockBookRepo()
	book := inStockBook(5)
	books.add(book)
	svc := newReviewService(reviews, books)

	_, _ = svc.Create(context.Background(), book.ID, uuid.New(), services.ReviewInput{Rating: 5, Title: "A"})
	_, _ = svc.Create(context.Background(), book.ID, uuid.New(), services.ReviewInput{Rating: 5, Title: "B"})
	_, svcErr := svc.Create(context.Background(), book.ID, uuid.New(), services.ReviewInput{Rating: 3, Title: "C"})

	assert.Nil(t, svcErr)
	// 13/3 = 4.333... stored as 4.33
	assert.Equal(t, 4.33, book.AverageRating)
	assert.Equal(t, 3, book.RatingsCount)
}

func TestCreateReview_DuplicateRejected(t *testing.T) {
	reviews := newMockReviewRepo()
	books := newMockBookRepo()
	book := inStockBook(5)
	books.add(book)
	svc := newReviewService(reviews, books)

	userID := uuid.New()
	_, first := svc.Create(context.Background(), book.ID, userID, services.ReviewInput{Rating: 5, Title: "First"})
	_, second := svc.Create(context.Background(), book.ID, userID, services.ReviewInput{Rating: 1, Title: "Second"})

	assert.Nil(t, first)
	assert.Equal(t, services.ErrDuplicateReview, second)
	assert.Equal(t, 1, book.RatingsCount)
}

func TestCreateReview_UnknownBook(t *testing.T) {
	svc := newReviewService(newMockReviewRepo(), newMockBookRepo())

	_, svcErr := svc.Create(context.Background(), uuid.New(), uuid.New(), services.ReviewInput{Rating: 3, Title: "X"})

	assert.NotNil(t, svcErr)
	assert.Equal(t, 404, svcErr.StatusCode)
}

func TestUpdateReview_RecomputesAggregate(t *testing.T) {
	reviews := newMockReviewRepo()
	books := newMockBookRepo()
	book := inStockBook(5)
	books.add(book)
	svc := newReviewService(reviews, books)

	userID := uuid.New()
	review, _ := svc.Create(context.Background(), book.ID, userID, services.ReviewInput{Rating: 2, Title: "Meh"})

	updated, svcErr := svc.Update(context.Background(), review.ID, userID, services.ReviewInput{Rating: 5, Title: "Grew on me"})

	assert.Nil(t, svcErr)
	assert.Equal(t, 5, updated.Rating)
	assert.Equal(t, 5.0, book.AverageRating)
}

func TestUpdateReview_NotOwner(t *testing.T) {
	reviews := newMockReviewRepo()
	books := newMockBookRepo()
	book := inStockBook(5)
	books.add(book)
	svc := newReviewService(reviews, books)

	review, _ := svc.Create(context.Background(), book.ID, uuid.New(), services.ReviewInput{Rating: 4, Title: "Mine"})

	_, svcErr := svc.Update(context.Background(), review.ID, uuid.New(), services.ReviewInput{Rating: 1, Title: "Not mine"})

	assert.NotNil(t, svcErr)
	assert.Equal(t, 403, svcErr.StatusCode)
	assert.Equal(t, 4, review.Rating)
}

func TestDeleteReview_OwnerResetsAggregate(t *testing.T) {
	reviews := newMockReviewRepo()
	books := newMockBookRepo()
	book := inStockBook(5)
	books.add(book)
	svc := newReviewService(reviews, books)

	userID := uuid.New()
	review, _ := svc.Create(context.Background(), book.ID, userID, services.ReviewInput{Rating: 5, Title: "Gone soon"})

	svcErr := svc.Delete(context.Background(), review.ID, userID, false)

	assert.Nil(t, svcErr)
	assert.Equal(t, 0.0, book.AverageRating)
	assert.Equal(t, 0, book.RatingsCount)
}

func TestDeleteReview_StaffCanDeleteAny(t *testing.T) {
	reviews := newMockReviewRepo()
	books := newMockBookRepo()
	book := inStockBook(5)
	books.add(book)
	svc := newReviewService(reviews, books)

	review, _ := svc.Create(context.Background(), book.ID, uuid.New(), services.ReviewInput{Rating: 1, Title: "Spam"})

	svcErr := svc.Delete(context.Background(), review.ID, uuid.New(), true)

	assert.Nil(t, svcErr)
	assert.Empty(t, reviews.reviews)
}

func TestDeleteReview_NonOwnerForbidden(t *testing.T) {
	reviews := newMockReviewRepo()
	books := newMockBookRepo()
	book := inStockBook(5)
	books.add(book)
	svc := newReviewService(reviews, books)

	review, _ := svc.Create(context.Background(), book.ID, uuid.New(), services.ReviewInput{Rating: 3, Title: "Keep"})

	svcErr := svc.Delete(context.Background(), review.ID, uuid.New(), false)

	assert.NotNil(t, svcErr)
	assert.Equal(t, 403, svcErr.StatusCode)
}
