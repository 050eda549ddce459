package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/Nickflanagn24/bookstore/services"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Dogs & Puppies":       "dogs-puppies",
		"Training":             "training",
		"  Working Dogs  ":     "working-dogs",
		"Health/Care (Basics)": "health-care-basics",
		"123 Tricks":           "123-tricks",
	}
	for in, want := range cases {
		assert.Equal(t, want, services.Slugify(in), "input %q", in)
	}
}

func TestCreateBook_AttachesAuthorsAndCategories(t *testing.T) {
	books := newMockBookRepo()
	svc := services.NewBookService(books, zap.NewNop())

	book, svcErr := svc.Create(context.Background(), services.BookInput{
		Title:         "The Genius of Dogs",
		Price:         1599,
		StockQuantity: 4,
		Authors:       []string{"Brian Hare", "Vanessa Woods"},
		Categories:    []string{"Dog Behaviour"},
	})

	assert.Nil(t, svcErr)
	assert.Len(t, book.Authors, 2)
	assert.Len(t, book.Categories, 1)
	assert.Equal(t, "dog-behaviour", book.Categories[0].Slug)
	assert.True(t, book.IsAvailable)
}

func TestRetireBook(t *testing.T) {
	books := newMockBookRepo()
	book := inStockBook(3)
	books.add(book)
	svc := services.NewBookService(books, zap.NewNop())

	svcErr := svc.Retire(context.Background(), book.ID)

	assert.Nil(t, svcErr)
	assert.False(t, book.IsAvailable)
}

func TestRetireBook_Unknown(t *testing.T) {
	svc := services.NewBookService(newMockBookRepo(), zap.NewNop())

	svcErr := svc.Retire(context.Background(), inStockBook(1).ID)

	assert.NotNil(t, svcErr)
	assert.Equal(t, 404, svcErr.StatusCode)
}
