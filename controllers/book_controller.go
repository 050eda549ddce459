package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Nickflanagn24/bookstore/cache"
	"github.com/Nickflanagn24/bookstore/repository"
	"github.com/Nickflanagn24/bookstore/services"
)

type BookController struct {
	Books  services.BookService
	Cache  *cache.BookCache
	Logger *zap.Logger
}

func NewBookController(books services.BookService, bookCache *cache.BookCache, logger *zap.Logger) *BookController {
	return &BookController{Books: books, Cache: bookCache, Logger: logger}
}

// List serves the public catalog with search, category and author
// filters. Responses are served from the versioned Redis cache when
// possible.
func (bc *BookController) List(c *gin.Context) {
	page, perPage := pagination(c)

	params := repository.BookListParams{
		Page:         page,
		PerPage:      perPage,
		Search:       c.Query("q"),
		CategorySlug: c.Query("category"),
	}
	params.FeaturedOnly, _ = strconv.ParseBool(c.DefaultQuery("featured", "false"))
	if raw := c.Query("author"); raw != "" {
		authorID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid author"})
			return
		}
		params.AuthorID = &authorID
	}

	if bc.Cache != nil {
		if cached, hit := bc.Cache.GetList(c.Request.Context(), params); hit {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	books, total, svcErr := bc.Books.List(c.Request.Context(), params)
	if svcErr != nil {
		abortWithServiceError(c, svcErr)
		return
	}

	response := paginated(books, total, page, perPage)
	if bc.Cache != nil {
		bc.Cache.SetListAsync(params, response)
	}
	c.JSON(http.StatusOK, response)
}

// Get serves a single catalog entry.
func (bc *BookController) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	book, svcErr := bc.Books.Get(c.Request.Context(), id)
	if svcErr != nil {
		abortWithServiceError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, book)
}

// Create adds a catalog entry. Staff only.
func (bc *BookController) Create(c *gin.Context) {
	var input services.BookInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	book, svcErr := bc.Books.Create(c.Request.Context(), input)
	if svcErr != nil {
		abortWithServiceError(c, svcErr)
		return
	}

	bc.invalidate(c, book.ID.String())
	c.JSON(http.StatusCreated, book)
}

// Update replaces a catalog entry's editable fields. Staff only.
func (bc *BookController) Update(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var input services.BookInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	book, svcErr := bc.Books.Update(c.Request.Context(), id, input)
	if svcErr != nil {
		abortWithServiceError(c, svcErr)
		return
	}

	bc.invalidate(c, id.String())
	c.JSON(http.StatusOK, book)
}

// Retire takes a book off sale. Staff only.
func (bc *BookController) Retire(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if svcErr := bc.Books.Retire(c.Request.Context(), id); svcErr != nil {
		abortWithServiceError(c, svcErr)
		return
	}

	bc.invalidate(c, id.String())
	c.JSON(http.StatusOK, gin.H{"status": "retired"})
}

func (bc *BookController) invalidate(c *gin.Context, bookID string) {
	if bc.Cache != nil {
		bc.Cache.Invalidate(c.Request.Context(), bookID)
	}
}
