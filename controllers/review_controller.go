package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Nickflanagn24/bookstore/middleware"
	"github.com/Nickflanagn24/bookstore/services"
)

type ReviewController struct {
	Reviews services.ReviewService
	Logger  *zap.Logger
}

func NewReviewController(reviews services.ReviewService, logger *zap.Logger) *ReviewController {
	return &ReviewController{Reviews: reviews, Logger: logger}
}

// ListForBook serves a book's reviews, newest first.
func (rc *ReviewController) ListForBook(c *gin.Context) {
	bookID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	page, perPage := pagination(c)

	reviews, total, svcErr := rc.Reviews.ListForBook(c.Request.Context(), bookID, page, perPage)
	if svcErr != nil {
		abortWithServiceError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, paginated(reviews, total, page, perPage))
}

// ListMine serves the authenticated user's reviews.
func (rc *ReviewController) ListMine(c *gin.Context) {
	page, perPage := pagination(c)

	reviews, total, svcErr := rc.Reviews.ListForUser(c.Request.Context(), middleware.GetUserID(c), page, perPage)
	if svcErr != nil {
		abortWithServiceError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, paginated(reviews, total, page, perPage))
}

// Create posts a review for a book. One review per user per book.
func (rc *ReviewController) Create(c *gin.Context) {
	bookID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var input services.ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, svcErr := rc.Reviews.Create(c.Request.Context(), bookID, middleware.GetUserID(c), input)
	if svcErr != nil {
		abortWithServiceError(c, svcErr)
		return
	}
	c.JSON(http.StatusCreated, review)
}

// Update edits the caller's own review.
func (rc *ReviewController) Update(c *gin.Context) {
	reviewID, ok := parseUUIDParam(c, "reviewId")
	if !ok {
		return
	}

	var input services.ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, svcErr := rc.Reviews.Update(c.Request.Context(), reviewID, middleware.GetUserID(c), input)
	if svcErr != nil {
		abortWithServiceError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, review)
}

// Delete removes a review. Owners can delete their own; staff can
// delete any.
func (rc *ReviewController) Delete(c *gin.Context) {
	reviewID, ok := parseUUIDParam(c, "reviewId")
	if !ok {
		return
	}

	isStaff := c.GetBool(middleware.StaffKey)
	if svcErr := rc.Reviews.Delete(c.Request.Context(), reviewID, middleware.GetUserID(c), isStaff); svcErr != nil {
		abortWithServiceError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
