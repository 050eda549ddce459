package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Nickflanagn24/bookstore/middleware"
	"github.com/Nickflanagn24/bookstore/services"
)

type CartController struct {
	Cart   services.CartService
	Logger *zap.Logger
}

func NewCartController(cart services.CartService, logger *zap.Logger) *CartController {
	return &CartController{Cart: cart, Logger: logger}
}

// Get returns the authenticated user's cart.
func (cc *CartController) Get(c *gin.Context) {
	cart, svcErr := cc.Cart.GetCart(c.Request.Context(), middleware.GetUserID(c))
	if svcErr != nil {
		abortWithServiceError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// AddItem adds a book to the cart, merging with any existing line.
func (cc *CartController) AddItem(c *gin.Context) {
	var req struct {
		BookID   uuid.UUID `json:"book_id" binding:"required"`
		Quantity int       `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	update, svcErr := cc.Cart.AddItem(c.Request.Context(), middleware.GetUserID(c), req.BookID, req.Quantity)
	if svcErr != nil {
		abortWithServiceError(c, svcErr)
		return
	}

	response := gin.H{"cart": update.Cart}
	if update.Capped {
		response["warning"] = "Quantity was reduced to the available stock"
	}
	c.JSON(http.StatusOK, response)
}

// UpdateItem sets a cart line's quantity. Zero or less removes the line.
func (cc *CartController) UpdateItem(c *gin.Context) {
	itemID, ok := parseUUIDParam(c, "itemId")
	if !ok {
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update, svcErr := cc.Cart.SetQuantity(c.Request.Context(), middleware.GetUserID(c), itemID, req.Quantity)
	if svcErr != nil {
		abortWithServiceError(c, svcErr)
		return
	}

	response := gin.H{"cart": update.Cart}
	if update.Capped {
		response["warning"] = "Quantity was reduced to the available stock"
	}
	c.JSON(http.StatusOK, response)
}

// RemoveItem deletes a cart line.
func (cc *CartController) RemoveItem(c *gin.Context) {
	itemID, ok := parseUUIDParam(c, "itemId")
	if !ok {
		return
	}

	cart, svcErr := cc.Cart.RemoveItem(c.Request.Context(), middleware.GetUserID(c), itemID)
	if svcErr != nil {
		abortWithServiceError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": cart})
}

// Clear empties the cart.
func (cc *CartController) Clear(c *gin.Context) {
	cart, svcErr := cc.Cart.Clear(c.Request.Context(), middleware.GetUserID(c))
	if svcErr != nil {
		abortWithServiceError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": cart})
}
