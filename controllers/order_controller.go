package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Nickflanagn24/bookstore/middleware"
	"github.com/Nickflanagn24/bookstore/services"
)

type OrderController struct {
	Orders services.OrderService
	Logger *zap.Logger
}

func NewOrderController(orders services.OrderService, logger *zap.Logger) *OrderController {
	return &OrderController{Orders: orders, Logger: logger}
}

// List returns the authenticated user's order history, newest first.
func (oc *OrderController) List(c *gin.Context) {
	page, perPage := pagination(c)

	orders, total, svcErr := oc.Orders.GetUserOrders(c.Request.Context(), middleware.GetUserID(c), page, perPage)
	if svcErr != nil {
		abortWithServiceError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, paginated(orders, total, page, perPage))
}

// Get returns one of the user's orders by order number, including its
// items and status history.
func (oc *OrderController) Get(c *gin.Context) {
	orderNumber := c.Param("number")

	order, svcErr := oc.Orders.GetOrderByNumber(c.Request.Context(), orderNumber, middleware.GetUserID(c))
	if svcErr != nil {
		abortWithServiceError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, order)
}

// ListAll returns every order. Staff only.
func (oc *OrderController) ListAll(c *gin.Context) {
	page, perPage := pagination(c)

	orders, total, svcErr := oc.Orders.ListAll(c.Request.Context(), page, perPage)
	if svcErr != nil {
		abortWithServiceError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, paginated(orders, total, page, perPage))
}

// UpdateStatus moves an order along the fulfillment state machine.
// Staff only.
func (oc *OrderController) UpdateStatus(c *gin.Context) {
	orderID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
		Note   string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, svcErr := oc.Orders.TransitionStatus(c.Request.Context(), orderID, req.Status, middleware.GetUserID(c), req.Note)
	if svcErr != nil {
		abortWithServiceError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, order)
}
