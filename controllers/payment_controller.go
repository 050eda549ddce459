package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Nickflanagn24/bookstore/middleware"
	"github.com/Nickflanagn24/bookstore/services"
)

type PaymentController struct {
	Payments      services.PaymentService
	Auth          services.AuthService
	Gateway       services.PaymentGateway
	VerifyWebhook bool
	Logger        *zap.Logger
}

func NewPaymentController(payments services.PaymentService, auth services.AuthService, gateway services.PaymentGateway, verifyWebhook bool, logger *zap.Logger) *PaymentController {
	return &PaymentController{
		Payments:      payments,
		Auth:          auth,
		Gateway:       gateway,
		VerifyWebhook: verifyWebhook,
		Logger:        logger,
	}
}

// CreateCheckoutSession turns the user's cart into a pending order and
// returns the hosted payment page URL.
func (pc *PaymentController) CreateCheckoutSession(c *gin.Context) {
	user, svcErr := pc.Auth.GetUser(c.Request.Context(), middleware.GetUserID(c))
	if svcErr != nil {
		abortWithServiceError(c, svcErr)
		return
	}

	result, svcErr := pc.Payments.StartCheckout(c.Request.Context(), user)
	if svcErr != nil {
		abortWithServiceError(c, svcErr)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order_number": result.Order.OrderNumber,
		"checkout_url": result.CheckoutURL,
	})
}

// CheckoutSuccess handles the browser redirect back from Stripe. The
// session's payment status is checked with the gateway before the
// order is confirmed, so hitting this URL with an unpaid session just
// reports the order as still pending.
func (pc *PaymentController) CheckoutSuccess(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing session_id"})
		return
	}

	userID := middleware.GetUserID(c)
	order, svcErr := pc.Payments.ConfirmFromRedirect(c.Request.Context(), sessionID, &userID)
	if svcErr != nil {
		abortWithServiceError(c, svcErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order":  order,
		"status": order.PaymentStatus,
	})
}

// CheckoutCancelled acknowledges an abandoned checkout. The order stays
// pending and the cart is untouched.
func (pc *PaymentController) CheckoutCancelled(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "cancelled",
		"message": "Checkout was cancelled. Your cart has been kept.",
	})
}
