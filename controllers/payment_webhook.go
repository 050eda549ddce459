package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"
)

// StripeWebhook handles payment lifecycle events pushed by Stripe. The
// signature is verified before any payload field is trusted; a bad
// signature is rejected without touching any order.
func (pc *PaymentController) StripeWebhook(c *gin.Context) {
	event, err := pc.Gateway.ParseWebhook(c.Request, pc.VerifyWebhook)
	if err != nil {
		pc.Logger.Warn("Rejected Stripe webhook", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook"})
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		pc.handleSessionCompleted(c, event)

	case "payment_intent.succeeded":
		pc.handleIntentSucceeded(c, event)

	case "payment_intent.payment_failed":
		pc.handleIntentFailed(c, event)

	default:
		pc.Logger.Debug("Ignoring Stripe event", zap.String("type", string(event.Type)))
	}

	c.JSON(http.StatusOK, gin.H{"status": "received"})
}

func (pc *PaymentController) handleSessionCompleted(c *gin.Context, event stripe.Event) {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		pc.Logger.Error("Failed to decode checkout session event", zap.Error(err))
		return
	}

	var intentID *string
	if session.PaymentIntent != nil {
		intentID = &session.PaymentIntent.ID
	}

	if _, svcErr := pc.Payments.ConfirmBySessionID(c.Request.Context(), session.ID, intentID, nil); svcErr != nil {
		pc.Logger.Error("Webhook confirmation failed",
			zap.String("session_id", session.ID),
			zap.String("reason", svcErr.Message),
		)
	}
}

func (pc *PaymentController) handleIntentSucceeded(c *gin.Context, event stripe.Event) {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		pc.Logger.Error("Failed to decode payment intent event", zap.Error(err))
		return
	}

	// The intent is only attached once checkout.session.completed has
	// been processed; an unknown intent here is not an error.
	if _, svcErr := pc.Payments.ConfirmByPaymentIntentID(c.Request.Context(), intent.ID); svcErr != nil && svcErr.StatusCode != http.StatusNotFound {
		pc.Logger.Error("Webhook confirmation failed",
			zap.String("intent_id", intent.ID),
			zap.String("reason", svcErr.Message),
		)
	}
}

func (pc *PaymentController) handleIntentFailed(c *gin.Context, event stripe.Event) {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		pc.Logger.Error("Failed to decode payment intent event", zap.Error(err))
		return
	}

	reason := "Payment failed"
	if intent.LastPaymentError != nil && intent.LastPaymentError.Msg != "" {
		reason = intent.LastPaymentError.Msg
	}

	if svcErr := pc.Payments.FailByPaymentIntentID(c.Request.Context(), intent.ID, reason); svcErr != nil {
		pc.Logger.Error("Webhook failure handling failed",
			zap.String("intent_id", intent.ID),
			zap.String("reason", svcErr.Message),
		)
	}
}
