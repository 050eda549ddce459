package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/checkout/session"
	"github.com/stripe/stripe-go/v80/webhook"

	"github.com/Nickflanagn24/bookstore/models"
)

// CheckoutSession is the subset of a Stripe Checkout Session the
// payment flow needs. PaymentStatus and PaymentIntentID are populated
// by GetCheckoutSession; Stripe reports PaymentStatus as "paid",
// "unpaid" or "no_payment_required".
type CheckoutSession struct {
	ID              string
	URL             string
	PaymentStatus   string
	PaymentIntentID string
}

// Paid reports whether the gateway considers the session settled.
func (cs *CheckoutSession) Paid() bool {
	return cs.PaymentStatus == string(stripe.CheckoutSessionPaymentStatusPaid)
}

// PaymentGateway abstracts the Stripe API so the payment service can be
// tested without network calls.
type PaymentGateway interface {
	CreateCheckoutSession(order *models.Order, successURL, cancelURL string) (*CheckoutSession, error)
	GetCheckoutSession(sessionID string) (*CheckoutSession, error)
	ParseWebhook(r *http.Request, verify bool) (stripe.Event, error)
}

type StripeService struct {
	SecretKey  string
	WebhookKey string
	Currency   string
}

func NewStripeService(secretKey, webhookKey, currency string) *StripeService {
	stripe.Key = secretKey
	return &StripeService{SecretKey: secretKey, WebhookKey: webhookKey, Currency: currency}
}

// CreateCheckoutSession builds a hosted Checkout Session for an order.
// Each order item becomes a line item priced in minor currency units,
// and the order identifiers are carried in the session metadata so the
// webhook can find the order again.
func (s *StripeService) CreateCheckoutSession(order *models.Order, successURL, cancelURL string) (*CheckoutSession, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(order.Items))
	for _, item := range order.Items {
		name := item.BookTitle
		if item.BookAuthors != "" {
			name = fmt.Sprintf("%s by %s", item.BookTitle, item.BookAuthors)
		}
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(s.Currency),
				UnitAmount: stripe.Int64(item.UnitPrice),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(name),
				},
			},
			Quantity: stripe.Int64(int64(item.Quantity)),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:         lineItems,
		SuccessURL:        stripe.String(successURL),
		CancelURL:         stripe.String(cancelURL),
		CustomerEmail:     stripe.String(order.CustomerEmail),
		ClientReferenceID: stripe.String(order.OrderNumber),
	}
	params.AddMetadata("order_id", order.ID.String())
	params.AddMetadata("order_number", order.OrderNumber)
	params.AddMetadata("user_id", order.UserID.String())

	sess, err := session.New(params)
	if err != nil {
		return nil, err
	}
	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// GetCheckoutSession retrieves a session so callers can check its
// payment status instead of trusting the session id alone.
func (s *StripeService) GetCheckoutSession(sessionID string) (*CheckoutSession, error) {
	sess, err := session.Get(sessionID, nil)
	if err != nil {
		return nil, err
	}

	result := &CheckoutSession{
		ID:            sess.ID,
		URL:           sess.URL,
		PaymentStatus: string(sess.PaymentStatus),
	}
	if sess.PaymentIntent != nil {
		result.PaymentIntentID = sess.PaymentIntent.ID
	}
	return result, nil
}

// ParseWebhook reads the webhook payload and verifies the Stripe
// signature. When verify is false (development only, with no webhook
// secret configured) the payload is decoded without verification.
func (s *StripeService) ParseWebhook(r *http.Request, verify bool) (stripe.Event, error) {
	var event stripe.Event
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		return event, err
	}
	r.Body = io.NopCloser(bytes.NewBuffer(payload))

	if !verify {
		err = json.Unmarshal(payload, &event)
		return event, err
	}

	sigHeader := r.Header.Get("Stripe-Signature")
	return webhook.ConstructEvent(payload, sigHeader, s.WebhookKey)
}
