package services_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Nickflanagn24/bookstore/models"
	"github.com/Nickflanagn24/bookstore/services"
)

// ---- mock order repository ----

type mockOrderRepo struct {
	orders map[uuid.UUID]*models.Order

	claimResult  bool
	claimErr     error
	claimedWith  string
	confirmCalls int
	failCalls    int
	confirmErr   error
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: map[uuid.UUID]*models.Order{}, claimResult: true}
}

func (m *mockOrderRepo) add(order *models.Order) {
	m.orders[order.ID] = order
}

func (m *mockOrderRepo) Create(_ context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	m.orders[order.ID] = order
	return nil
}

func (m *mockOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	if order, ok := m.orders[id]; ok {
		return order, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOrderRepo) FindByNumberAndUser(_ context.Context, number string, userID uuid.UUID) (*models.Order, error) {
	for _, order := range m.orders {
		if order.OrderNumber == number && order.UserID == userID {
			return order, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOrderRepo) FindBySessionID(_ context.Context, sessionID string) (*models.Order, error) {
	for _, order := range m.orders {
		if order.StripeSessionID != nil && *order.StripeSessionID == sessionID {
			return order, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOrderRepo) FindByPaymentIntentID(_ context.Context, intentID string) (*models.Order, error) {
	for _, order := range m.orders {
		if order.StripePaymentIntentID != nil && *order.StripePaymentIntentID == intentID {
			return order, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOrderRepo) FindPendingCheckout(_ context.Context, userID uuid.UUID) (*models.Order, error) {
	for _, order := range m.orders {
		if order.UserID == userID &&
			order.Status == models.OrderStatusPending &&
			order.PaymentStatus == models.PaymentStatusPending &&
			order.StripeSessionID != nil {
			return order, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOrderRepo) FindByUserID(_ context.Context, _ uuid.UUID, _, _ int) ([]models.Order, int64, error) {
	return nil, 0, nil
}

func (m *mockOrderRepo) FindAll(_ context.Context, _, _ int) ([]models.Order, int64, error) {
	return nil, 0, nil
}

func (m *mockOrderRepo) OrderNumberExists(_ context.Context, number string) (bool, error) {
	for _, order := range m.orders {
		if order.OrderNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockOrderRepo) ClaimPaymentSession(_ context.Context, orderID uuid.UUID, sessionID string) (bool, error) {
	if m.claimErr != nil {
		return false, m.claimErr
	}
	if m.claimResult {
		m.claimedWith = sessionID
		if order, ok := m.orders[orderID]; ok {
			order.StripeSessionID = &sessionID
		}
	}
	return m.claimResult, nil
}

func (m *mockOrderRepo) ConfirmPaid(_ context.Context, orderID uuid.UUID, paymentIntentID *string, _ *uuid.UUID) (bool, error) {
	if m.confirmErr != nil {
		return false, m.confirmErr
	}
	order, ok := m.orders[orderID]
	if !ok {
		return false, gorm.ErrRecordNotFound
	}
	if order.PaymentStatus != models.PaymentStatusPending {
		return false, nil
	}
	m.confirmCalls++
	order.Status = models.OrderStatusConfirmed
	order.PaymentStatus = models.PaymentStatusPaid
	if paymentIntentID != nil {
		order.StripePaymentIntentID = paymentIntentID
	}
	return true, nil
}

func (m *mockOrderRepo) MarkPaymentFailed(_ context.Context, orderID uuid.UUID, _ string, intentID *string) (bool, error) {
	order, ok := m.orders[orderID]
	if !ok {
		return false, gorm.ErrRecordNotFound
	}
	if order.PaymentStatus != models.PaymentStatusPending {
		return false, nil
	}
	m.failCalls++
	order.Status = models.OrderStatusCancelled
	order.PaymentStatus = models.PaymentStatusFailed
	if intentID != nil {
		order.StripePaymentIntentID = intentID
	}
	return true, nil
}

func (m *mockOrderRepo) TransitionStatus(_ context.Context, orderID uuid.UUID, from, to string, _ *uuid.UUID, _ string) (bool, error) {
	order, ok := m.orders[orderID]
	if !ok {
		return false, gorm.ErrRecordNotFound
	}
	if order.Status != from {
		return false, nil
	}
	order.Status = to
	return true, nil
}

// ---- mock gateway ----

type mockGateway struct {
	session     *services.CheckoutSession
	sessionErr  error
	created     int
	retrieved   *services.CheckoutSession
	retrieveErr error
	retrievals  int
}

func (m *mockGateway) CreateCheckoutSession(_ *models.Order, _, _ string) (*services.CheckoutSession, error) {
	m.created++
	return m.session, m.sessionErr
}

func (m *mockGateway) GetCheckoutSession(_ string) (*services.CheckoutSession, error) {
	m.retrievals++
	return m.retrieved, m.retrieveErr
}

func (m *mockGateway) ParseWebhook(_ *http.Request, _ bool) (stripe.Event, error) {
	return stripe.Event{}, nil
}

// ---- notification spy ----

type notificationSpy struct {
	confirmations int
	shipped       int
	newsletter    int
	welcome       int
}

func (n *notificationSpy) SendOrderConfirmation(_ context.Context, _ *models.Order) { n.confirmations++ }
func (n *notificationSpy) SendOrderShipped(_ context.Context, _ *models.Order)      { n.shipped++ }
func (n *notificationSpy) SendNewsletterConfirmation(_ context.Context, _ *models.NewsletterSubscriber, _ string) {
	n.newsletter++
}
func (n *notificationSpy) SendNewsletterWelcome(_ context.Context, _ *models.NewsletterSubscriber) {
	n.welcome++
}
func (n *notificationSpy) SendTest(_ context.Context, _ string) (*models.NotificationLog, *services.ServiceError) {
	return nil, nil
}
func (n *notificationSpy) GetLogs(_ context.Context, _ models.NotificationFilter) ([]models.NotificationLog, int64, *services.ServiceError) {
	return nil, 0, nil
}

// ---- stub order service ----

type stubOrderService struct {
	order       *models.Order
	err         *services.ServiceError
	createCalls int
}

func (s *stubOrderService) CreateFromCart(_ context.Context, _ *models.User) (*models.Order, *services.ServiceError) {
	s.createCalls++
	return s.order, s.err
}
func (s *stubOrderService) GetUserOrders(_ context.Context, _ uuid.UUID, _, _ int) ([]models.Order, int64, *services.ServiceError) {
	return nil, 0, nil
}
func (s *stubOrderService) GetOrderByNumber(_ context.Context, _ string, _ uuid.UUID) (*models.Order, *services.ServiceError) {
	return nil, nil
}
func (s *stubOrderService) ListAll(_ context.Context, _, _ int) ([]models.Order, int64, *services.ServiceError) {
	return nil, 0, nil
}
func (s *stubOrderService) TransitionStatus(_ context.Context, _ uuid.UUID, _ string, _ uuid.UUID, _ string) (*models.Order, *services.ServiceError) {
	return nil, nil
}

// ---- helpers ----

func pendingOrder() *models.Order {
	return &models.Order{
		ID:            uuid.New(),
		OrderNumber:   "TT-20260831-ABC12",
		UserID:        uuid.New(),
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
		TotalAmount:   2598,
		CustomerEmail: "reader@example.com",
		Items: []models.OrderItem{
			{BookID: uuid.New(), BookTitle: "The Art of Racing in the Rain", UnitPrice: 1299, Quantity: 2},
		},
	}
}

func newPaymentService(repo *mockOrderRepo, orderSvc services.OrderService, gw services.PaymentGateway, spy *notificationSpy) services.PaymentService {
	logger := zap.NewNop()
	return services.NewPaymentService(repo, orderSvc, gw, spy, "https://talesandtails.example.com", logger)
}

// ---- tests ----

func TestStartCheckout_Success(t *testing.T) {
	order := pendingOrder()
	repo := newMockOrderRepo()
	repo.add(order)

	gw := &mockGateway{session: &services.CheckoutSession{ID: "cs_123", URL: "https://checkout.stripe.com/cs_123"}}
	spy := &notificationSpy{}
	svc := newPaymentService(repo, &stubOrderService{order: order}, gw, spy)

	result, svcErr := svc.StartCheckout(context.Background(), &models.User{ID: order.UserID})

	assert.Nil(t, svcErr)
	assert.Equal(t, "https://checkout.stripe.com/cs_123", result.CheckoutURL)
	assert.Equal(t, "cs_123", repo.claimedWith)
	assert.Zero(t, spy.confirmations)
}

func TestStartCheckout_EmptyCart(t *testing.T) {
	repo := newMockOrderRepo()
	svc := newPaymentService(repo, &stubOrderService{err: services.ErrEmptyCart}, &mockGateway{}, &notificationSpy{})

	_, svcErr := svc.StartCheckout(context.Background(), &models.User{ID: uuid.New()})

	assert.Equal(t, services.ErrEmptyCart, svcErr)
}

func TestStartCheckout_SessionAlreadyClaimed(t *testing.T) {
	order := pendingOrder()
	repo := newMockOrderRepo()
	repo.add(order)
	repo.claimResult = false

	gw := &mockGateway{session: &services.CheckoutSession{ID: "cs_dup", URL: "https://checkout.stripe.com/cs_dup"}}
	svc := newPaymentService(repo, &stubOrderService{order: order}, gw, &notificationSpy{})

	_, svcErr := svc.StartCheckout(context.Background(), &models.User{ID: order.UserID})

	assert.Equal(t, services.ErrAlreadyInProgress, svcErr)
}

func TestStartCheckout_GatewayError(t *testing.T) {
	order := pendingOrder()
	repo := newMockOrderRepo()
	repo.add(order)

	gw := &mockGateway{sessionErr: errors.New("stripe unavailable")}
	svc := newPaymentService(repo, &stubOrderService{order: order}, gw, &notificationSpy{})

	_, svcErr := svc.StartCheckout(context.Background(), &models.User{ID: order.UserID})

	assert.NotNil(t, svcErr)
	assert.Equal(t, http.StatusInternalServerError, svcErr.StatusCode)
}

func TestStartCheckout_SecondCallWhileSessionPending(t *testing.T) {
	order := pendingOrder()
	repo := newMockOrderRepo()
	repo.add(order)

	gw := &mockGateway{session: &services.CheckoutSession{ID: "cs_first", URL: "https://checkout.stripe.com/cs_first"}}
	orderSvc := &stubOrderService{order: order}
	svc := newPaymentService(repo, orderSvc, gw, &notificationSpy{})

	_, first := svc.StartCheckout(context.Background(), &models.User{ID: order.UserID})
	_, second := svc.StartCheckout(context.Background(), &models.User{ID: order.UserID})

	assert.Nil(t, first)
	assert.Equal(t, services.ErrAlreadyInProgress, second)
	assert.Equal(t, 1, orderSvc.createCalls)
	assert.Equal(t, 1, gw.created)
}

func TestStartCheckout_AllowedAgainAfterPaymentFailure(t *testing.T) {
	order := pendingOrder()
	repo := newMockOrderRepo()
	repo.add(order)

	gw := &mockGateway{session: &services.CheckoutSession{ID: "cs_retry", URL: "https://checkout.stripe.com/cs_retry"}}
	orderSvc := &stubOrderService{order: order}
	svc := newPaymentService(repo, orderSvc, gw, &notificationSpy{})

	_, first := svc.StartCheckout(context.Background(), &models.User{ID: order.UserID})
	intentID := "pi_declined"
	order.StripePaymentIntentID = &intentID
	svcErr := svc.FailByPaymentIntentID(context.Background(), intentID, "card declined")
	_, retry := svc.StartCheckout(context.Background(), &models.User{ID: order.UserID})

	assert.Nil(t, first)
	assert.Nil(t, svcErr)
	assert.Nil(t, retry)
	assert.Equal(t, 2, orderSvc.createCalls)
}

func TestConfirmBySessionID_FirstCallConfirmsAndNotifies(t *testing.T) {
	order := pendingOrder()
	sessionID := "cs_live_1"
	order.StripeSessionID = &sessionID
	repo := newMockOrderRepo()
	repo.add(order)
	spy := &notificationSpy{}
	svc := newPaymentService(repo, &stubOrderService{}, &mockGateway{}, spy)

	intentID := "pi_1"
	confirmed, svcErr := svc.ConfirmBySessionID(context.Background(), sessionID, &intentID, nil)

	assert.Nil(t, svcErr)
	assert.Equal(t, models.PaymentStatusPaid, confirmed.PaymentStatus)
	assert.Equal(t, models.OrderStatusConfirmed, confirmed.Status)
	assert.Equal(t, 1, repo.confirmCalls)
	assert.Equal(t, 1, spy.confirmations)
}

func TestConfirmBySessionID_SecondCallIsNoOp(t *testing.T) {
	order := pendingOrder()
	sessionID := "cs_live_2"
	order.StripeSessionID = &sessionID
	repo := newMockOrderRepo()
	repo.add(order)
	spy := &notificationSpy{}
	svc := newPaymentService(repo, &stubOrderService{}, &mockGateway{}, spy)

	intentID := "pi_2"
	_, first := svc.ConfirmBySessionID(context.Background(), sessionID, &intentID, nil)
	result, second := svc.ConfirmBySessionID(context.Background(), sessionID, &intentID, nil)

	assert.Nil(t, first)
	assert.Nil(t, second)
	assert.Equal(t, models.PaymentStatusPaid, result.PaymentStatus)
	assert.Equal(t, 1, repo.confirmCalls)
	assert.Equal(t, 1, spy.confirmations)
}

func TestConfirmBySessionID_UnknownSession(t *testing.T) {
	repo := newMockOrderRepo()
	svc := newPaymentService(repo, &stubOrderService{}, &mockGateway{}, &notificationSpy{})

	_, svcErr := svc.ConfirmBySessionID(context.Background(), "cs_missing", nil, nil)

	assert.NotNil(t, svcErr)
	assert.Equal(t, http.StatusNotFound, svcErr.StatusCode)
}

func TestConfirmBySessionID_CancelledOrderStaysCancelled(t *testing.T) {
	order := pendingOrder()
	sessionID := "cs_late"
	order.StripeSessionID = &sessionID
	order.Status = models.OrderStatusCancelled
	order.PaymentStatus = models.PaymentStatusFailed
	repo := newMockOrderRepo()
	repo.add(order)
	spy := &notificationSpy{}
	svc := newPaymentService(repo, &stubOrderService{}, &mockGateway{}, spy)

	result, svcErr := svc.ConfirmBySessionID(context.Background(), sessionID, nil, nil)

	assert.Nil(t, svcErr)
	assert.Equal(t, models.OrderStatusCancelled, result.Status)
	assert.Equal(t, models.PaymentStatusFailed, result.PaymentStatus)
	assert.Zero(t, repo.confirmCalls)
	assert.Zero(t, spy.confirmations)
}

func TestConfirmFromRedirect_PaidSessionConfirms(t *testing.T) {
	order := pendingOrder()
	sessionID := "cs_redirect_paid"
	order.StripeSessionID = &sessionID
	repo := newMockOrderRepo()
	repo.add(order)
	spy := &notificationSpy{}
	gw := &mockGateway{retrieved: &services.CheckoutSession{
		ID:              sessionID,
		PaymentStatus:   string(stripe.CheckoutSessionPaymentStatusPaid),
		PaymentIntentID: "pi_redirect",
	}}
	svc := newPaymentService(repo, &stubOrderService{}, gw, spy)

	actor := order.UserID
	result, svcErr := svc.ConfirmFromRedirect(context.Background(), sessionID, &actor)

	assert.Nil(t, svcErr)
	assert.Equal(t, models.PaymentStatusPaid, result.PaymentStatus)
	assert.Equal(t, models.OrderStatusConfirmed, result.Status)
	assert.Equal(t, "pi_redirect", *result.StripePaymentIntentID)
	assert.Equal(t, 1, gw.retrievals)
	assert.Equal(t, 1, spy.confirmations)
}

func TestConfirmFromRedirect_UnpaidSessionLeavesOrderPending(t *testing.T) {
	order := pendingOrder()
	sessionID := "cs_redirect_unpaid"
	order.StripeSessionID = &sessionID
	repo := newMockOrderRepo()
	repo.add(order)
	spy := &notificationSpy{}
	gw := &mockGateway{retrieved: &services.CheckoutSession{
		ID:            sessionID,
		PaymentStatus: string(stripe.CheckoutSessionPaymentStatusUnpaid),
	}}
	svc := newPaymentService(repo, &stubOrderService{}, gw, spy)

	result, svcErr := svc.ConfirmFromRedirect(context.Background(), sessionID, nil)

	assert.Nil(t, svcErr)
	assert.Equal(t, models.PaymentStatusPending, result.PaymentStatus)
	assert.Equal(t, models.OrderStatusPending, result.Status)
	assert.Equal(t, 1, gw.retrievals)
	assert.Zero(t, repo.confirmCalls)
	assert.Zero(t, spy.confirmations)
}

func TestConfirmFromRedirect_GatewayErrorLeavesOrderPending(t *testing.T) {
	order := pendingOrder()
	sessionID := "cs_redirect_down"
	order.StripeSessionID = &sessionID
	repo := newMockOrderRepo()
	repo.add(order)
	spy := &notificationSpy{}
	gw := &mockGateway{retrieveErr: errors.New("stripe unavailable")}
	svc := newPaymentService(repo, &stubOrderService{}, gw, spy)

	result, svcErr := svc.ConfirmFromRedirect(context.Background(), sessionID, nil)

	assert.Nil(t, svcErr)
	assert.Equal(t, models.PaymentStatusPending, result.PaymentStatus)
	assert.Zero(t, repo.confirmCalls)
	assert.Zero(t, spy.confirmations)
}

func TestConfirmFromRedirect_SettledOrderSkipsGateway(t *testing.T) {
	order := pendingOrder()
	sessionID := "cs_redirect_settled"
	order.StripeSessionID = &sessionID
	order.Status = models.OrderStatusConfirmed
	order.PaymentStatus = models.PaymentStatusPaid
	repo := newMockOrderRepo()
	repo.add(order)
	spy := &notificationSpy{}
	gw := &mockGateway{}
	svc := newPaymentService(repo, &stubOrderService{}, gw, spy)

	result, svcErr := svc.ConfirmFromRedirect(context.Background(), sessionID, nil)

	assert.Nil(t, svcErr)
	assert.Equal(t, models.PaymentStatusPaid, result.PaymentStatus)
	assert.Zero(t, gw.retrievals)
	assert.Zero(t, spy.confirmations)
}

func TestConfirmFromRedirect_UnknownSession(t *testing.T) {
	repo := newMockOrderRepo()
	svc := newPaymentService(repo, &stubOrderService{}, &mockGateway{}, &notificationSpy{})

	_, svcErr := svc.ConfirmFromRedirect(context.Background(), "cs_missing", nil)

	assert.NotNil(t, svcErr)
	assert.Equal(t, http.StatusNotFound, svcErr.StatusCode)
}

func TestConfirmByPaymentIntentID_ConfirmsOnce(t *testing.T) {
	order := pendingOrder()
	intentID := "pi_webhook"
	order.StripePaymentIntentID = &intentID
	repo := newMockOrderRepo()
	repo.add(order)
	spy := &notificationSpy{}
	svc := newPaymentService(repo, &stubOrderService{}, &mockGateway{}, spy)

	_, first := svc.ConfirmByPaymentIntentID(context.Background(), intentID)
	_, second := svc.ConfirmByPaymentIntentID(context.Background(), intentID)

	assert.Nil(t, first)
	assert.Nil(t, second)
	assert.Equal(t, 1, repo.confirmCalls)
	assert.Equal(t, 1, spy.confirmations)
}

func TestFailByPaymentIntentID_CancelsPendingOrder(t *testing.T) {
	order := pendingOrder()
	intentID := "pi_failed"
	order.StripePaymentIntentID = &intentID
	repo := newMockOrderRepo()
	repo.add(order)
	svc := newPaymentService(repo, &stubOrderService{}, &mockGateway{}, &notificationSpy{})

	svcErr := svc.FailByPaymentIntentID(context.Background(), intentID, "card declined")

	assert.Nil(t, svcErr)
	assert.Equal(t, models.OrderStatusCancelled, order.Status)
	assert.Equal(t, models.PaymentStatusFailed, order.PaymentStatus)
}

func TestFailByPaymentIntentID_PaidOrderUntouched(t *testing.T) {
	order := pendingOrder()
	intentID := "pi_late_failure"
	order.StripePaymentIntentID = &intentID
	order.Status = models.OrderStatusConfirmed
	order.PaymentStatus = models.PaymentStatusPaid
	repo := newMockOrderRepo()
	repo.add(order)
	svc := newPaymentService(repo, &stubOrderService{}, &mockGateway{}, &notificationSpy{})

	svcErr := svc.FailByPaymentIntentID(context.Background(), intentID, "stale event")

	assert.Nil(t, svcErr)
	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)
	assert.Zero(t, repo.failCalls)
}

func TestFailByPaymentIntentID_UnknownIntentIgnored(t *testing.T) {
	repo := newMockOrderRepo()
	svc := newPaymentService(repo, &stubOrderService{}, &mockGateway{}, &notificationSpy{})

	svcErr := svc.FailByPaymentIntentID(context.Background(), "pi_unknown", "card declined")

	assert.Nil(t, svcErr)
}
