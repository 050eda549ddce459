package services_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/Nickflanagn24/bookstore/models"
	"github.com/Nickflanagn24/bookstore/services"
)

var orderNumberPattern = regexp.MustCompile(`^TT-\d{8}-[A-Z0-9]{5}$`)

func seedCart(carts *mockCartRepo, userID uuid.UUID, books ...*models.Book) {
	cart := &models.Cart{ID: uuid.New(), UserID: userID}
	carts.carts[userID] = cart
	for i, book := range books {
		item := &models.CartItem{
			ID:       uuid.New(),
			CartID:   cart.ID,
			BookID:   book.ID,
			Quantity: i + 1,
			Book:     *book,
		}
		carts.items[item.ID] = item
	}
}

func newOrderService(orders *mockOrderRepo, carts *mockCartRepo, spy *notificationSpy) services.OrderService {
	return services.NewOrderService(orders, carts, spy, zap.NewNop())
}

func TestCreateFromCart_SnapshotsItems(t *testing.T) {
	orders := newMockOrderRepo()
	carts := newMockCartRepo()
	userID := uuid.New()

	book := &models.Book{
		ID:            uuid.New(),
		Title:         "Inside of a Dog",
		ISBN13:        "9781416583431",
		Authors:       []models.Author{{Name: "Alexandra Horowitz"}},
		Price:         1099,
		StockQuantity: 5,
		IsAvailable:   true,
	}
	seedCart(carts, userID, book)
	svc := newOrderService(orders, carts, &notificationSpy{})

	user := &models.User{ID: userID, Email: "reader@example.com", FirstName: "Robin", LastName: "Lee"}
	order, svcErr := svc.CreateFromCart(context.Background(), user)

	assert.Nil(t, svcErr)
	assert.Regexp(t, orderNumberPattern, order.OrderNumber)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, "reader@example.com", order.CustomerEmail)
	assert.Len(t, order.Items, 1)
	assert.Equal(t, "Inside of a Dog", order.Items[0].BookTitle)
	assert.Equal(t, "Alexandra Horowitz", order.Items[0].BookAuthors)
	assert.Equal(t, "9781416583431", order.Items[0].BookISBN)
	assert.Equal(t, int64(1099), order.Items[0].UnitPrice)
	assert.Equal(t, order.TotalPrice(), order.TotalAmount)
}

func TestCreateFromCart_EmptyCart(t *testing.T) {
	orders := newMockOrderRepo()
	carts := newMockCartRepo()
	userID := uuid.New()
	carts.carts[userID] = &models.Cart{ID: uuid.New(), UserID: userID}
	svc := newOrderService(orders, carts, &notificationSpy{})

	_, svcErr := svc.CreateFromCart(context.Background(), &models.User{ID: userID})

	assert.Equal(t, services.ErrEmptyCart, svcErr)
}

func TestCreateFromCart_NoCartAtAll(t *testing.T) {
	svc := newOrderService(newMockOrderRepo(), newMockCartRepo(), &notificationSpy{})

	_, svcErr := svc.CreateFromCart(context.Background(), &models.User{ID: uuid.New()})

	assert.Equal(t, services.ErrEmptyCart, svcErr)
}

func TestCreateFromCart_StockGoneSinceAdding(t *testing.T) {
	orders := newMockOrderRepo()
	carts := newMockCartRepo()
	userID := uuid.New()

	book := &models.Book{ID: uuid.New(), Title: "Sold Out Title", Price: 999, StockQuantity: 0, IsAvailable: true}
	seedCart(carts, userID, book)
	svc := newOrderService(orders, carts, &notificationSpy{})

	_, svcErr := svc.CreateFromCart(context.Background(), &models.User{ID: userID})

	assert.NotNil(t, svcErr)
	assert.Equal(t, 400, svcErr.StatusCode)
}

func TestCreateFromCart_CartLeftIntact(t *testing.T) {
	orders := newMockOrderRepo()
	carts := newMockCartRepo()
	userID := uuid.New()

	book := &models.Book{ID: uuid.New(), Title: "Merle's Door", Price: 1299, StockQuantity: 3, IsAvailable: true}
	seedCart(carts, userID, book)
	svc := newOrderService(orders, carts, &notificationSpy{})

	_, svcErr := svc.CreateFromCart(context.Background(), &models.User{ID: userID})
	assert.Nil(t, svcErr)

	// The cart is only cleared when payment is confirmed.
	cart, err := carts.GetByUserID(context.Background(), userID)
	assert.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}

func TestTransitionStatus_ValidMove(t *testing.T) {
	orders := newMockOrderRepo()
	order := pendingOrder()
	order.Status = models.OrderStatusConfirmed
	orders.add(order)
	spy := &notificationSpy{}
	svc := newOrderService(orders, newMockCartRepo(), spy)

	updated, svcErr := svc.TransitionStatus(context.Background(), order.ID, models.OrderStatusProcessing, uuid.New(), "picking")

	assert.Nil(t, svcErr)
	assert.Equal(t, models.OrderStatusProcessing, updated.Status)
	assert.Zero(t, spy.shipped)
}

func TestTransitionStatus_InvalidMoveRejected(t *testing.T) {
	orders := newMockOrderRepo()
	order := pendingOrder()
	orders.add(order)
	svc := newOrderService(orders, newMockCartRepo(), &notificationSpy{})

	_, svcErr := svc.TransitionStatus(context.Background(), order.ID, models.OrderStatusDelivered, uuid.New(), "")

	assert.NotNil(t, svcErr)
	assert.Equal(t, 400, svcErr.StatusCode)
	assert.Equal(t, models.OrderStatusPending, order.Status)
}

func TestTransitionStatus_ShippedNotifiesCustomer(t *testing.T) {
	orders := newMockOrderRepo()
	order := pendingOrder()
	order.Status = models.OrderStatusProcessing
	orders.add(order)
	spy := &notificationSpy{}
	svc := newOrderService(orders, newMockCartRepo(), spy)

	updated, svcErr := svc.TransitionStatus(context.Background(), order.ID, models.OrderStatusShipped, uuid.New(), "on the van")

	assert.Nil(t, svcErr)
	assert.Equal(t, models.OrderStatusShipped, updated.Status)
	assert.Equal(t, 1, spy.shipped)
}

func TestTransitionStatus_UnknownOrder(t *testing.T) {
	svc := newOrderService(newMockOrderRepo(), newMockCartRepo(), &notificationSpy{})

	_, svcErr := svc.TransitionStatus(context.Background(), uuid.New(), models.OrderStatusConfirmed, uuid.New(), "")

	assert.NotNil(t, svcErr)
	assert.Equal(t, 404, svcErr.StatusCode)
}
