package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/loomshop/loomshop-backend/internal/app/model"
	"github.com/loomshop/loomshop-backend/internal/app/repository"
	"github.com/loomshop/loomshop-backend/internal/db"
)

type recordingNotifier struct {
	events []string
}

func (n *recordingNotifier) NotifyOrderEvent(event string, order *model.Order) {
	n.events = append(n.events, event)
}

func setupOrderServiceTest(t *testing.T) (OrderService, CartService, *recordingNotifier, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	cartRepo := repository.NewCartRepository(testDB)
	productRepo := repository.NewProductRepository(testDB, 0)
	upsellRepo := repository.NewUpsellRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)

	cartService := NewCartService(cartRepo, productRepo, upsellRepo)
	notifier := &recordingNotifier{}
	orderService := NewOrderService(orderRepo, cartRepo, cartService, notifier)
	return orderService, cartService, notifier, testDB
}

func TestOrderService_Checkout(t *testing.T) {
	orderService, cartService, notifier, testDB := setupOrderServiceTest(t)
	product := createTestProduct(t, testDB, "towel", 19.99)

	_, err := cartService.AddProductLine(context.Background(), 1, product.ID, 2, nil)
	require.NoError(t, err)

	order, err := orderService.Checkout(context.Background(), 1, nil, "12 Mill Lane")
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, 39.98, order.TotalAmount)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "towel", order.Items[0].Name)
	assert.Equal(t, 19.99, order.Items[0].UnitPrice)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, []string{"order.created"}, notifier.events)

	// the ordered lines are gone from the cart
	cart, err := cartService.ComposeCart(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
}

func TestOrderService_Checkout_SelectedLinesOnly(t *testing.T) {
	orderService, cartService, _, testDB := setupOrderServiceTest(t)
	a := createTestProduct(t, testDB, "a", 10)
	b := createTestProduct(t, testDB, "b", 20)

	lineA, err := cartService.AddProductLine(context.Background(), 1, a.ID, 1, nil)
	require.NoError(t, err)
	lineB, err := cartService.AddProductLine(context.Background(), 1, b.ID, 1, nil)
	require.NoError(t, err)

	order, err := orderService.Checkout(context.Background(), 1, []string{lineA.VariantID}, "12 Mill Lane")
	require.NoError(t, err)
	assert.Equal(t, 10.0, order.TotalAmount)

	// the unselected line survives checkout
	cart, err := cartService.ComposeCart(context.Background(), 1, nil)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, lineB.VariantID, cart.Lines[0].Line.VariantID)
}

func TestOrderService_Checkout_EmptyCart(t *testing.T) {
	orderService, _, _, _ := setupOrderServiceTest(t)

	_, err := orderService.Checkout(context.Background(), 1, nil, "12 Mill Lane")
	assert.ErrorIs(t, err, ErrCartEmpty)
}

func TestOrderService_Checkout_SnapshotSurvivesCatalogEdit(t *testing.T) {
	orderService, cartService, _, testDB := setupOrderServiceTest(t)
	product := createTestProduct(t, testDB, "towel", 19.99)

	_, err := cartService.AddProductLine(context.Background(), 1, product.ID, 1, nil)
	require.NoError(t, err)

	order, err := orderService.Checkout(context.Background(), 1, nil, "12 Mill Lane")
	require.NoError(t, err)

	require.NoError(t, testDB.Model(&model.Product{}).Where("id = ?", product.ID).
		Updates(map[string]interface{}{"name": "renamed", "base_price": 99.0}).Error)

	stored, err := orderService.GetOrderByID(1, false, order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "towel", stored.Items[0].Name)
	assert.Equal(t, 19.99, stored.Items[0].UnitPrice)
}

func TestOrderService_GetOrderByID_AccessControl(t *testing.T) {
	orderService, cartService, _, testDB := setupOrderServiceTest(t)
	product := createTestProduct(t, testDB, "towel", 10)

	_, err := cartService.AddProductLine(context.Background(), 1, product.ID, 1, nil)
	require.NoError(t, err)
	order, err := orderService.Checkout(context.Background(), 1, nil, "12 Mill Lane")
	require.NoError(t, err)

	_, err = orderService.GetOrderByID(2, false, order.ID)
	assert.ErrorIs(t, err, ErrOrderAccessDenied)

	_, err = orderService.GetOrderByID(2, true, order.ID)
	assert.NoError(t, err)
}

func TestOrderService_UpdateOrderStatus(t *testing.T) {
	orderService, cartService, notifier, testDB := setupOrderServiceTest(t)
	product := createTestProduct(t, testDB, "towel", 10)

	_, err := cartService.AddProductLine(context.Background(), 1, product.ID, 1, nil)
	require.NoError(t, err)
	order, err := orderService.Checkout(context.Background(), 1, nil, "12 Mill Lane")
	require.NoError(t, err)

	updated, err := orderService.UpdateOrderStatus(order.ID, model.OrderStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusConfirmed, updated.Status)
	assert.Contains(t, notifier.events, "order.status_changed")

	_, err = orderService.UpdateOrderStatus(order.ID, model.OrderStatus("bogus"))
	assert.ErrorIs(t, err, ErrOrderInvalidStatus)

	_, err = orderService.UpdateOrderStatus(999, model.OrderStatusShipping)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
