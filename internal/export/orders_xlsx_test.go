package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/loomshop/loomshop-backend/internal/app/model"
)

func TestOrdersWorkbook(t *testing.T) {
	orders := []model.Order{
		{
			ID:              1,
			UserID:          7,
			TotalAmount:     35.99,
			Status:          model.OrderStatusConfirmed,
			ShippingAddress: "12 Mill Lane",
			CreatedAt:       time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
			Items: []model.OrderItem{
				{Kind: model.CartLineProduct, Name: "towel", UnitPrice: 19.99, Quantity: 1},
				{Kind: model.CartLineUpsell, Name: "kitchen-set", UnitPrice: 16.00, Quantity: 1},
			},
		},
	}

	buf, err := OrdersWorkbook(orders)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(ordersSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3) // header plus one row per item
	assert.Equal(t, "Order ID", rows[0][0])
	assert.Equal(t, "towel", rows[1][7])
	assert.Equal(t, "kitchen-set", rows[2][7])
	assert.Equal(t, "confirmed", rows[1][2])
}

func TestOrdersWorkbook_EmptyOrders(t *testing.T) {
	buf, err := OrdersWorkbook(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(ordersSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
