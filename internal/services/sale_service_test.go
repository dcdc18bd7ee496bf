package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"print_shop/internal/models"
)

func TestRegisterDeliveryIsIdempotent(t *testing.T) {
	f := newOrderFixture(t, false)
	ctx := context.Background()

	order := f.createOrder(t, basicInput())

	first, err := f.saleSvc.RegisterDelivery(ctx, testTenant, order.ID, "50")
	require.NoError(t, err)
	assert.Equal(t, 150.0, first.Sale.Profit)

	_, err = f.saleSvc.RegisterDelivery(ctx, testTenant, order.ID, "50")
	assert.ErrorIs(t, err, models.ErrAlreadyRegistered)

	sales, err := f.sales.GetByOrderID(testTenant, order.ID)
	require.NoError(t, err)
	assert.Len(t, sales, 1, "a second registration must not create a second sale")

	reloaded, err := f.orders.GetByID(testTenant, order.ID)
	require.NoError(t, err)
	assert.Equal(t, string(models.OrderDelivered), reloaded.Status)
	assert.Equal(t, 150.0, reloaded.Profit, "the second call must not change the reconciled profit")
}

func TestRegisterDeliveryFinalCostParsing(t *testing.T) {
	cases := []struct {
		raw  string
		cost float64
	}{
		{"", 0},
		{"   ", 0},
		{"not-a-number", 0},
		{"-20", 0},
		{"75.5", 75.5},
	}

	for _, tc := range cases {
		f := newOrderFixture(t, false)
		order := f.createOrder(t, basicInput())

		result, err := f.saleSvc.RegisterDelivery(context.Background(), testTenant, order.ID, tc.raw)
		require.NoError(t, err, "final cost %q", tc.raw)
		assert.Equal(t, tc.cost, result.Sale.Cost, "final cost %q", tc.raw)
		assert.Equal(t, order.Total-tc.cost, result.Sale.Profit)
	}
}

func TestRegisterDeliverySaleShape(t *testing.T) {
	f := newOrderFixture(t, false)
	order := f.createOrder(t, basicInput())

	result, err := f.saleSvc.RegisterDelivery(context.Background(), testTenant, order.ID, "")
	require.NoError(t, err)

	assert.Equal(t, order.ID, result.Sale.OrderID)
	assert.Equal(t, 1, result.Sale.Quantity)
	assert.Equal(t, models.SaleCategoryService, result.Sale.Category)
	assert.Contains(t, result.Sale.ProductName, order.ClientName)
}

func TestRegisterDeliveryUnknownOrder(t *testing.T) {
	f := newOrderFixture(t, false)

	_, err := f.saleSvc.RegisterDelivery(context.Background(), testTenant, 9999, "")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRegisterDeliveryNotifiesCustomer(t *testing.T) {
	f := newOrderFixture(t, false)

	input := basicInput()
	input.CustomerContact = "5491100000000"
	order := f.createOrder(t, input)
	f.dispatcher.mu.Lock()
	f.dispatcher.customer = nil
	f.dispatcher.mu.Unlock()

	_, err := f.saleSvc.RegisterDelivery(context.Background(), testTenant, order.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 1, f.dispatcher.customerCount())
}
