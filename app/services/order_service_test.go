package services

import (
	"context"
	"testing"

	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func placedOrder(t *testing.T, f *fixture) (*models.Customer, *models.Order) {
	t.Helper()
	ctx := context.Background()
	c := f.category(t, "Misc")
	p := f.product(t, c.ID, "P", "20.00")
	cust := f.customer(t)
	_, err := f.carts.UpdateCart(ctx, cust.ID, p.ID, CartActionAdd)
	require.NoError(t, err)
	o, err := f.carts.PlaceOrder(ctx, cust.ID, dec("20.00"))
	require.NoError(t, err)
	return cust, o
}

func TestAdminUpdateOrderStatus(t *testing.T) {
	f := newFixture(t)
	_, o := placedOrder(t, f)

	status := models.OrderStatusShipped
	got, err := f.orders.Update(context.Background(), o.ID, OrderPatch{OrderStatus: &status})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, got.OrderStatus)

	bad := "Lost"
	_, err = f.orders.Update(context.Background(), o.ID, OrderPatch{OrderStatus: &bad})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAdminReopenConflictsWithOpenCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cust, o := placedOrder(t, f)

	_, err := f.carts.GetOrCreateCart(ctx, cust.ID)
	require.NoError(t, err)

	reopen := false
	_, err = f.orders.Update(ctx, o.ID, OrderPatch{Complete: &reopen})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestAdminReopenWithoutOpenCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cust, o := placedOrder(t, f)

	reopen := false
	got, err := f.orders.Update(ctx, o.ID, OrderPatch{Complete: &reopen})
	require.NoError(t, err)
	assert.False(t, got.Complete)
	require.NotNil(t, got.OpenKey)
	assert.Equal(t, cust.ID, *got.OpenKey)

	cart, err := f.carts.GetOrCreateCart(ctx, cust.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, cart.ID)
}

func TestAdminDeleteOrderRemovesItems(t *testing.T) {
	f := newFixture(t)
	_, o := placedOrder(t, f)

	require.NoError(t, f.orders.Delete(context.Background(), o.ID))

	var n int64
	require.NoError(t, f.db.Model(&models.OrderItem{}).Where("order_id = ?", o.ID).Count(&n).Error)
	assert.Zero(t, n)

	_, err := f.orders.Get(context.Background(), o.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
