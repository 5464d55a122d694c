package client

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/franciscosanchezn/food-ordering-api/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCart(t *testing.T, mux *http.ServeMux) (*CartRepository, *OrderRepository) {
	db := newTestStore(t)
	api := newTestServer(t, mux)
	api.Session().Save("token", &models.User{ID: 1, Email: "alice@example.com"})
	orders := NewOrderRepository(db, api)
	return NewCartRepository(db, api, orders), orders
}

func TestCart_AddMergesAndTotals(t *testing.T) {
	cart, _ := newTestCart(t, http.NewServeMux())
	ctx := context.Background()
	a := menuItem(10, 1, "A", "9.00", true)
	c := menuItem(12, 1, "C", "2.25", true)

	require.NoError(t, cart.Add(ctx, a, 1))
	require.NoError(t, cart.Add(ctx, a, 2))
	require.NoError(t, cart.Add(ctx, c, 1))

	items, err := cart.Items(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, uint(10), items[0].MenuItemID)
	assert.Equal(t, 3, items[0].Quantity)

	total, err := cart.Total(ctx)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("29.25")), total.String())
}

func TestCart_OneRestaurantOnly(t *testing.T) {
	cart, _ := newTestCart(t, http.NewServeMux())
	ctx := context.Background()

	require.NoError(t, cart.Add(ctx, menuItem(10, 1, "A", "9.00", true), 1))

	roll := menuItem(20, 2, "Roll", "7.50", true)
	assert.ErrorIs(t, cart.Add(ctx, roll, 1), ErrDifferentRestaurant)

	items, err := cart.Items(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, uint(1), items[0].RestaurantID)

	require.NoError(t, cart.Replace(ctx, roll, 2))
	items, err = cart.Items(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, uint(20), items[0].MenuItemID)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestCart_RejectsInvalidLines(t *testing.T) {
	cart, _ := newTestCart(t, http.NewServeMux())
	ctx := context.Background()

	assert.ErrorIs(t, cart.Add(ctx, menuItem(11, 1, "B", "5.00", false), 1), ErrItemUnavailable)
	assert.ErrorIs(t, cart.Add(ctx, menuItem(10, 1, "A", "9.00", true), 0), ErrInvalidQuantity)

	items, err := cart.Items(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCart_UpdateQuantityAndRemove(t *testing.T) {
	cart, _ := newTestCart(t, http.NewServeMux())
	ctx := context.Background()
	require.NoError(t, cart.Add(ctx, menuItem(10, 1, "A", "9.00", true), 1))
	require.NoError(t, cart.Add(ctx, menuItem(12, 1, "C", "2.00", true), 1))

	require.NoError(t, cart.UpdateQuantity(ctx, 10, 4))
	total, err := cart.Total(ctx)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("38")))

	require.NoError(t, cart.UpdateQuantity(ctx, 12, 0))
	items, err := cart.Items(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.NoError(t, cart.Remove(ctx, 10))
	require.NoError(t, cart.Add(ctx, menuItem(20, 2, "Roll", "7.50", true), 1))

	require.NoError(t, cart.Clear(ctx))
	total, err = cart.Total(ctx)
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestCart_Checkout(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/orders", func(w http.ResponseWriter, r *http.Request) {
		var req OrderRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, uint(1), req.RestaurantID)
		assert.Equal(t, models.PaymentCard, req.PaymentMethod)
		if assert.Len(t, req.Items, 1) {
			assert.Equal(t, 2, req.Items[0].Quantity)
		}
		writeData(w, http.StatusCreated, models.Order{
			ID:           5,
			RestaurantID: 1,
			TotalPrice:   decimal.RequireFromString("18.00"),
			Status:       models.StatusPending,
		})
	})
	cart, orders := newTestCart(t, mux)
	ctx := context.Background()

	_, err := cart.Checkout(ctx, CheckoutDetails{DeliveryAddress: "1 Main St", PaymentMethod: models.PaymentCard})
	assert.ErrorIs(t, err, ErrEmptyCart)

	require.NoError(t, cart.Add(ctx, menuItem(10, 1, "A", "9.00", true), 2))
	order, err := cart.Checkout(ctx, CheckoutDetails{DeliveryAddress: "1 Main St", PaymentMethod: models.PaymentCard})
	require.NoError(t, err)
	assert.Equal(t, uint(5), order.ID)
	assert.True(t, order.TotalPrice.Equal(decimal.RequireFromString("18")))

	items, err := cart.Items(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	cachedOrders, found, err := orders.loadOrders(ctx, 1)
	require.NoError(t, err)
	assert.True(t, found)
	require.Len(t, cachedOrders, 1)
	assert.Equal(t, uint(5), cachedOrders[0].ID)
}

func TestCart_CheckoutFailureKeepsCart(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/orders", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusBadRequest, "A is currently unavailable")
	})
	cart, _ := newTestCart(t, mux)
	ctx := context.Background()
	require.NoError(t, cart.Add(ctx, menuItem(10, 1, "A", "9.00", true), 1))

	_, err := cart.Checkout(ctx, CheckoutDetails{DeliveryAddress: "1 Main St", PaymentMethod: models.PaymentCash})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "A is currently unavailable", apiErr.Message)

	items, err := cart.Items(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
