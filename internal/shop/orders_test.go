package shop

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"quickcart/internal/model"
	"quickcart/internal/store"
)

func TestPlaceOrder(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()
	productID := insertProduct(t, s, "Mug", 10)

	cartItemID, err := s.AddToCart(ctx, model.CartItem{ProductID: productID, UserID: "user-1", Name: "Mug"})
	require.NoError(t, err)

	orderID, err := s.PlaceOrder(ctx, PlaceOrderParams{
		UserID:         "user-1",
		ProductID:      productID,
		ProductName:    "Mug",
		TotalPrice:     29.97,
		Quantity:       3,
		ArrivalDate:    time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339),
		ShippingOption: "standard",
		CartItemID:     cartItemID,
	})
	require.NoError(t, err)

	o, err := s.Store.Orders.Get(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, "user-1", o.UserID)
	assert.Equal(t, 3, o.Quantity)
	assert.False(t, o.ReturnStatus)
	assert.NotEmpty(t, o.OrderedAt)

	stock, err := s.StockQuantity(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, 7, stock)

	cart, err := s.UserCart(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, cart)
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()
	productID := insertProduct(t, s, "Mug", 1)

	_, err := s.PlaceOrder(ctx, PlaceOrderParams{
		UserID:         "user-1",
		ProductID:      productID,
		ProductName:    "Mug",
		Quantity:       3,
		ShippingOption: "standard",
	})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	// Rejected before any write: no order, stock untouched.
	n, err := s.OrderCount(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	stock, err := s.StockQuantity(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, 1, stock)
}

func TestPlaceOrderValidation(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()
	productID := insertProduct(t, s, "Mug", 10)

	_, err := s.PlaceOrder(ctx, PlaceOrderParams{
		UserID: "user-1", ProductID: productID, ProductName: "Mug",
		Quantity: 0, ShippingOption: "standard",
	})
	assert.True(t, IsValidationError(err))

	_, err = s.PlaceOrder(ctx, PlaceOrderParams{
		UserID: "user-1", ProductID: productID, ProductName: "Mug", Quantity: 1,
	})
	assert.True(t, IsValidationError(err))
}

func TestReturnOrder(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()

	recentID, err := s.Store.Orders.Insert(ctx, model.Order{
		UserID:      "user-1",
		ProductName: "Mug",
		ArrivalDate: time.Now().Add(-5 * 24 * time.Hour).UTC().Format(time.RFC3339),
	})
	require.NoError(t, err)
	lateID, err := s.Store.Orders.Insert(ctx, model.Order{
		UserID:      "user-1",
		ProductName: "Hat",
		ArrivalDate: time.Now().Add(-40 * 24 * time.Hour).UTC().Format(time.RFC3339),
	})
	require.NoError(t, err)

	require.NoError(t, s.ReturnOrder(ctx, recentID))
	o, err := s.Store.Orders.Get(ctx, recentID)
	require.NoError(t, err)
	assert.True(t, o.ReturnStatus)

	err = s.ReturnOrder(ctx, lateID)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	o, err = s.Store.Orders.Get(ctx, lateID)
	require.NoError(t, err)
	assert.False(t, o.ReturnStatus)
}

func TestOrdersFilterTimeWindow(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()
	now := time.Now().UTC()

	for _, age := range []time.Duration{
		2 * 24 * time.Hour,
		45 * 24 * time.Hour,
		200 * 24 * time.Hour,
		2 * 365 * 24 * time.Hour,
	} {
		_, err := s.Store.Orders.Insert(ctx, model.Order{
			UserID:    "user-1",
			OrderedAt: now.Add(-age).Format(time.RFC3339),
		})
		require.NoError(t, err)
	}
	// Another user's order never shows up.
	_, err := s.Store.Orders.Insert(ctx, model.Order{
		UserID:    "user-2",
		OrderedAt: now.Format(time.RFC3339),
	})
	require.NoError(t, err)

	counts := map[TimeWindow]int64{
		WindowAllTime:  4,
		Window30Days:   1,
		Window3Months:  2,
		WindowPastYear: 3,
	}
	for window, want := range counts {
		n, err := s.Store.Orders.Count(ctx, OrdersFilter("user-1", window, now))
		require.NoError(t, err)
		assert.Equal(t, want, n, "window %q", window)
	}
}

func TestOrdersFilterUnknownWindowMeansAllTime(t *testing.T) {
	f := OrdersFilter("user-1", TimeWindow("bogus"), time.Now())
	assert.Equal(t, store.Filter{store.Eq("userId", "user-1")}, f)
}
