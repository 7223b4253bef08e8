package shop

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"quickcart/internal/model"
	"quickcart/internal/store"
)

func TestAddUserInfoIdempotent(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, s.AddUserInfo(ctx, "user-1", "a@example.com"))
	require.NoError(t, s.AddUserInfo(ctx, "user-1", "a@example.com"))

	n, err := s.Store.Users.Count(ctx, store.Filter{store.Eq("userID", "user-1")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	profile, err := s.Store.Users.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", profile.Email)
	assert.NotNil(t, profile.RecentlyViewed)
}

func TestAddRecentlyViewedDedup(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()
	require.NoError(t, s.AddUserInfo(ctx, "user-1", "a@example.com"))

	require.NoError(t, s.AddRecentlyViewed(ctx, "user-1", "prod-a"))
	require.NoError(t, s.AddRecentlyViewed(ctx, "user-1", "prod-b"))
	require.NoError(t, s.AddRecentlyViewed(ctx, "user-1", "prod-a"))

	profile, err := s.Store.Users.Get(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, profile.RecentlyViewed, 2)
	// Re-viewing moves the product to the front instead of duplicating it.
	assert.Equal(t, "prod-a", profile.RecentlyViewed[0].ProductID)
	assert.Equal(t, "prod-b", profile.RecentlyViewed[1].ProductID)
}

func TestAddRecentlyViewedCap(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()
	require.NoError(t, s.AddUserInfo(ctx, "user-1", "a@example.com"))

	for i := 0; i < 15; i++ {
		require.NoError(t, s.AddRecentlyViewed(ctx, "user-1", fmt.Sprintf("prod-%02d", i)))
	}

	profile, err := s.Store.Users.Get(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, profile.RecentlyViewed, 10)
	assert.Equal(t, "prod-14", profile.RecentlyViewed[0].ProductID)
	assert.Equal(t, "prod-05", profile.RecentlyViewed[9].ProductID)
}

func TestRecentlyViewedProducts(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()
	require.NoError(t, s.AddUserInfo(ctx, "user-1", "a@example.com"))

	mugID := insertProduct(t, s, "Mug", 5)
	hatID := insertProduct(t, s, "Hat", 5)

	require.NoError(t, s.AddRecentlyViewed(ctx, "user-1", mugID))
	require.NoError(t, s.AddRecentlyViewed(ctx, "user-1", hatID))
	// A product that was deleted after being viewed is skipped.
	require.NoError(t, s.AddRecentlyViewed(ctx, "user-1", "gone"))

	products, err := s.RecentlyViewedProducts(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Hat", products[0].Name)
	assert.Equal(t, "Mug", products[1].Name)
}

func TestRecentlyViewedProductsNoProfile(t *testing.T) {
	s, _ := newTestService()

	products, err := s.RecentlyViewedProducts(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestDeleteAccountCascade(t *testing.T) {
	s, ident := newTestService()
	ctx := context.Background()
	require.NoError(t, s.AddUserInfo(ctx, "user-1", "a@example.com"))
	productID := insertProduct(t, s, "Mug", 10)

	for i := 0; i < 2; i++ {
		_, err := s.Store.Orders.Insert(ctx, model.Order{
			UserID:      "user-1",
			ProductName: "Mug",
			OrderedAt:   time.Now().UTC().Format(time.RFC3339),
		})
		require.NoError(t, err)
	}
	_, err := s.AddToCart(ctx, model.CartItem{ProductID: productID, UserID: "user-1", Name: "Mug"})
	require.NoError(t, err)

	// Another user's data must survive the cascade.
	_, err = s.Store.Orders.Insert(ctx, model.Order{UserID: "user-2", ProductName: "Hat"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteAccount(ctx, "user-1"))

	n, err := s.OrderCount(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	n, err = s.CartCount(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	_, err = s.Store.Users.Get(ctx, "user-1")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, []string{"user-1"}, ident.deleted)

	n, err = s.OrderCount(ctx, "user-2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
