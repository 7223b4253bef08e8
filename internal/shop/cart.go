package shop

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"quickcart/internal/model"
	"quickcart/internal/store"
)

// AddToCart creates one cart line. Repeated calls for the same product
// create duplicate lines.
func (s Service) AddToCart(ctx context.Context, item model.CartItem) (string, error) {
	if item.ProductID == "" || item.UserID == "" {
		return "", validationf("product and user are required to add to cart")
	}

	item.ID = ""
	item.CreatedAt = primitive.NewDateTimeFromTime(time.Now())
	id, err := s.Store.Cart.Insert(ctx, item)
	if err != nil {
		return "", errors.WithMessagef(err, "error inserting CartItem for User with ID: %s", item.UserID)
	}
	return id, nil
}

func (s Service) DeleteFromCart(ctx context.Context, cartItemID string) error {
	if err := s.Store.Cart.Delete(ctx, cartItemID); err != nil {
		return errors.WithMessagef(err, "error deleting CartItem with ID: %s", cartItemID)
	}
	return nil
}

func (s Service) UserCart(ctx context.Context, userID string) ([]model.CartItem, error) {
	items, err := s.Store.Cart.Find(ctx, store.Filter{store.Eq("userId", userID)})
	return items, errors.WithMessagef(err, "error finding CartItems for User with ID: %s", userID)
}

func (s Service) CartCount(ctx context.Context, userID string) (int64, error) {
	n, err := s.Store.Cart.Count(ctx, store.Filter{store.Eq("userId", userID)})
	return n, errors.WithMessagef(err, "error counting CartItems for User with ID: %s", userID)
}
