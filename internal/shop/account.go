package shop

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"quickcart/internal/model"
	"quickcart/internal/store"
)

// AddUserInfo creates the profile document for an identity, keyed by the
// identity ID. A no-op when the profile already exists.
func (s Service) AddUserInfo(ctx context.Context, userID string, email string) error {
	existing, err := s.Store.Users.Find(ctx, store.Filter{store.Eq("userID", userID)})
	if err != nil {
		return errors.WithMessagef(err, "error finding UserProfile for User with ID: %s", userID)
	}
	if len(existing) > 0 {
		return nil
	}

	profile := model.UserProfile{
		ID:             userID,
		UserID:         userID,
		Email:          email,
		CreatedAt:      primitive.NewDateTimeFromTime(time.Now()),
		RecentlyViewed: []model.ViewedProduct{},
	}
	if _, err = s.Store.Users.Insert(ctx, profile); err != nil {
		return errors.WithMessagef(err, "error inserting UserProfile for User with ID: %s", userID)
	}
	return nil
}

func (s Service) UserInfo(ctx context.Context, email string) (model.UserProfile, error) {
	profiles, err := s.Store.Users.Find(ctx, store.Filter{store.Eq("email", email)})
	if err != nil {
		return model.UserProfile{}, errors.WithMessagef(err, "error finding UserProfile with email: %s", email)
	}
	if len(profiles) == 0 {
		return model.UserProfile{}, errors.Wrapf(store.ErrNotFound, "no UserProfile with email: %s", email)
	}
	return profiles[0], nil
}

// AddRecentlyViewed records a product view on the profile: deduplicated,
// most recent first, capped at 10. The full replacement list is computed
// here and written in one patch.
func (s Service) AddRecentlyViewed(ctx context.Context, userID string, productID string) error {
	profile, err := s.Store.Users.Get(ctx, userID)
	if err != nil {
		return errors.WithMessagef(err, "error finding UserProfile for User with ID: %s", userID)
	}

	viewedAt := time.Now().UTC().Format(time.RFC3339)
	updated := model.PushRecentlyViewed(profile.RecentlyViewed, productID, viewedAt)
	err = s.Store.Users.Update(ctx, userID, store.Patch{"recentlyViewed": updated})
	return errors.WithMessagef(err, "error updating recently viewed for User with ID: %s", userID)
}

// RecentlyViewedProducts resolves the profile's recently-viewed entries to
// products, preserving order and skipping products that no longer exist.
func (s Service) RecentlyViewedProducts(ctx context.Context, userID string) ([]model.Product, error) {
	profile, err := s.Store.Users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, errors.WithMessagef(err, "error finding UserProfile for User with ID: %s", userID)
	}

	products := make([]model.Product, 0, len(profile.RecentlyViewed))
	for _, v := range profile.RecentlyViewed {
		p, err := s.Store.Products.Get(ctx, v.ProductID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, errors.WithMessagef(err, "error finding recently viewed Product with ID: %s", v.ProductID)
		}
		products = append(products, p)
	}
	return products, nil
}

// DeleteAccount removes the user's orders, cart lines, profile and
// identity, in that order, as separate sequential deletes. A failure
// partway leaves a partially deleted account; nothing is rolled back or
// retried.
func (s Service) DeleteAccount(ctx context.Context, userID string) error {
	orders, err := s.Store.Orders.Find(ctx, store.Filter{store.Eq("userId", userID)})
	if err != nil {
		return errors.WithMessagef(err, "error finding Orders for User with ID: %s", userID)
	}
	for _, o := range orders {
		if err = s.Store.Orders.Delete(ctx, o.ID); err != nil {
			return errors.WithMessagef(err, "error deleting Order with ID: %s for User with ID: %s", o.ID, userID)
		}
	}

	cartItems, err := s.Store.Cart.Find(ctx, store.Filter{store.Eq("userId", userID)})
	if err != nil {
		return errors.WithMessagef(err, "error finding CartItems for User with ID: %s", userID)
	}
	for _, item := range cartItems {
		if err = s.Store.Cart.Delete(ctx, item.ID); err != nil {
			return errors.WithMessagef(err, "error deleting CartItem with ID: %s for User with ID: %s", item.ID, userID)
		}
	}

	if err = s.Store.Users.Delete(ctx, userID); err != nil {
		return errors.WithMessagef(err, "error deleting UserProfile for User with ID: %s", userID)
	}

	if err = s.Identity.DeleteIdentity(ctx, userID); err != nil {
		return errors.WithMessagef(err, "error deleting identity for User with ID: %s", userID)
	}
	s.Logger.Infof("DeleteAccount: Deleted account for User with ID: %s, %d Order(s), %d CartItem(s)",
		userID, len(orders), len(cartItems))
	return nil
}
