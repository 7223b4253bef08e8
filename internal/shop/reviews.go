package shop

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"quickcart/internal/model"
	"quickcart/internal/store"
)

// AddReview appends a review to the product's embedded reviews in one
// patch. The review ID is generated here; nothing checks that the user
// has not already reviewed the product.
func (s Service) AddReview(ctx context.Context, productID string, r model.Review) (model.Review, error) {
	if productID == "" || r.ReviewText == "" || r.UserID == "" || r.UserName == "" {
		return model.Review{}, validationf("missing required fields for review submission")
	}
	if r.Rating < 1 || r.Rating > 5 {
		return model.Review{}, validationf("review rating must be between 1 and 5")
	}

	r.ID = uuid.NewString()
	r.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	err := s.Store.Products.Update(ctx, productID, store.Patch{
		"reviews": store.Push{Value: r},
	})
	if err != nil {
		return model.Review{}, errors.WithMessagef(err, "error adding Review to Product with ID: %s", productID)
	}
	s.Logger.Debugf("AddReview: Added Review with ID: %s to Product with ID: %s", r.ID, productID)
	return r, nil
}

// DeleteReview rewrites the embedded reviews without the target. It reads
// first and aborts when the product is gone; a concurrent review mutation
// between the read and the write is lost.
func (s Service) DeleteReview(ctx context.Context, productID string, reviewID string) error {
	p, err := s.Store.Products.Get(ctx, productID)
	if err != nil {
		return errors.WithMessagef(err, "error finding Product with ID: %s", productID)
	}

	updated := make([]model.Review, 0, len(p.Reviews))
	for _, r := range p.Reviews {
		if r.ID != reviewID {
			updated = append(updated, r)
		}
	}
	err = s.Store.Products.Update(ctx, productID, store.Patch{"reviews": updated})
	return errors.WithMessagef(err, "error deleting Review with ID: %s from Product with ID: %s", reviewID, productID)
}
