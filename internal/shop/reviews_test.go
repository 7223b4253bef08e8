package shop

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"quickcart/internal/model"
	"quickcart/internal/store"
)

func TestAddReview(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()
	productID := insertProduct(t, s, "Mug", 5)

	r, err := s.AddReview(ctx, productID, model.Review{
		UserID:     "user-1",
		UserName:   "Ana",
		ReviewText: "Holds coffee well",
		Rating:     5,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, r.ID)
	assert.NotEmpty(t, r.CreatedAt)

	p, err := s.GetProduct(ctx, productID)
	require.NoError(t, err)
	require.Len(t, p.Reviews, 1)
	assert.Equal(t, r.ID, p.Reviews[0].ID)
	assert.Equal(t, "Holds coffee well", p.Reviews[0].ReviewText)

	// Nothing stops the same user reviewing twice.
	r2, err := s.AddReview(ctx, productID, model.Review{
		UserID: "user-1", UserName: "Ana", ReviewText: "Still good", Rating: 4,
	})
	require.NoError(t, err)
	assert.NotEqual(t, r.ID, r2.ID)

	p, err = s.GetProduct(ctx, productID)
	require.NoError(t, err)
	assert.Len(t, p.Reviews, 2)
}

func TestAddReviewValidation(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()
	productID := insertProduct(t, s, "Mug", 5)

	_, err := s.AddReview(ctx, productID, model.Review{
		UserID: "user-1", UserName: "Ana", ReviewText: "ok", Rating: 6,
	})
	assert.True(t, IsValidationError(err))

	_, err = s.AddReview(ctx, productID, model.Review{
		UserID: "user-1", UserName: "Ana", Rating: 3,
	})
	assert.True(t, IsValidationError(err))
}

func TestDeleteReview(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()
	productID := insertProduct(t, s, "Mug", 5)

	r1, err := s.AddReview(ctx, productID, model.Review{
		UserID: "user-1", UserName: "Ana", ReviewText: "Good", Rating: 5,
	})
	require.NoError(t, err)
	r2, err := s.AddReview(ctx, productID, model.Review{
		UserID: "user-2", UserName: "Ben", ReviewText: "Chipped", Rating: 2,
	})
	require.NoError(t, err)

	require.NoError(t, s.DeleteReview(ctx, productID, r1.ID))

	p, err := s.GetProduct(ctx, productID)
	require.NoError(t, err)
	require.Len(t, p.Reviews, 1)
	assert.Equal(t, r2.ID, p.Reviews[0].ID)

	// Deleting an unknown review ID rewrites the same set.
	require.NoError(t, s.DeleteReview(ctx, productID, "missing"))
	p, err = s.GetProduct(ctx, productID)
	require.NoError(t, err)
	assert.Len(t, p.Reviews, 1)
}

func TestDeleteReviewMissingProduct(t *testing.T) {
	s, _ := newTestService()

	err := s.DeleteReview(context.Background(), "missing", "r1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
