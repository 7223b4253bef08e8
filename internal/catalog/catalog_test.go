package catalog

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	qlogger "quickcart/internal/logger"
	"quickcart/internal/model"
	"quickcart/internal/store"
)

// Redis is left nil so rails are computed from the store directly.
func newTestService() Service {
	return Service{
		Store:  store.NewMemoryStore(),
		Logger: qlogger.NewLogger(qlogger.LevelOff, io.Discard),
	}
}

func TestNewArrivals(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 14; i++ {
		_, err := s.Store.Products.Insert(ctx, model.Product{
			Name:      fmt.Sprintf("Product %02d", i),
			CreatedAt: primitive.NewDateTimeFromTime(base.Add(time.Duration(i) * time.Hour)),
		})
		require.NoError(t, err)
	}

	products, err := s.NewArrivals(ctx)
	require.NoError(t, err)
	require.Len(t, products, 10)
	assert.Equal(t, "Product 13", products[0].Name)
	assert.Equal(t, "Product 04", products[9].Name)
}

func TestTopRated(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	insert := func(name string, ratings ...int) {
		reviews := make([]model.Review, len(ratings))
		for i, r := range ratings {
			reviews[i] = model.Review{ID: fmt.Sprintf("%s-%d", name, i), Rating: r}
		}
		_, err := s.Store.Products.Insert(ctx, model.Product{Name: name, Reviews: reviews})
		require.NoError(t, err)
	}
	insert("Unreviewed")
	insert("Solid", 4, 4, 4)
	insert("Loved", 5, 5)
	insert("Mixed", 5, 1)

	rated, err := s.TopRated(ctx)
	require.NoError(t, err)
	require.Len(t, rated, 3)
	assert.Equal(t, "Loved", rated[0].Product.Name)
	assert.Equal(t, 5.0, rated[0].AverageRating)
	assert.Equal(t, "Solid", rated[1].Product.Name)
	assert.Equal(t, "Mixed", rated[2].Product.Name)
}

func TestMostPopular(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	for name, n := range map[string]int{"Mug": 3, "Hat": 5, "Sock": 1} {
		for i := 0; i < n; i++ {
			_, err := s.Store.Orders.Insert(ctx, model.Order{
				UserID:      fmt.Sprintf("user-%d", i),
				ProductName: name,
			})
			require.NoError(t, err)
		}
	}

	popular, err := s.MostPopular(ctx)
	require.NoError(t, err)
	require.Len(t, popular, 3)
	assert.Equal(t, PopularProduct{ProductName: "Hat", OrderCount: 5}, popular[0])
	assert.Equal(t, PopularProduct{ProductName: "Mug", OrderCount: 3}, popular[1])
	assert.Equal(t, PopularProduct{ProductName: "Sock", OrderCount: 1}, popular[2])
}
