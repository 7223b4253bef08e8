package shop

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	qlogger "quickcart/internal/logger"
	"quickcart/internal/model"
	"quickcart/internal/store"
)

// fakeIdentity records DeleteIdentity calls for cascade assertions.
type fakeIdentity struct {
	deleted []string
}

func (f *fakeIdentity) DeleteIdentity(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func newTestService() (Service, *fakeIdentity) {
	ident := &fakeIdentity{}
	return Service{
		Store:    store.NewMemoryStore(),
		Identity: ident,
		Logger:   qlogger.NewLogger(qlogger.LevelOff, io.Discard),
	}, ident
}

func insertProduct(t *testing.T, s Service, name string, stock int) string {
	t.Helper()
	id, err := s.Store.Products.Insert(context.Background(), model.Product{
		Name:          name,
		Price:         9.99,
		StockQuantity: stock,
		Reviews:       []model.Review{},
		CreatedAt:     primitive.NewDateTimeFromTime(time.Now()),
	})
	require.NoError(t, err)
	return id
}

func TestAddProductValidation(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()

	_, err := s.AddProduct(ctx, model.Product{Price: 1})
	require.Error(t, err)
	require.True(t, IsValidationError(err))

	_, err = s.AddProduct(ctx, model.Product{Name: "Mug", Price: -1})
	require.True(t, IsValidationError(err))

	id, err := s.AddProduct(ctx, model.Product{Name: "Mug", Price: 4.5, StockQuantity: 3})
	require.NoError(t, err)

	p, err := s.GetProduct(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Mug", p.Name)
	require.NotNil(t, p.Reviews)
}

func TestUpdateStockQuantity(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()
	id := insertProduct(t, s, "Mug", 10)

	require.NoError(t, s.UpdateStockQuantity(ctx, id, 4))
	stock, err := s.StockQuantity(ctx, id)
	require.NoError(t, err)
	require.Equal(t, 6, stock)
}
