package shop

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"quickcart/internal/model"
	"quickcart/internal/store"
)

func (s Service) AddProduct(ctx context.Context, p model.Product) (string, error) {
	if p.Name == "" {
		return "", validationf("product name is required")
	}
	if p.Price < 0 {
		return "", validationf("product price must not be negative")
	}
	if p.StockQuantity < 0 {
		return "", validationf("product stock quantity must not be negative")
	}

	p.ID = ""
	p.Reviews = []model.Review{}
	p.CreatedAt = primitive.NewDateTimeFromTime(time.Now())
	id, err := s.Store.Products.Insert(ctx, p)
	if err != nil {
		return "", errors.WithMessagef(err, "error inserting Product: %s", p.Name)
	}
	s.Logger.Debugf("AddProduct: Inserted Product: %s, ID: %s", p.Name, id)
	return id, nil
}

// DeleteProduct removes the product document only. Cart lines, orders and
// recently-viewed entries that reference it are orphaned, not cascaded.
func (s Service) DeleteProduct(ctx context.Context, productID string) error {
	if err := s.Store.Products.Delete(ctx, productID); err != nil {
		return errors.WithMessagef(err, "error deleting Product with ID: %s", productID)
	}
	return nil
}

func (s Service) GetProduct(ctx context.Context, productID string) (model.Product, error) {
	p, err := s.Store.Products.Get(ctx, productID)
	return p, errors.WithMessagef(err, "error finding Product with ID: %s", productID)
}

func (s Service) StockQuantity(ctx context.Context, productID string) (int, error) {
	p, err := s.Store.Products.Get(ctx, productID)
	if err != nil {
		return 0, errors.WithMessagef(err, "error finding Product with ID: %s", productID)
	}
	return p.StockQuantity, nil
}

// UpdateStockQuantity subtracts orderQuantity from the product's stock.
// Read-then-write without a concurrency token: a concurrent update between
// the read and the patch is lost, and stock can go negative under
// concurrent purchases.
func (s Service) UpdateStockQuantity(ctx context.Context, productID string, orderQuantity int) error {
	p, err := s.Store.Products.Get(ctx, productID)
	if err != nil {
		return errors.WithMessagef(err, "error finding Product with ID: %s", productID)
	}
	err = s.Store.Products.Update(ctx, productID, store.Patch{
		"stockQuantity": p.StockQuantity - orderQuantity,
	})
	return errors.WithMessagef(err, "error updating stock quantity for Product with ID: %s", productID)
}
