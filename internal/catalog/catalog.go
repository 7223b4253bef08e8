// Package catalog computes the dashboard rails: new arrivals, top rated
// and most popular products. Results sit behind a short-lived Redis JSON
// cache; cache failures are logged and the rail is recomputed.
package catalog

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/go-redis/redis/v9"
	"github.com/pkg/errors"
	"quickcart/internal/model"
	"quickcart/internal/store"
)

const (
	railSize = 10
	cacheTTL = 5 * time.Minute
)

type logger interface {
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Errorf(format string, v ...any)
}

type Service struct {
	Store  *store.Store
	Redis  *redis.Client
	Logger logger
}

// RatedProduct pairs a product with its computed review aggregate.
type RatedProduct struct {
	Product       model.Product `json:"product"`
	AverageRating float64       `json:"averageRating"`
	ReviewCount   int           `json:"reviewCount"`
}

// PopularProduct is a product name with how many orders reference it.
type PopularProduct struct {
	ProductName string `json:"productName"`
	OrderCount  int    `json:"orderCount"`
}

// NewArrivals returns the ten newest products by creation time.
func (s Service) NewArrivals(ctx context.Context) ([]model.Product, error) {
	cacheKey := "CNA"
	var cached []model.Product
	if s.cacheGet(ctx, cacheKey, &cached) {
		return cached, nil
	}

	page, err := s.Store.Products.Query(ctx, store.Query{
		Order: store.Order{Key: "createdAt", Direction: store.Descending},
		Limit: railSize,
	})
	if err != nil {
		return nil, errors.WithMessage(err, "error querying newest Products")
	}
	s.cacheSet(ctx, cacheKey, page.Items)
	return page.Items, nil
}

// TopRated ranks products by average embedded-review rating, breaking
// ties by review count, and returns the top ten. Products without
// reviews are excluded.
func (s Service) TopRated(ctx context.Context) ([]RatedProduct, error) {
	cacheKey := "CTR"
	var cached []RatedProduct
	if s.cacheGet(ctx, cacheKey, &cached) {
		return cached, nil
	}

	products, err := s.Store.Products.Find(ctx, nil)
	if err != nil {
		return nil, errors.WithMessage(err, "error finding Products for top rated")
	}
	rated := make([]RatedProduct, 0, len(products))
	for _, p := range products {
		if len(p.Reviews) == 0 {
			continue
		}
		rated = append(rated, RatedProduct{
			Product:       p,
			AverageRating: p.AverageRating(),
			ReviewCount:   len(p.Reviews),
		})
	}
	sort.SliceStable(rated, func(i, j int) bool {
		if rated[i].AverageRating != rated[j].AverageRating {
			return rated[i].AverageRating > rated[j].AverageRating
		}
		return rated[i].ReviewCount > rated[j].ReviewCount
	})
	if len(rated) > railSize {
		rated = rated[:railSize]
	}
	s.cacheSet(ctx, cacheKey, rated)
	return rated, nil
}

// MostPopular counts orders per product name and returns the ten most
// ordered. Orders carry the product name, not a reference, so renamed
// products count as distinct entries.
func (s Service) MostPopular(ctx context.Context) ([]PopularProduct, error) {
	cacheKey := "CMP"
	var cached []PopularProduct
	if s.cacheGet(ctx, cacheKey, &cached) {
		return cached, nil
	}

	orders, err := s.Store.Orders.Find(ctx, nil)
	if err != nil {
		return nil, errors.WithMessage(err, "error finding Orders for most popular")
	}
	counts := map[string]int{}
	for _, o := range orders {
		counts[o.ProductName]++
	}
	popular := make([]PopularProduct, 0, len(counts))
	for name, n := range counts {
		popular = append(popular, PopularProduct{ProductName: name, OrderCount: n})
	}
	sort.SliceStable(popular, func(i, j int) bool {
		if popular[i].OrderCount != popular[j].OrderCount {
			return popular[i].OrderCount > popular[j].OrderCount
		}
		return popular[i].ProductName < popular[j].ProductName
	})
	if len(popular) > railSize {
		popular = popular[:railSize]
	}
	s.cacheSet(ctx, cacheKey, popular)
	return popular, nil
}

func (s Service) cacheGet(ctx context.Context, key string, dest any) bool {
	if s.Redis == nil {
		return false
	}
	cached, err := s.Redis.Get(ctx, key).Result()
	if err == nil {
		s.Logger.Infof("catalog: Cache found, key: %s", key)
		if err = json.Unmarshal([]byte(cached), dest); err == nil {
			return true
		}
		s.Logger.Errorf("catalog: Error unmarshalling cache, key: %s, err: %v", key, err)
	} else if err != redis.Nil {
		s.Logger.Errorf("catalog: Error getting Redis cache with key: %s, err: %v", key, err)
	}
	return false
}

func (s Service) cacheSet(ctx context.Context, key string, v any) {
	if s.Redis == nil {
		return
	}
	vJSON, err := json.Marshal(v)
	if err != nil {
		s.Logger.Errorf("catalog: Error marshalling cache value, key: %s, err: %v", key, err)
		return
	}
	if err = s.Redis.Set(ctx, key, vJSON, cacheTTL).Err(); err != nil {
		s.Logger.Errorf("catalog: Error caching value, key: %s, err: %v", key, err)
	}
}
