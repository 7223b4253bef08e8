package shop

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"quickcart/internal/model"
	"quickcart/internal/store"
)

// TimeWindow pre-filters order history relative to now. Cutoffs compare
// lexically against the RFC 3339 orderedAt string.
type TimeWindow string

const (
	WindowAllTime  TimeWindow = "all time"
	Window30Days   TimeWindow = "last 30 days"
	Window3Months  TimeWindow = "past 3 months"
	WindowPastYear TimeWindow = "past year"
)

func (w TimeWindow) cutoff(now time.Time) (time.Time, bool) {
	switch w {
	case Window30Days:
		return now.Add(-30 * 24 * time.Hour), true
	case Window3Months:
		return now.Add(-90 * 24 * time.Hour), true
	case WindowPastYear:
		return now.Add(-365 * 24 * time.Hour), true
	}
	return time.Time{}, false
}

// OrdersFilter is the store filter for one user's order history within a
// time window.
func OrdersFilter(userID string, window TimeWindow, now time.Time) store.Filter {
	f := store.Filter{store.Eq("userId", userID)}
	if cutoff, ok := window.cutoff(now); ok {
		f = append(f, store.Gte("orderedAt", cutoff.UTC().Format(time.RFC3339)))
	}
	return f
}

type PlaceOrderParams struct {
	UserID         string
	ProductID      string
	ProductName    string
	TotalPrice     float64
	ImageURL       string
	Description    string
	Quantity       int
	ArrivalDate    string
	ShippingOption string
	// CartItemID, when set, is the cart line the purchase came from; it
	// is removed after the order is recorded.
	CartItemID string
}

// PlaceOrder records the order, decrements the product's stock and removes
// the sourcing cart line — three independent writes with no rollback. The
// stock check happens before any write; it is not re-checked under
// concurrency, so concurrent purchases can oversell.
func (s Service) PlaceOrder(ctx context.Context, params PlaceOrderParams) (string, error) {
	if params.UserID == "" || params.ProductID == "" || params.ProductName == "" {
		return "", validationf("missing required fields for order submission")
	}
	if params.Quantity < 1 {
		return "", validationf("order quantity must be at least 1")
	}
	if params.ShippingOption == "" {
		return "", validationf("no shipping option selected")
	}

	stock, err := s.StockQuantity(ctx, params.ProductID)
	if err != nil {
		return "", err
	}
	if params.Quantity > stock {
		return "", validationf("insufficient stock for %s: %d requested, %d available",
			params.ProductName, params.Quantity, stock)
	}

	order := model.Order{
		UserID:       params.UserID,
		ProductName:  params.ProductName,
		TotalPrice:   params.TotalPrice,
		ImageURL:     params.ImageURL,
		Description:  params.Description,
		Quantity:     params.Quantity,
		OrderedAt:    time.Now().UTC().Format(time.RFC3339),
		ArrivalDate:  params.ArrivalDate,
		ReturnStatus: false,
	}
	orderID, err := s.Store.Orders.Insert(ctx, order)
	if err != nil {
		return "", errors.WithMessagef(err, "error inserting Order for User with ID: %s", params.UserID)
	}

	if err = s.UpdateStockQuantity(ctx, params.ProductID, params.Quantity); err != nil {
		s.Logger.Errorf("PlaceOrder: Order with ID: %s recorded but stock update failed for Product with ID: %s, err: %v",
			orderID, params.ProductID, err)
		return orderID, err
	}

	if params.CartItemID != "" {
		if err = s.DeleteFromCart(ctx, params.CartItemID); err != nil {
			s.Logger.Errorf("PlaceOrder: Order with ID: %s recorded but CartItem with ID: %s was not removed, err: %v",
				orderID, params.CartItemID, err)
			return orderID, err
		}
	}
	return orderID, nil
}

const returnWindow = 30 * 24 * time.Hour

// ReturnOrder flips returnStatus after checking the 30-day window against
// the order's arrival date. The write itself carries no check.
func (s Service) ReturnOrder(ctx context.Context, orderID string) error {
	o, err := s.Store.Orders.Get(ctx, orderID)
	if err != nil {
		return errors.WithMessagef(err, "error finding Order with ID: %s", orderID)
	}

	arrival, err := time.Parse(time.RFC3339, o.ArrivalDate)
	if err != nil {
		return errors.Wrapf(err, "error parsing arrival date of Order with ID: %s: %s", orderID, o.ArrivalDate)
	}
	if time.Since(arrival) > returnWindow {
		return validationf("return window for Order with ID: %s has expired", orderID)
	}

	err = s.Store.Orders.Update(ctx, orderID, store.Patch{"returnStatus": true})
	return errors.WithMessagef(err, "error updating return status of Order with ID: %s", orderID)
}

func (s Service) OrderCount(ctx context.Context, userID string) (int64, error) {
	n, err := s.Store.Orders.Count(ctx, store.Filter{store.Eq("userId", userID)})
	return n, errors.WithMessagef(err, "error counting Orders for User with ID: %s", userID)
}
