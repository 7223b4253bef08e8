package server

import (
	"encoding/json"
	"net/http"
	"time"

	"quickcart/internal/model"
	"quickcart/internal/pagination"
	"quickcart/internal/shop"
	"quickcart/internal/store"
)

func (s Server) orderList() http.HandlerFunc {
	type response struct {
		Orders     []model.Order `json:"orders"`
		Page       int           `json:"page"`
		Total      int64         `json:"total"`
		TotalPages int           `json:"total_pages"`
		HasMore    bool          `json:"has_more"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("orderList: Error getting UserContext, err: %v, TraceID: %s", err, tid)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		page := queryInt(r, "page", 1)
		perPage := queryInt(r, "per_page", 12)
		window := shop.TimeWindow(r.URL.Query().Get("window"))

		pager := pagination.New(pagination.Config[model.Order]{
			Collection: s.Store.Orders,
			Order:      store.Order{Key: "orderedAt", Direction: store.Descending},
			Filter:     shop.OrdersFilter(uc.identity.ID, window, time.Now()),
			PerPage:    perPage,
			Logger:     s.Logger,
		})
		defer pager.Close()

		if err = pager.Init(r.Context()); err != nil {
			s.Logger.Errorf("orderList: Error loading first page, err: %v, TraceID: %s", err, tid)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if page > 1 {
			if err = pager.LoadPage(r.Context(), page); err != nil {
				s.Logger.Errorf("orderList: Error loading page %d, err: %v, TraceID: %s", page, err, tid)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
		}

		s.writeJsonResponse(w, response{
			Orders:     pager.Items(),
			Page:       pager.CurrentPage(),
			Total:      pager.Total(),
			TotalPages: pager.TotalPages(),
			HasMore:    pager.HasMore(),
		}, http.StatusOK)
	}
}

func (s Server) orderCount() http.HandlerFunc {
	type response struct {
		Count int64 `json:"count"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("orderCount: Error getting UserContext, err: %v, TraceID: %s", err, tid)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		n, err := s.Shop.OrderCount(r.Context(), uc.identity.ID)
		if err != nil {
			s.writeShopError(w, "orderCount", err, tid)
			return
		}
		s.writeJsonResponse(w, response{Count: n}, http.StatusOK)
	}
}

func (s Server) orderPlace() http.HandlerFunc {
	type request struct {
		ProductID      string  `json:"product_id"`
		ProductName    string  `json:"product_name"`
		TotalPrice     float64 `json:"total_price"`
		ImageURL       string  `json:"imageUrl"`
		Description    string  `json:"description"`
		Quantity       int     `json:"quantity"`
		ArrivalDate    string  `json:"arrival_date"`
		ShippingOption string  `json:"shipping_option"`
		CartItemID     string  `json:"cart_item_id"`
	}
	type response struct {
		OrderID string `json:"order_id"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("orderPlace: Error getting UserContext, err: %v, TraceID: %s", err, tid)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		req := request{}
		if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("orderPlace: Error decoding JSON, err: %v, TraceID: %s", err, tid)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		orderID, err := s.Shop.PlaceOrder(r.Context(), shop.PlaceOrderParams{
			UserID:         uc.identity.ID,
			ProductID:      req.ProductID,
			ProductName:    req.ProductName,
			TotalPrice:     req.TotalPrice,
			ImageURL:       req.ImageURL,
			Description:    req.Description,
			Quantity:       req.Quantity,
			ArrivalDate:    req.ArrivalDate,
			ShippingOption: req.ShippingOption,
			CartItemID:     req.CartItemID,
		})
		if err != nil {
			s.writeShopError(w, "orderPlace", err, tid)
			return
		}
		s.writeJsonResponse(w, response{OrderID: orderID}, http.StatusCreated)
	}
}

func (s Server) orderReturn() http.HandlerFunc {
	type request struct {
		OrderID string `json:"order_id"`
	}
	type response struct {
		Success bool `json:"success"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID
		req := request{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("orderReturn: Error decoding JSON, err: %v, TraceID: %s", err, tid)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := s.Shop.ReturnOrder(r.Context(), req.OrderID); err != nil {
			s.writeShopError(w, "orderReturn", err, tid)
			return
		}
		s.writeJsonResponse(w, response{Success: true}, http.StatusOK)
	}
}
