package server

import (
	"encoding/json"
	"net/http"

	"quickcart/internal/model"
)

func (s Server) cartList() http.HandlerFunc {
	type response struct {
		Items []model.CartItem `json:"items"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("cartList: Error getting UserContext, err: %v, TraceID: %s", err, tid)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		items, err := s.Shop.UserCart(r.Context(), uc.identity.ID)
		if err != nil {
			s.writeShopError(w, "cartList", err, tid)
			return
		}
		s.writeJsonResponse(w, response{Items: items}, http.StatusOK)
	}
}

func (s Server) cartCount() http.HandlerFunc {
	type response struct {
		Count int64 `json:"count"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("cartCount: Error getting UserContext, err: %v, TraceID: %s", err, tid)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		n, err := s.Shop.CartCount(r.Context(), uc.identity.ID)
		if err != nil {
			s.writeShopError(w, "cartCount", err, tid)
			return
		}
		s.writeJsonResponse(w, response{Count: n}, http.StatusOK)
	}
}

func (s Server) cartAdd() http.HandlerFunc {
	type request struct {
		ProductID   string  `json:"product_id"`
		Name        string  `json:"name"`
		Price       float64 `json:"price"`
		ImageURL    string  `json:"imageUrl"`
		Category    string  `json:"category"`
		Description string  `json:"description"`
	}
	type response struct {
		CartItemID string `json:"cart_item_id"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("cartAdd: Error getting UserContext, err: %v, TraceID: %s", err, tid)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		req := request{}
		if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("cartAdd: Error decoding JSON, err: %v, TraceID: %s", err, tid)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		id, err := s.Shop.AddToCart(r.Context(), model.CartItem{
			ProductID:   req.ProductID,
			UserID:      uc.identity.ID,
			Name:        req.Name,
			Price:       req.Price,
			ImageURL:    req.ImageURL,
			Category:    req.Category,
			Description: req.Description,
		})
		if err != nil {
			s.writeShopError(w, "cartAdd", err, tid)
			return
		}
		s.writeJsonResponse(w, response{CartItemID: id}, http.StatusCreated)
	}
}

func (s Server) cartRemove() http.HandlerFunc {
	type request struct {
		CartItemID string `json:"cart_item_id"`
	}
	type response struct {
		Success bool `json:"success"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID
		req := request{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("cartRemove: Error decoding JSON, err: %v, TraceID: %s", err, tid)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := s.Shop.DeleteFromCart(r.Context(), req.CartItemID); err != nil {
			s.writeShopError(w, "cartRemove", err, tid)
			return
		}
		s.writeJsonResponse(w, response{Success: true}, http.StatusOK)
	}
}
