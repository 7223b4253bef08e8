package server

import (
	"encoding/json"
	"net/http"

	"quickcart/internal/catalog"
	"quickcart/internal/model"
)

func (s Server) dashboardNewArrivals() http.HandlerFunc {
	type response struct {
		Products []model.Product `json:"products"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID
		products, err := s.Catalog.NewArrivals(r.Context())
		if err != nil {
			s.Logger.Errorf("dashboardNewArrivals: err: %v, TraceID: %s", err, tid)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{Products: products}, http.StatusOK)
	}
}

func (s Server) dashboardTopRated() http.HandlerFunc {
	type response struct {
		Products []catalog.RatedProduct `json:"products"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID
		products, err := s.Catalog.TopRated(r.Context())
		if err != nil {
			s.Logger.Errorf("dashboardTopRated: err: %v, TraceID: %s", err, tid)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{Products: products}, http.StatusOK)
	}
}

func (s Server) dashboardMostPopular() http.HandlerFunc {
	type response struct {
		Products []catalog.PopularProduct `json:"products"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID
		products, err := s.Catalog.MostPopular(r.Context())
		if err != nil {
			s.Logger.Errorf("dashboardMostPopular: err: %v, TraceID: %s", err, tid)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{Products: products}, http.StatusOK)
	}
}

func (s Server) recentlyViewedList() http.HandlerFunc {
	type response struct {
		Products []model.Product `json:"products"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("recentlyViewedList: Error getting UserContext, err: %v, TraceID: %s", err, tid)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		products, err := s.Shop.RecentlyViewedProducts(r.Context(), uc.identity.ID)
		if err != nil {
			s.writeShopError(w, "recentlyViewedList", err, tid)
			return
		}
		s.writeJsonResponse(w, response{Products: products}, http.StatusOK)
	}
}

func (s Server) recentlyViewedAdd() http.HandlerFunc {
	type request struct {
		ProductID string `json:"product_id"`
	}
	type response struct {
		Success bool `json:"success"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("recentlyViewedAdd: Error getting UserContext, err: %v, TraceID: %s", err, tid)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		req := request{}
		if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("recentlyViewedAdd: Error decoding JSON, err: %v, TraceID: %s", err, tid)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err = s.Shop.AddRecentlyViewed(r.Context(), uc.identity.ID, req.ProductID); err != nil {
			s.writeShopError(w, "recentlyViewedAdd", err, tid)
			return
		}
		s.writeJsonResponse(w, response{Success: true}, http.StatusOK)
	}
}
