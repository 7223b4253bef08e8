package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"quickcart/internal/misc"
	"quickcart/internal/model"
	"quickcart/internal/pagination"
	"quickcart/internal/store"
)

// searchResultWait bounds how long a list request waits for the first
// live-search emission before answering with what it has.
const searchResultWait = 5 * time.Second

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func (s Server) productList() http.HandlerFunc {
	type response struct {
		Products   []model.Product `json:"products"`
		Page       int             `json:"page"`
		Total      int64           `json:"total"`
		TotalPages int             `json:"total_pages"`
		HasMore    bool            `json:"has_more"`
		Searching  bool            `json:"searching"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID
		page := queryInt(r, "page", 1)
		perPage := queryInt(r, "per_page", 12)
		search := r.URL.Query().Get("search")
		if search != "" {
			s.Logger.Debugf("productList: Searching for %#v, page: %d, TraceID: %s",
				misc.StringLimit(search, 100), page, tid)
		}

		updated := make(chan struct{}, 1)
		pager := pagination.New(pagination.Config[model.Product]{
			Collection: s.Store.Products,
			Order:      store.Order{Key: "createdAt", Direction: store.Descending},
			PerPage:    perPage,
			SearchText: func(p model.Product) string { return p.Name },
			OnUpdate: func() {
				select {
				case updated <- struct{}{}:
				default:
				}
			},
			Logger: s.Logger,
		})
		defer pager.Close()

		if search != "" {
			if err := pager.Search(r.Context(), search); err != nil {
				s.Logger.Errorf("productList: Error starting search for %#v, err: %v, TraceID: %s", search, err, tid)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			select {
			case <-updated:
			case <-r.Context().Done():
				return
			case <-time.After(searchResultWait):
				s.Logger.Errorf("productList: Timed out waiting for search results for %#v, TraceID: %s", search, tid)
			}
			pager.GoToSearchPage(page)
		} else {
			if err := pager.Init(r.Context()); err != nil {
				s.Logger.Errorf("productList: Error loading first page, err: %v, TraceID: %s", err, tid)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			if page > 1 {
				if err := pager.LoadPage(r.Context(), page); err != nil {
					s.Logger.Errorf("productList: Error loading page %d, err: %v, TraceID: %s", page, err, tid)
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
			}
		}

		s.writeJsonResponse(w, response{
			Products:   pager.Items(),
			Page:       pager.CurrentPage(),
			Total:      pager.Total(),
			TotalPages: pager.TotalPages(),
			HasMore:    pager.HasMore(),
			Searching:  pager.Mode() == pagination.Searching,
		}, http.StatusOK)
	}
}

func (s Server) productGetOne() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID
		productID := mux.Vars(r)["productID"]
		p, err := s.Shop.GetProduct(r.Context(), productID)
		if err != nil {
			s.writeShopError(w, "productGetOne", err, tid)
			return
		}
		s.writeJsonResponse(w, p, http.StatusOK)
	}
}

func (s Server) productStock() http.HandlerFunc {
	type response struct {
		StockQuantity int `json:"stockQuantity"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID
		productID := mux.Vars(r)["productID"]
		stock, err := s.Shop.StockQuantity(r.Context(), productID)
		if err != nil {
			s.writeShopError(w, "productStock", err, tid)
			return
		}
		s.writeJsonResponse(w, response{StockQuantity: stock}, http.StatusOK)
	}
}

func (s Server) productAdd() http.HandlerFunc {
	type request struct {
		Name          string  `json:"name"`
		Price         float64 `json:"price"`
		ImageURL      string  `json:"imageUrl"`
		Category      string  `json:"category"`
		Description   string  `json:"description"`
		StockQuantity int     `json:"stockQuantity"`
	}
	type response struct {
		ProductID string `json:"product_id"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID
		req := request{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("productAdd: Error decoding JSON, err: %v, TraceID: %s", err, tid)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		id, err := s.Shop.AddProduct(r.Context(), model.Product{
			Name:          req.Name,
			Price:         req.Price,
			ImageURL:      req.ImageURL,
			Category:      req.Category,
			Description:   req.Description,
			StockQuantity: req.StockQuantity,
		})
		if err != nil {
			s.writeShopError(w, "productAdd", err, tid)
			return
		}
		s.writeJsonResponse(w, response{ProductID: id}, http.StatusCreated)
	}
}

func (s Server) productRemove() http.HandlerFunc {
	type request struct {
		ProductID string `json:"product_id"`
	}
	type response struct {
		Success bool `json:"success"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID
		req := request{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("productRemove: Error decoding JSON, err: %v, TraceID: %s", err, tid)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := s.Shop.DeleteProduct(r.Context(), req.ProductID); err != nil {
			s.writeShopError(w, "productRemove", err, tid)
			return
		}
		s.writeJsonResponse(w, response{Success: true}, http.StatusOK)
	}
}

func (s Server) reviewAdd() http.HandlerFunc {
	type request struct {
		ProductID  string `json:"product_id"`
		ReviewText string `json:"review_text"`
		Rating     int    `json:"rating"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("reviewAdd: Error getting UserContext, err: %v, TraceID: %s", err, tid)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		req := request{}
		if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("reviewAdd: Error decoding JSON, err: %v, TraceID: %s", err, tid)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		review, err := s.Shop.AddReview(r.Context(), req.ProductID, model.Review{
			UserID:     uc.identity.ID,
			UserName:   uc.identity.DisplayName,
			ReviewText: req.ReviewText,
			Rating:     req.Rating,
		})
		if err != nil {
			s.writeShopError(w, "reviewAdd", err, tid)
			return
		}
		s.writeJsonResponse(w, review, http.StatusCreated)
	}
}

func (s Server) reviewRemove() http.HandlerFunc {
	type request struct {
		ProductID string `json:"product_id"`
		ReviewID  string `json:"review_id"`
	}
	type response struct {
		Success bool `json:"success"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID
		req := request{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("reviewRemove: Error decoding JSON, err: %v, TraceID: %s", err, tid)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := s.Shop.DeleteReview(r.Context(), req.ProductID, req.ReviewID); err != nil {
			s.writeShopError(w, "reviewRemove", err, tid)
			return
		}
		s.writeJsonResponse(w, response{Success: true}, http.StatusOK)
	}
}
