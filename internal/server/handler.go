package server

import (
	"encoding/json"
	"net/http"

	"quickcart/internal/shop"
	"quickcart/internal/store"

	"github.com/pkg/errors"
)

func (s Server) writeJsonResponse(w http.ResponseWriter, response any, statusCode int) {
	if resp, err := json.Marshal(response); err != nil {
		s.Logger.Errorf("Error encoding response: %+v, err: %v", response, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	} else {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(statusCode)
		if _, err = w.Write(resp); err != nil {
			s.Logger.Errorf("Error writing JSON response: %s, err: %v", resp, err)
		}
	}
}

// writeShopError maps service errors to status codes: validation
// rejections are 422, missing documents 404, everything else 500.
func (s Server) writeShopError(w http.ResponseWriter, op string, err error, traceID string) {
	switch {
	case shop.IsValidationError(err):
		s.Logger.Debugf("%s: Rejected, err: %v, TraceID: %s", op, err, traceID)
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, store.ErrNotFound):
		s.Logger.Debugf("%s: Not found, err: %v, TraceID: %s", op, err, traceID)
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	default:
		s.Logger.Errorf("%s: err: %v, TraceID: %s", op, err, traceID)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (s Server) notFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc := getTraceContext(r.Context())
		s.Logger.Debugf("notFoundHandler: Requested resource not found, TraceID: %s", tc.traceID)
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	}
}
