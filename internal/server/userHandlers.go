package server

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"quickcart/internal/identity"
)

func (s Server) userRegister() http.HandlerFunc {
	type request struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	type response struct {
		Success      bool   `json:"success"`
		SessionToken string `json:"session_token"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID
		req := request{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("userRegister: Error decoding JSON, err: %v, TraceID: %s", err, tid)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		ident, token, err := s.Identity.Register(r.Context(), req.Name, req.Email, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, identity.ErrEmailTaken):
				s.Logger.Debugf("userRegister: Email taken, err: %v, TraceID: %s", err, tid)
				http.Error(w, http.StatusText(http.StatusUnprocessableEntity), http.StatusUnprocessableEntity)
			case errors.Is(err, identity.ErrInvalidCredentials):
				s.Logger.Debugf("userRegister: Invalid email, err: %v, TraceID: %s", err, tid)
				http.Error(w, "Invalid email", http.StatusBadRequest)
			default:
				s.Logger.Errorf("userRegister: Error registering Account, err: %v, TraceID: %s", err, tid)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
			return
		}

		if err = s.Shop.AddUserInfo(r.Context(), ident.ID, ident.Email); err != nil {
			s.Logger.Errorf("userRegister: Account created but UserProfile insert failed for User with ID: %s, err: %v, TraceID: %s",
				ident.ID, err, tid)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{
			Success:      true,
			SessionToken: token,
		}, http.StatusCreated)
	}
}

func (s Server) userLogin() http.HandlerFunc {
	type request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	type response struct {
		SessionToken string `json:"session_token"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID
		req := request{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("userLogin: Error decoding JSON, err: %v, TraceID: %s", err, tid)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		_, token, err := s.Identity.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, identity.ErrInvalidCredentials) {
				s.Logger.Debugf("userLogin: Invalid credentials, err: %v, TraceID: %s", err, tid)
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			s.Logger.Errorf("userLogin: Error logging in, err: %v, TraceID: %s", err, tid)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{SessionToken: token}, http.StatusOK)
	}
}

func (s Server) userLogout() http.HandlerFunc {
	type response struct {
		Success bool `json:"success"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID
		if err := s.Identity.SignOut(r.Context()); err != nil {
			s.Logger.Errorf("userLogout: Error signing out, err: %v, TraceID: %s", err, tid)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{Success: true}, http.StatusOK)
	}
}

func (s Server) userInfo() http.HandlerFunc {
	type response struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("userInfo: Error getting UserContext, err: %v, TraceID: %s", err, tid)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{
			Name:  uc.identity.DisplayName,
			Email: uc.identity.Email,
		}, http.StatusOK)
	}
}

func (s Server) userDelete() http.HandlerFunc {
	type response struct {
		Success bool `json:"success"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("userDelete: Error getting UserContext, err: %v, TraceID: %s", err, tid)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if err = s.Shop.DeleteAccount(r.Context(), uc.identity.ID); err != nil {
			s.writeShopError(w, "userDelete", err, tid)
			return
		}
		s.writeJsonResponse(w, response{Success: true}, http.StatusOK)
	}
}
