package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (s Server) Router() *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/user/register", s.userRegister()).Methods(http.MethodPost)
	api.HandleFunc("/user/login", s.userLogin()).Methods(http.MethodPost)

	userAPI := api.PathPrefix("/user").Subrouter()
	userAPI.Use(s.authMw)
	userAPI.HandleFunc("/logout", s.userLogout()).Methods(http.MethodPost)
	userAPI.HandleFunc("/info", s.userInfo()).Methods(http.MethodGet)
	userAPI.HandleFunc("/delete", s.userDelete()).Methods(http.MethodPost)
	userAPI.PathPrefix("").Handler(s.notFoundHandler())

	productAPI := api.PathPrefix("/product").Subrouter()
	productAPI.HandleFunc("/list", s.productList()).Methods(http.MethodGet)
	productAPI.HandleFunc("/get/{productID}", s.productGetOne()).Methods(http.MethodGet)
	productAPI.HandleFunc("/stock/{productID}", s.productStock()).Methods(http.MethodGet)
	productAuthAPI := productAPI.NewRoute().Subrouter()
	productAuthAPI.Use(s.authMw)
	productAuthAPI.HandleFunc("/add", s.productAdd()).Methods(http.MethodPost)
	productAuthAPI.HandleFunc("/remove", s.productRemove()).Methods(http.MethodPost)
	productAuthAPI.HandleFunc("/review/add", s.reviewAdd()).Methods(http.MethodPost)
	productAuthAPI.HandleFunc("/review/remove", s.reviewRemove()).Methods(http.MethodPost)
	productAPI.PathPrefix("").Handler(s.notFoundHandler())

	cartAPI := api.PathPrefix("/cart").Subrouter()
	cartAPI.Use(s.authMw)
	cartAPI.HandleFunc("/list", s.cartList()).Methods(http.MethodGet)
	cartAPI.HandleFunc("/count", s.cartCount()).Methods(http.MethodGet)
	cartAPI.HandleFunc("/add", s.cartAdd()).Methods(http.MethodPost)
	cartAPI.HandleFunc("/remove", s.cartRemove()).Methods(http.MethodPost)
	cartAPI.PathPrefix("").Handler(s.notFoundHandler())

	orderAPI := api.PathPrefix("/order").Subrouter()
	orderAPI.Use(s.authMw)
	orderAPI.HandleFunc("/list", s.orderList()).Methods(http.MethodGet)
	orderAPI.HandleFunc("/count", s.orderCount()).Methods(http.MethodGet)
	orderAPI.HandleFunc("/place", s.orderPlace()).Methods(http.MethodPost)
	orderAPI.HandleFunc("/return", s.orderReturn()).Methods(http.MethodPost)
	orderAPI.PathPrefix("").Handler(s.notFoundHandler())

	dashboardAPI := api.PathPrefix("/dashboard").Subrouter()
	dashboardAPI.HandleFunc("/new-arrivals", s.dashboardNewArrivals()).Methods(http.MethodGet)
	dashboardAPI.HandleFunc("/top-rated", s.dashboardTopRated()).Methods(http.MethodGet)
	dashboardAPI.HandleFunc("/most-popular", s.dashboardMostPopular()).Methods(http.MethodGet)
	dashboardAuthAPI := dashboardAPI.NewRoute().Subrouter()
	dashboardAuthAPI.Use(s.authMw)
	dashboardAuthAPI.HandleFunc("/recently-viewed", s.recentlyViewedList()).Methods(http.MethodGet)
	dashboardAuthAPI.HandleFunc("/recently-viewed/add", s.recentlyViewedAdd()).Methods(http.MethodPost)
	dashboardAPI.PathPrefix("").Handler(s.notFoundHandler())

	r.Use(s.maxBytesMw, s.loggingMw)
	r.PathPrefix("").Handler(s.notFoundHandler())
	return r
}
