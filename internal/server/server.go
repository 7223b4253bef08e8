package server

import (
	"quickcart/internal/catalog"
	"quickcart/internal/identity"
	"quickcart/internal/shop"
	"quickcart/internal/store"
)

type Server struct {
	Store    *store.Store
	Shop     shop.Service
	Catalog  catalog.Service
	Identity *identity.Service
	Logger   logger
}

type logger interface {
	Debug(v ...any)
	Info(v ...any)
	Error(v ...any)
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Errorf(format string, v ...any)
	Tracef(format string, v ...any)
}
