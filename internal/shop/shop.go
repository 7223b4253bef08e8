// Package shop implements the application's mutation operations and the
// reads the presentation layer needs. Operations issue independent writes
// through the store boundary; composite operations perform them
// sequentially and never roll back on partial completion.
package shop

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"quickcart/internal/store"
)

// identityDeleter is the slice of the identity source that account
// deletion needs.
type identityDeleter interface {
	DeleteIdentity(ctx context.Context, id string) error
}

type Service struct {
	Store    *store.Store
	Identity identityDeleter
	Logger   logger
}

type logger interface {
	Debug(v ...any)
	Info(v ...any)
	Error(v ...any)
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Errorf(format string, v ...any)
}

// ValidationError is a caller-side rejection: missing required fields,
// insufficient stock, an expired return window. Nothing is written when
// one is returned.
type ValidationError struct {
	msg string
}

func (e ValidationError) Error() string { return e.msg }

func validationf(format string, v ...any) error {
	return ValidationError{msg: fmt.Sprintf(format, v...)}
}

func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}
