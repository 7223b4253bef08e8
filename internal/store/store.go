// Package store defines the ordered document store boundary. Everything
// that reads or writes persisted state goes through a Collection, so the
// Mongo-backed implementation in internal/database and the in-memory one
// used by tests are interchangeable.
package store

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"quickcart/internal/model"
)

// ErrNotFound is returned when an ID does not resolve to a document.
var ErrNotFound = errors.New("document not found")

// ErrUnavailable is returned for transient backend failures. Callers abort
// the current operation and leave prior state unchanged; nothing retries.
var ErrUnavailable = errors.New("store unavailable")

type Direction int

const (
	Ascending  Direction = 1
	Descending Direction = -1
)

// Order is the single sort key of an ordered query. Document ID is always
// the implicit tiebreak so that cursors identify a unique position.
type Order struct {
	Key       string
	Direction Direction
}

type Op int

const (
	OpEq Op = iota
	OpGte
)

type Cond struct {
	Key   string
	Op    Op
	Value any
}

// Filter is a conjunction of conditions. An empty Filter matches all
// documents in the collection.
type Filter []Cond

func Eq(key string, value any) Cond  { return Cond{Key: key, Op: OpEq, Value: value} }
func Gte(key string, value any) Cond { return Cond{Key: key, Op: OpGte, Value: value} }

// Cursor marks the last document returned by an ordered query. It is only
// valid for the filter and order it was produced from.
type Cursor struct {
	Key any
	ID  string
}

type Query struct {
	Filter Filter
	Order  Order
	After  *Cursor
	Limit  int
}

type Page[T any] struct {
	Items []T
	Next  *Cursor
}

// Patch is a merge-patch: listed fields are set, everything else is kept.
// A Push value appends to an array field instead of replacing it.
type Patch map[string]any

// Push appends Value to the targeted array field within a single patch,
// without a prior read.
type Push struct {
	Value any
}

// Subscription is a live feed over a collection. C carries the full match
// set: once immediately on creation, then again after every change to a
// matching document. Close releases the feed; it is safe to call more than
// once.
type Subscription[T any] struct {
	C         <-chan []T
	closeOnce sync.Once
	closeFn   func()
}

func (s *Subscription[T]) Close() {
	s.closeOnce.Do(s.closeFn)
}

func NewSubscription[T any](c <-chan []T, closeFn func()) *Subscription[T] {
	return &Subscription[T]{C: c, closeFn: closeFn}
}

type Collection[T any] interface {
	Get(ctx context.Context, id string) (T, error)
	Find(ctx context.Context, filter Filter) ([]T, error)
	Query(ctx context.Context, q Query) (Page[T], error)
	Count(ctx context.Context, filter Filter) (int64, error)
	Watch(ctx context.Context, filter Filter, order Order) (*Subscription[T], error)
	Insert(ctx context.Context, doc T) (id string, err error)
	Update(ctx context.Context, id string, patch Patch) error
	Delete(ctx context.Context, id string) error
}

// Store bundles the typed collections of the application. Writes to
// different collections are independent; composite operations tolerate
// partial completion.
type Store struct {
	Products Collection[model.Product]
	Cart     Collection[model.CartItem]
	Orders   Collection[model.Order]
	Users    Collection[model.UserProfile]
}
