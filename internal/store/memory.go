package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"quickcart/internal/model"
)

// MemoryCollection is an in-process Collection used as the test double for
// the store boundary. Documents round-trip through bson so that filter,
// order and patch semantics line up with the Mongo implementation.
type MemoryCollection[T any] struct {
	mu      sync.Mutex
	docs    map[string]bson.M
	subs    map[int]*memorySub[T]
	nextSub int
}

type memorySub[T any] struct {
	filter Filter
	order  Order
	ch     chan []T
}

func NewMemoryCollection[T any]() *MemoryCollection[T] {
	return &MemoryCollection[T]{
		docs: map[string]bson.M{},
		subs: map[int]*memorySub[T]{},
	}
}

// NewMemoryStore builds a Store with in-memory collections for every
// collection the application uses.
func NewMemoryStore() *Store {
	return &Store{
		Products: NewMemoryCollection[model.Product](),
		Cart:     NewMemoryCollection[model.CartItem](),
		Orders:   NewMemoryCollection[model.Order](),
		Users:    NewMemoryCollection[model.UserProfile](),
	}
}

func (c *MemoryCollection[T]) Get(ctx context.Context, id string) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.docs[id]
	if !ok {
		var doc T
		return doc, errors.Wrapf(ErrNotFound, "id: %s", id)
	}
	return decodeDoc[T](m)
}

func (c *MemoryCollection[T]) Find(ctx context.Context, filter Filter) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var docs []T
	for _, m := range c.sortedMatches(filter, Order{}) {
		doc, err := decodeDoc[T](m)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (c *MemoryCollection[T]) Query(ctx context.Context, q Query) (Page[T], error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	matches := c.sortedMatches(q.Filter, q.Order)
	if q.After != nil {
		start := len(matches)
		for i, m := range matches {
			if sortedBefore(q.Order, q.After.Key, q.After.ID, m[q.Order.Key], docID(m)) {
				start = i
				break
			}
		}
		matches = matches[start:]
	}
	if q.Limit > 0 && len(matches) > q.Limit {
		matches = matches[:q.Limit]
	}

	page := Page[T]{}
	for _, m := range matches {
		doc, err := decodeDoc[T](m)
		if err != nil {
			return Page[T]{}, err
		}
		page.Items = append(page.Items, doc)
	}
	if len(matches) > 0 {
		last := matches[len(matches)-1]
		page.Next = &Cursor{Key: last[q.Order.Key], ID: docID(last)}
	}
	return page, nil
}

func (c *MemoryCollection[T]) Count(ctx context.Context, filter Filter) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	for _, m := range c.docs {
		if matches(m, filter) {
			n++
		}
	}
	return n, nil
}

func (c *MemoryCollection[T]) Watch(ctx context.Context, filter Filter, order Order) (*Subscription[T], error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sub := &memorySub[T]{filter: filter, order: order, ch: make(chan []T, 16)}
	id := c.nextSub
	c.nextSub++
	c.subs[id] = sub
	c.emit(sub)

	return NewSubscription(sub.ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if _, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub.ch)
		}
	}), nil
}

func (c *MemoryCollection[T]) Insert(ctx context.Context, doc T) (string, error) {
	m, err := encodeDoc(doc)
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	id := docID(m)
	if id == "" {
		id = primitive.NewObjectID().Hex()
		m["_id"] = id
	}
	c.docs[id] = m
	c.notify()
	return id, nil
}

func (c *MemoryCollection[T]) Update(ctx context.Context, id string, patch Patch) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.docs[id]
	if !ok {
		return errors.Wrapf(ErrNotFound, "id: %s", id)
	}
	for k, v := range patch {
		if push, ok := v.(Push); ok {
			arr, _ := m[k].(primitive.A)
			m[k] = append(arr, push.Value)
			continue
		}
		m[k] = v
	}
	c.notify()
	return nil
}

func (c *MemoryCollection[T]) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.docs, id)
	c.notify()
	return nil
}

// emit sends the current match set to one subscriber, dropping the oldest
// pending emission when the subscriber lags. Callers hold c.mu.
func (c *MemoryCollection[T]) emit(sub *memorySub[T]) {
	var items []T
	for _, m := range c.sortedMatches(sub.filter, sub.order) {
		doc, err := decodeDoc[T](m)
		if err != nil {
			continue
		}
		items = append(items, doc)
	}
	for {
		select {
		case sub.ch <- items:
			return
		default:
			select {
			case <-sub.ch:
			default:
			}
		}
	}
}

func (c *MemoryCollection[T]) notify() {
	for _, sub := range c.subs {
		c.emit(sub)
	}
}

func (c *MemoryCollection[T]) sortedMatches(filter Filter, order Order) []bson.M {
	var ms []bson.M
	for _, m := range c.docs {
		if matches(m, filter) {
			ms = append(ms, m)
		}
	}
	sort.Slice(ms, func(i, j int) bool {
		if order.Key != "" {
			return sortedBefore(order, ms[i][order.Key], docID(ms[i]), ms[j][order.Key], docID(ms[j]))
		}
		return docID(ms[i]) < docID(ms[j])
	})
	return ms
}

func matches(m bson.M, filter Filter) bool {
	for _, cond := range filter {
		cmp := compareValues(m[cond.Key], cond.Value)
		switch cond.Op {
		case OpEq:
			if cmp != 0 {
				return false
			}
		case OpGte:
			if cmp < 0 {
				return false
			}
		}
	}
	return true
}

func sortedBefore(order Order, k1 any, id1 string, k2 any, id2 string) bool {
	cmp := compareValues(k1, k2)
	if cmp == 0 {
		cmp = strings.Compare(id1, id2)
	}
	if order.Direction == Descending {
		return cmp > 0
	}
	return cmp < 0
}

// compareValues compares two bson-normalized scalars. Numbers (including
// primitive.DateTime) compare numerically, everything else as strings.
func compareValues(a any, b any) int {
	an, aIsNum := asNumber(a)
	bn, bIsNum := asNumber(b)
	if aIsNum && bIsNum {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		default:
			return 0
		}
	}
	as, aIsStr := a.(string)
	bs, bIsStr := b.(string)
	if aIsStr && bIsStr {
		return strings.Compare(as, bs)
	}
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}
	return 0
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case primitive.DateTime:
		return float64(n), true
	}
	return 0, false
}

func docID(m bson.M) string {
	id, _ := m["_id"].(string)
	return id
}

func decodeDoc[T any](m bson.M) (T, error) {
	var doc T
	raw, err := bson.Marshal(m)
	if err != nil {
		return doc, errors.Wrap(err, "error marshalling document")
	}
	if err = bson.Unmarshal(raw, &doc); err != nil {
		return doc, errors.Wrap(err, "error unmarshalling document")
	}
	return doc, nil
}

func encodeDoc[T any](doc T) (bson.M, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "error marshalling document")
	}
	var m bson.M
	if err = bson.Unmarshal(raw, &m); err != nil {
		return nil, errors.Wrap(err, "error unmarshalling document")
	}
	return m, nil
}
