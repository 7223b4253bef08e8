package database

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"quickcart/internal/store"
)

// Collection implements store.Collection against a Mongo collection.
// Document IDs are hex strings so that user profiles can reuse the
// external identity ID as their _id.
type Collection[T any] struct {
	coll *mongo.Collection
}

func NewCollection[T any](db *mongo.Database, name string) Collection[T] {
	return Collection[T]{coll: db.Collection(name)}
}

func (c Collection[T]) Get(ctx context.Context, id string) (T, error) {
	var doc T
	err := c.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return doc, errors.Wrapf(store.ErrNotFound, "collection: %s, id: %s", c.coll.Name(), id)
		}
		return doc, unavailable(err, "error finding document in %s with ID: %s", c.coll.Name(), id)
	}
	return doc, nil
}

func (c Collection[T]) Find(ctx context.Context, filter store.Filter) ([]T, error) {
	var docs []T
	cur, err := c.coll.Find(ctx, filterToBson(filter))
	if err != nil {
		return nil, unavailable(err, "error getting cursor to find documents in %s", c.coll.Name())
	}
	if err = cur.All(ctx, &docs); err != nil {
		return nil, unavailable(err, "error getting documents from cursor in %s", c.coll.Name())
	}
	return docs, nil
}

func (c Collection[T]) Query(ctx context.Context, q store.Query) (store.Page[T], error) {
	filter := filterToBson(q.Filter)
	if q.After != nil {
		filter = bson.M{"$and": bson.A{filter, cursorFilter(q.Order, *q.After)}}
	}

	opts := options.Find().SetSort(bson.D{
		{Key: q.Order.Key, Value: int(q.Order.Direction)},
		{Key: "_id", Value: int(q.Order.Direction)},
	})
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cur, err := c.coll.Find(ctx, filter, opts)
	if err != nil {
		return store.Page[T]{}, unavailable(err, "error getting cursor for page query in %s", c.coll.Name())
	}
	var raws []bson.Raw
	if err = cur.All(ctx, &raws); err != nil {
		return store.Page[T]{}, unavailable(err, "error getting page documents from cursor in %s", c.coll.Name())
	}

	page := store.Page[T]{}
	for _, raw := range raws {
		var doc T
		if err = bson.Unmarshal(raw, &doc); err != nil {
			return store.Page[T]{}, errors.Wrapf(err, "error unmarshalling page document in %s", c.coll.Name())
		}
		page.Items = append(page.Items, doc)
	}
	if len(raws) > 0 {
		var last bson.M
		if err = bson.Unmarshal(raws[len(raws)-1], &last); err != nil {
			return store.Page[T]{}, errors.Wrapf(err, "error unmarshalling page cursor document in %s", c.coll.Name())
		}
		id, _ := last["_id"].(string)
		page.Next = &store.Cursor{Key: last[q.Order.Key], ID: id}
	}
	return page, nil
}

func (c Collection[T]) Count(ctx context.Context, filter store.Filter) (int64, error) {
	n, err := c.coll.CountDocuments(ctx, filterToBson(filter))
	if err != nil {
		return 0, unavailable(err, "error counting documents in %s", c.coll.Name())
	}
	return n, nil
}

// Watch opens a change stream and re-emits the full match set after every
// change, after one immediate emission of the current matches. The feed
// stays open until the subscription is closed or ctx is cancelled.
func (c Collection[T]) Watch(ctx context.Context, filter store.Filter, order store.Order) (*store.Subscription[T], error) {
	watchCtx, cancel := context.WithCancel(ctx)
	cs, err := c.coll.Watch(watchCtx, mongo.Pipeline{})
	if err != nil {
		cancel()
		return nil, unavailable(err, "error opening change stream on %s", c.coll.Name())
	}

	ch := make(chan []T, 16)
	go func() {
		defer close(ch)
		defer func() {
			_ = cs.Close(context.Background())
		}()

		emit := func() bool {
			items, err := c.findOrdered(watchCtx, filter, order)
			if err != nil {
				return true
			}
			select {
			case ch <- items:
			case <-watchCtx.Done():
				return false
			}
			return true
		}

		if !emit() {
			return
		}
		for cs.Next(watchCtx) {
			if !emit() {
				return
			}
		}
	}()

	return store.NewSubscription(ch, cancel), nil
}

func (c Collection[T]) Insert(ctx context.Context, doc T) (string, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return "", errors.Wrapf(err, "error marshalling document for %s", c.coll.Name())
	}
	var m bson.M
	if err = bson.Unmarshal(raw, &m); err != nil {
		return "", errors.Wrapf(err, "error unmarshalling document for %s", c.coll.Name())
	}
	id, _ := m["_id"].(string)
	if id == "" {
		id = primitive.NewObjectID().Hex()
		m["_id"] = id
	}
	if _, err = c.coll.InsertOne(ctx, m); err != nil {
		return "", unavailable(err, "error inserting document into %s", c.coll.Name())
	}
	return id, nil
}

func (c Collection[T]) Update(ctx context.Context, id string, patch store.Patch) error {
	set := bson.M{}
	push := bson.M{}
	for k, v := range patch {
		if p, ok := v.(store.Push); ok {
			push[k] = p.Value
			continue
		}
		set[k] = v
	}
	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(push) > 0 {
		update["$push"] = push
	}

	res, err := c.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return unavailable(err, "error updating document in %s with ID: %s", c.coll.Name(), id)
	}
	if res.MatchedCount == 0 {
		return errors.Wrapf(store.ErrNotFound, "collection: %s, id: %s", c.coll.Name(), id)
	}
	return nil
}

func (c Collection[T]) Delete(ctx context.Context, id string) error {
	if _, err := c.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return unavailable(err, "error deleting document from %s with ID: %s", c.coll.Name(), id)
	}
	return nil
}

func (c Collection[T]) findOrdered(ctx context.Context, filter store.Filter, order store.Order) ([]T, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: order.Key, Value: int(order.Direction)},
		{Key: "_id", Value: int(order.Direction)},
	})
	cur, err := c.coll.Find(ctx, filterToBson(filter), opts)
	if err != nil {
		return nil, err
	}
	var docs []T
	if err = cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func filterToBson(filter store.Filter) bson.M {
	m := bson.M{}
	for _, cond := range filter {
		switch cond.Op {
		case store.OpEq:
			m[cond.Key] = cond.Value
		case store.OpGte:
			m[cond.Key] = bson.M{"$gte": cond.Value}
		}
	}
	return m
}

// cursorFilter selects documents strictly after the cursor position in
// (orderKey, _id) order.
func cursorFilter(order store.Order, after store.Cursor) bson.M {
	op := "$gt"
	if order.Direction == store.Descending {
		op = "$lt"
	}
	return bson.M{"$or": bson.A{
		bson.M{order.Key: bson.M{op: after.Key}},
		bson.M{order.Key: after.Key, "_id": bson.M{op: after.ID}},
	}}
}

func unavailable(err error, format string, args ...any) error {
	return errors.WithMessagef(store.ErrUnavailable, format+", err: %v", append(args, err)...)
}
