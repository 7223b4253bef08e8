package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"quickcart/internal/model"
)

func TestQueryCursorChain(t *testing.T) {
	coll := NewMemoryCollection[model.Product]()
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		_, err := coll.Insert(ctx, model.Product{
			Name:      fmt.Sprintf("P%d", i),
			CreatedAt: primitive.NewDateTimeFromTime(base.Add(time.Duration(i) * time.Minute)),
		})
		require.NoError(t, err)
	}

	order := Order{Key: "createdAt", Direction: Descending}
	page1, err := coll.Query(ctx, Query{Order: order, Limit: 2})
	require.NoError(t, err)
	require.NotNil(t, page1.Next)
	assert.Equal(t, []string{"P4", "P3"}, names(page1.Items))

	page2, err := coll.Query(ctx, Query{Order: order, After: page1.Next, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"P2", "P1"}, names(page2.Items))

	page3, err := coll.Query(ctx, Query{Order: order, After: page2.Next, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"P0"}, names(page3.Items))
}

func TestQueryTiebreakOnEqualKeys(t *testing.T) {
	coll := NewMemoryCollection[model.Product]()
	ctx := context.Background()
	at := primitive.NewDateTimeFromTime(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

	for i := 0; i < 4; i++ {
		_, err := coll.Insert(ctx, model.Product{Name: fmt.Sprintf("P%d", i), CreatedAt: at})
		require.NoError(t, err)
	}

	order := Order{Key: "createdAt", Direction: Descending}
	var got []string
	var after *Cursor
	for {
		page, err := coll.Query(ctx, Query{Order: order, After: after, Limit: 3})
		require.NoError(t, err)
		if len(page.Items) == 0 {
			break
		}
		got = append(got, names(page.Items)...)
		after = page.Next
	}
	// Identical order keys fall back to the document ID, so the walk sees
	// each document exactly once.
	assert.Len(t, got, 4)
	seen := map[string]bool{}
	for _, n := range got {
		assert.False(t, seen[n], "duplicate %s", n)
		seen[n] = true
	}
}

func TestUpdatePushAppends(t *testing.T) {
	coll := NewMemoryCollection[model.Product]()
	ctx := context.Background()

	id, err := coll.Insert(ctx, model.Product{Name: "Mug", Reviews: []model.Review{}})
	require.NoError(t, err)

	require.NoError(t, coll.Update(ctx, id, Patch{"reviews": Push{Value: model.Review{ID: "r1", Rating: 5}}}))
	require.NoError(t, coll.Update(ctx, id, Patch{"reviews": Push{Value: model.Review{ID: "r2", Rating: 3}}}))

	p, err := coll.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, p.Reviews, 2)
	assert.Equal(t, "r1", p.Reviews[0].ID)
	assert.Equal(t, "r2", p.Reviews[1].ID)
}

func TestUpdateMissingDocument(t *testing.T) {
	coll := NewMemoryCollection[model.Product]()
	err := coll.Update(context.Background(), "missing", Patch{"name": "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWatchEmitsOnChange(t *testing.T) {
	coll := NewMemoryCollection[model.Product]()
	ctx := context.Background()

	_, err := coll.Insert(ctx, model.Product{Name: "Mug"})
	require.NoError(t, err)

	sub, err := coll.Watch(ctx, nil, Order{Key: "createdAt", Direction: Descending})
	require.NoError(t, err)
	defer sub.Close()

	// The current match set arrives without any further change.
	first := receive(t, sub.C)
	assert.Len(t, first, 1)

	_, err = coll.Insert(ctx, model.Product{Name: "Hat"})
	require.NoError(t, err)
	second := receive(t, sub.C)
	assert.Len(t, second, 2)
}

func TestSubscriptionCloseIsIdempotent(t *testing.T) {
	coll := NewMemoryCollection[model.Product]()
	sub, err := coll.Watch(context.Background(), nil, Order{})
	require.NoError(t, err)
	sub.Close()
	sub.Close()
}

func names(products []model.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Name
	}
	return out
}

func receive(t *testing.T, ch <-chan []model.Product) []model.Product {
	t.Helper()
	select {
	case items := <-ch:
		return items
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for emission")
		return nil
	}
}
