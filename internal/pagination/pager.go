// Package pagination implements cursor-based paging over an ordered store
// collection, with a parallel search mode that swaps the data source from
// cursor-paged queries to a live-subscribed, client-filtered full set.
package pagination

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"quickcart/internal/misc"
	"quickcart/internal/store"
)

type Mode int

const (
	Paged Mode = iota
	Searching
)

type logger interface {
	Debugf(format string, v ...any)
	Errorf(format string, v ...any)
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...any) {}
func (noopLogger) Errorf(string, ...any) {}

// Config describes one paged view over a collection. Filter and Order are
// fixed for the lifetime of the pager; changing either invalidates every
// cursor the pager holds, so callers build a new pager instead.
type Config[T any] struct {
	Collection store.Collection[T]
	Order      store.Order
	Filter     store.Filter
	PerPage    int
	// SearchText extracts the text that search mode matches against,
	// case-insensitively.
	SearchText func(T) string
	// OnUpdate, when set, is called after a search emission changes the
	// result set. It runs on the subscription goroutine.
	OnUpdate func()
	Logger   logger
}

// Pager owns its cursor chain and result buffer; instances share nothing.
// Methods serialize on an internal mutex, so overlapping calls from rapid
// user interaction are applied in arrival order, last writer wins.
type Pager[T any] struct {
	coll       store.Collection[T]
	order      store.Order
	filter     store.Filter
	perPage    int
	searchText func(T) string
	onUpdate   func()
	logger     logger

	mu      sync.Mutex
	mode    Mode
	loading bool

	items   []T
	cursors []store.Cursor
	page    int
	total   int64
	hasMore bool

	term       string
	snapshot   []T
	results    []T
	searchPage int
	sub        *store.Subscription[T]
}

func New[T any](cfg Config[T]) *Pager[T] {
	if cfg.PerPage <= 0 {
		cfg.PerPage = 12
	}
	if cfg.Logger == nil {
		cfg.Logger = noopLogger{}
	}
	return &Pager[T]{
		coll:       cfg.Collection,
		order:      cfg.Order,
		filter:     cfg.Filter,
		perPage:    cfg.PerPage,
		searchText: cfg.SearchText,
		onUpdate:   cfg.OnUpdate,
		logger:     cfg.Logger,
		page:       1,
		searchPage: 1,
	}
}

// Init resets the pager to page 1: one count plus the first page query.
func (p *Pager[T]) Init(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loading = true

	total, err := p.coll.Count(ctx, p.filter)
	if err != nil {
		p.clearOnFailure()
		return errors.WithMessage(err, "pagination: error counting documents")
	}
	p.total = total

	page, err := p.coll.Query(ctx, store.Query{
		Filter: p.filter,
		Order:  p.order,
		Limit:  p.perPage,
	})
	if err != nil {
		p.clearOnFailure()
		return errors.WithMessage(err, "pagination: error querying first page")
	}

	p.items = page.Items
	p.cursors = nil
	if page.Next != nil {
		p.cursors = []store.Cursor{*page.Next}
	}
	p.page = 1
	p.hasMore = len(page.Items) == p.perPage
	p.loading = false
	return nil
}

// LoadNextPage advances one page from the last held cursor. It silently
// returns when there is nothing more to load, no cursor is held, or the
// pager is in search mode.
func (p *Pager[T]) LoadNextPage(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mode == Searching || !p.hasMore || len(p.cursors) == 0 {
		return nil
	}
	p.loading = true

	after := p.cursors[len(p.cursors)-1]
	page, err := p.coll.Query(ctx, store.Query{
		Filter: p.filter,
		Order:  p.order,
		After:  &after,
		Limit:  p.perPage,
	})
	if err != nil {
		p.clearOnFailure()
		return errors.WithMessage(err, "pagination: error querying next page")
	}

	p.items = page.Items
	if page.Next != nil {
		p.cursors = append(p.cursors, *page.Next)
	}
	p.page++
	p.hasMore = len(page.Items) == p.perPage
	p.loading = false
	return nil
}

// LoadPage jumps to page n. For n > 1 the cursor is reconstructed with a
// single (n-1)*perPage prefix query ordered identically; when the prefix
// comes back short the page is unreachable and the call backs off without
// changing state. Out-of-range n is a no-op.
func (p *Pager[T]) LoadPage(ctx context.Context, n int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mode == Searching || n <= 0 || n > totalPages(p.total, p.perPage) {
		return nil
	}
	p.loading = true

	if n == 1 {
		page, err := p.coll.Query(ctx, store.Query{
			Filter: p.filter,
			Order:  p.order,
			Limit:  p.perPage,
		})
		if err != nil {
			p.clearOnFailure()
			return errors.WithMessage(err, "pagination: error querying page 1")
		}
		p.items = page.Items
		p.cursors = nil
		if page.Next != nil {
			p.cursors = []store.Cursor{*page.Next}
		}
		p.page = 1
		p.hasMore = len(page.Items) == p.perPage && int64(len(page.Items)) < p.total
		p.loading = false
		return nil
	}

	prefixCount := (n - 1) * p.perPage
	prefix, err := p.coll.Query(ctx, store.Query{
		Filter: p.filter,
		Order:  p.order,
		Limit:  prefixCount,
	})
	if err != nil {
		p.clearOnFailure()
		return errors.WithMessagef(err, "pagination: error querying prefix for page %d", n)
	}
	if len(prefix.Items) < prefixCount || prefix.Next == nil {
		// Not enough documents to reach this page.
		p.logger.Debugf("pagination: page %d unreachable, prefix returned %d of %d documents",
			n, len(prefix.Items), prefixCount)
		p.loading = false
		return nil
	}

	page, err := p.coll.Query(ctx, store.Query{
		Filter: p.filter,
		Order:  p.order,
		After:  prefix.Next,
		Limit:  p.perPage,
	})
	if err != nil {
		p.clearOnFailure()
		return errors.WithMessagef(err, "pagination: error querying page %d", n)
	}

	p.items = page.Items
	p.cursors = []store.Cursor{*prefix.Next}
	if page.Next != nil {
		p.cursors = append(p.cursors, *page.Next)
	}
	p.page = n
	p.hasMore = len(page.Items) == p.perPage && int64(n*p.perPage) < p.total
	p.loading = false
	return nil
}

// Search switches the pager into search mode for term, opening the live
// subscription on first use. An empty term leaves search mode. Changing
// the term refilters the latest snapshot and resets the search page to 1.
func (p *Pager[T]) Search(ctx context.Context, term string) error {
	if term == "" {
		p.ExitSearch()
		return nil
	}

	p.mu.Lock()
	p.mode = Searching
	p.term = term
	p.searchPage = 1
	p.results = filterBySearchText(p.snapshot, p.searchText, term)
	needSub := p.sub == nil
	p.mu.Unlock()

	if !needSub {
		return nil
	}

	sub, err := p.coll.Watch(ctx, nil, p.order)
	if err != nil {
		p.mu.Lock()
		p.clearOnFailure()
		p.mu.Unlock()
		return errors.WithMessage(err, "pagination: error subscribing for search")
	}

	p.mu.Lock()
	if p.mode != Searching {
		// Search was exited while the subscription was being opened.
		p.mu.Unlock()
		sub.Close()
		return nil
	}
	p.sub = sub
	p.mu.Unlock()

	go func() {
		for snapshot := range sub.C {
			p.applySnapshot(snapshot)
		}
	}()
	return nil
}

// ExitSearch closes the subscription, discards the search results and
// returns to the last paged state.
func (p *Pager[T]) ExitSearch() {
	p.mu.Lock()
	sub := p.sub
	p.sub = nil
	p.mode = Paged
	p.term = ""
	p.snapshot = nil
	p.results = nil
	p.searchPage = 1
	p.mu.Unlock()

	if sub != nil {
		sub.Close()
	}
}

// Close releases the live subscription when the owning context goes away.
func (p *Pager[T]) Close() {
	p.ExitSearch()
}

// GoToSearchPage selects a page of the current search results.
// Out-of-range pages are a no-op.
func (p *Pager[T]) GoToSearchPage(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n <= 0 || n > totalPages(int64(len(p.results)), p.perPage) {
		return
	}
	p.searchPage = n
}

// Items returns the current page: the cursor-paged page in paged mode, a
// client-side slice of the filtered results in search mode.
func (p *Pager[T]) Items() []T {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mode == Searching {
		start := (p.searchPage - 1) * p.perPage
		if start >= len(p.results) {
			return nil
		}
		end := misc.Min(start+p.perPage, len(p.results))
		return append([]T{}, p.results[start:end]...)
	}
	return append([]T{}, p.items...)
}

func (p *Pager[T]) Mode() Mode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode
}

func (p *Pager[T]) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

func (p *Pager[T]) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasMore
}

// CurrentPage is the paged-mode page counter, or the separate search page
// counter while searching.
func (p *Pager[T]) CurrentPage() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mode == Searching {
		return p.searchPage
	}
	return p.page
}

// Total is the count of the effective data set: the stored count in paged
// mode, the live search result count while searching.
func (p *Pager[T]) Total() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mode == Searching {
		return int64(len(p.results))
	}
	return p.total
}

func (p *Pager[T]) TotalPages() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mode == Searching {
		return totalPages(int64(len(p.results)), p.perPage)
	}
	return totalPages(p.total, p.perPage)
}

func (p *Pager[T]) applySnapshot(snapshot []T) {
	p.mu.Lock()
	if p.mode != Searching {
		// A late emission after search mode was exited; drop it.
		p.mu.Unlock()
		return
	}
	p.snapshot = snapshot
	p.results = filterBySearchText(snapshot, p.searchText, p.term)
	p.loading = false
	onUpdate := p.onUpdate
	p.mu.Unlock()

	if onUpdate != nil {
		onUpdate()
	}
}

// clearOnFailure applies the query-failure state: empty items, loading
// cleared. Callers hold p.mu.
func (p *Pager[T]) clearOnFailure() {
	p.items = nil
	p.loading = false
}

func filterBySearchText[T any](items []T, searchText func(T) string, term string) []T {
	if searchText == nil {
		return append([]T{}, items...)
	}
	lowerTerm := strings.ToLower(term)
	var filtered []T
	for _, item := range items {
		if strings.Contains(strings.ToLower(searchText(item)), lowerTerm) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

func totalPages(total int64, perPage int) int {
	if total <= 0 {
		return 0
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}
