// Package query turns typed search terms, sort choices and page requests into
// the minimum number of catalog fetches, and keeps the latest result page.
package query

import (
	"context"
	"errors"
	"sync"
	"time"

	"brandconsole/internal/catalog"
	"brandconsole/internal/logging"

	"go.uber.org/zap"
)

// ErrInactive is returned by operations that need an open picker.
var ErrInactive = errors.New("query: controller is not active")

// State is the query the controller issues.
type State struct {
	RawSearch string // what the search box shows
	Search    string // RawSearch after the debounce window
	Sort      catalog.SortOrder
	Page      int
}

// Snapshot is a consistent view of the controller for rendering.
type Snapshot struct {
	State   State
	Page    catalog.Page
	Loaded  bool // a page has been applied at least once
	Loading bool
	Err     error
	Active  bool
}

// FetchFunc performs one catalog query.
type FetchFunc func(ctx context.Context, st State) (catalog.Page, error)

// Products fetches paginated products from svc.
func Products(svc catalog.CatalogService, perPage int) FetchFunc {
	perPage = catalog.ClampPerPage(perPage, catalog.DefaultPageSize)
	return func(ctx context.Context, st State) (catalog.Page, error) {
		return svc.GetProducts(ctx, catalog.ProductQuery{
			Page:    st.Page,
			PerPage: perPage,
			Search:  st.Search,
			OrderBy: st.Sort.OrderBy(),
		})
	}
}

// Categories fetches categories from svc. The category listing is not
// paginated, so every result is a single page.
func Categories(svc catalog.CatalogService) FetchFunc {
	return func(ctx context.Context, st State) (catalog.Page, error) {
		list, err := svc.GetCategories(ctx, catalog.CategoryQuery{Name: st.Search})
		if err != nil {
			return catalog.Page{}, err
		}
		return catalog.SinglePage(list), nil
	}
}

// Option configures a Controller.
type Option func(*Controller)

// WithDebounce overrides the search debounce window.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) { c.debouncer = NewDebouncer(d) }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithOnChange registers a callback invoked after every observable change.
// It may be called from timer and fetch goroutines.
func WithOnChange(fn func(Snapshot)) Option {
	return func(c *Controller) { c.onChange = fn }
}

// Controller owns the search term, sort order and page of one picker. While
// active, every change of (Search, Sort, Page) issues a fetch; only the
// response to the most recently issued fetch is ever applied.
type Controller struct {
	fetch     FetchFunc
	debouncer *Debouncer
	logger    *zap.Logger
	onChange  func(Snapshot)

	mu      sync.Mutex
	state   State
	page    catalog.Page
	pageFor State // query the applied page answered
	loaded  bool
	loading bool
	err     error
	active  bool
	seq     uint64 // sequence of the latest issued fetch
	ctx     context.Context
	cancel  context.CancelFunc

	inflight sync.WaitGroup
}

type request struct {
	seq   uint64
	state State
	ctx   context.Context
}

// New returns an inactive controller positioned on page 1.
func New(fetch FetchFunc, opts ...Option) *Controller {
	c := &Controller{
		fetch:     fetch,
		debouncer: NewDebouncer(DefaultDebounce),
		logger:    logging.Get(logging.CategoryQuery),
		state:     State{Page: 1},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Activate marks the owning picker as open and fetches the current query.
// A term typed before the last Deactivate that never passed the debounce
// window is applied now, so the results match the search box.
// Fetches run under a context derived from ctx that Deactivate cancels.
func (c *Controller) Activate(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	c.mu.Lock()
	if c.active {
		c.mu.Unlock()
		return
	}
	c.active = true
	c.ctx, c.cancel = context.WithCancel(ctx)
	if c.state.Search != c.state.RawSearch {
		c.state.Search = c.state.RawSearch
		c.state.Page = 1
	}
	req := c.issueLocked()
	c.mu.Unlock()

	c.start(req)
	c.notify()
}

// Deactivate marks the picker as closed. Pending debounces are cancelled and
// any response still in flight is ignored when it arrives.
func (c *Controller) Deactivate() {
	c.debouncer.Cancel()

	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	c.active = false
	c.loading = false
	c.seq++
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.notify()
}

// SetSearchTerm updates the displayed term immediately and applies it as the
// query once the debounce window passes without another keystroke.
func (c *Controller) SetSearchTerm(term string) {
	c.mu.Lock()
	c.state.RawSearch = term
	c.mu.Unlock()

	c.notify()
	c.debouncer.Debounce(c.applySearch)
}

// FlushSearch applies the typed term now instead of waiting for the window.
func (c *Controller) FlushSearch() {
	c.debouncer.Immediate(c.applySearch)
}

// applySearch promotes the typed term to the query unless a later keystroke,
// Reset or Deactivate superseded debounce generation gen.
func (c *Controller) applySearch(gen uint64) {
	c.mu.Lock()
	term := c.state.RawSearch
	if !c.debouncer.Current(gen) || term == c.state.Search {
		c.mu.Unlock()
		return
	}
	c.state.Search = term
	c.state.Page = 1
	c.refetchLocked()
}

// SetSortOrder changes the sort order and refetches the current page.
func (c *Controller) SetSortOrder(o catalog.SortOrder) {
	c.mu.Lock()
	if o == c.state.Sort {
		c.mu.Unlock()
		return
	}
	c.state.Sort = o
	c.mu.Unlock()

	c.refetch()
}

// CycleSort moves to the next sort order.
func (c *Controller) CycleSort() {
	c.mu.Lock()
	next := c.state.Sort.Next()
	c.mu.Unlock()
	c.SetSortOrder(next)
}

// SetPage moves to page n, clamped to [1, lastPage] once the last page of the
// current search and sort order is known.
func (c *Controller) SetPage(n int) {
	c.movePage(func(int) int { return n })
}

// NextPage moves one page forward.
func (c *Controller) NextPage() {
	c.movePage(func(cur int) int { return cur + 1 })
}

// PrevPage moves one page back.
func (c *Controller) PrevPage() {
	c.movePage(func(cur int) int { return cur - 1 })
}

func (c *Controller) movePage(to func(cur int) int) {
	c.mu.Lock()
	n := to(c.state.Page)
	if c.lastPageKnownLocked() && n > c.page.Meta.LastPage {
		n = c.page.Meta.LastPage
	}
	if n < 1 {
		n = 1
	}
	if n == c.state.Page {
		c.mu.Unlock()
		return
	}
	c.state.Page = n
	c.mu.Unlock()

	c.refetch()
}

// Retry reissues the last query unchanged.
func (c *Controller) Retry() error {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return ErrInactive
	}
	req := c.issueLocked()
	c.mu.Unlock()

	c.start(req)
	c.notify()
	return nil
}

// Reset clears the search term and returns to page 1 without fetching, so the
// next Activate starts from a clean query.
func (c *Controller) Reset() {
	c.debouncer.Cancel()

	c.mu.Lock()
	c.state.RawSearch = ""
	c.state.Search = ""
	c.state.Page = 1
	c.mu.Unlock()

	c.notify()
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:   c.state,
		Page:    c.page,
		Loaded:  c.loaded,
		Loading: c.loading,
		Err:     c.err,
		Active:  c.active,
	}
}

// Wait blocks until every fetch started so far has returned.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

// Close deactivates the controller and waits for in-flight fetches.
func (c *Controller) Close() {
	c.Deactivate()
	c.Wait()
}

// lastPageKnownLocked reports whether the applied page answered the current
// search and sort order, so its last page bounds page moves.
func (c *Controller) lastPageKnownLocked() bool {
	return c.loaded && c.page.Meta.LastPage > 0 &&
		c.pageFor.Search == c.state.Search && c.pageFor.Sort == c.state.Sort
}

func (c *Controller) refetch() {
	c.mu.Lock()
	c.refetchLocked()
}

// refetchLocked issues a fetch for the current state. It is called with c.mu
// held and releases it, so the state change and the issued fetch are observed
// together.
func (c *Controller) refetchLocked() {
	if !c.active {
		c.mu.Unlock()
		c.notify()
		return
	}
	req := c.issueLocked()
	c.mu.Unlock()

	c.start(req)
	c.notify()
}

func (c *Controller) issueLocked() request {
	c.seq++
	c.inflight.Add(1)
	c.loading = true
	c.err = nil
	return request{seq: c.seq, state: c.state, ctx: c.ctx}
}

func (c *Controller) start(req request) {
	c.logger.Debug("fetch issued",
		zap.Uint64("seq", req.seq),
		zap.String("search", req.state.Search),
		zap.String("sort", string(req.state.Sort)),
		zap.Int("page", req.state.Page))

	go func() {
		defer c.inflight.Done()
		page, err := c.fetch(req.ctx, req.state)
		c.apply(req, page, err)
	}()
}

func (c *Controller) apply(req request, page catalog.Page, err error) {
	c.mu.Lock()
	if !c.active || req.seq != c.seq {
		latest := c.seq
		c.mu.Unlock()
		c.logger.Debug("stale response dropped", zap.Uint64("seq", req.seq), zap.Uint64("latest", latest))
		return
	}
	if err == nil && page.Meta.LastPage > 0 && req.state.Page > page.Meta.LastPage {
		// The result set shrank below the requested page; go to its last page
		// instead of showing an empty one.
		c.state.Page = page.Meta.LastPage
		c.logger.Debug("page past end, refetching",
			zap.Int("page", req.state.Page), zap.Int("last_page", page.Meta.LastPage))
		c.refetchLocked()
		return
	}
	c.loading = false
	if err != nil {
		c.err = err
	} else {
		c.page = page
		c.pageFor = req.state
		c.loaded = true
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("catalog fetch failed", zap.Uint64("seq", req.seq), zap.Error(err))
	}
	c.notify()
}

func (c *Controller) notify() {
	if c.onChange != nil {
		c.onChange(c.Snapshot())
	}
}
