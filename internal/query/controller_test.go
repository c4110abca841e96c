package query

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"brandconsole/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWindow = 40 * time.Millisecond

// recorder is a FetchFunc that logs every issued query and answers with a
// page naming the query it answers.
type recorder struct {
	mu       sync.Mutex
	calls    []State
	lastPage int
	fail     error
	block    map[catalog.SortOrder]chan struct{}
}

func (r *recorder) fetch(ctx context.Context, st State) (catalog.Page, error) {
	r.mu.Lock()
	r.calls = append(r.calls, st)
	fail := r.fail
	wait := r.block[st.Sort]
	lastPage := r.lastPage
	r.mu.Unlock()

	if wait != nil {
		select {
		case <-wait:
		case <-ctx.Done():
			return catalog.Page{}, ctx.Err()
		}
	}
	if fail != nil {
		return catalog.Page{}, fail
	}
	if lastPage == 0 {
		lastPage = 5
	}
	return catalog.Page{
		Items: []catalog.DisplayRecord{{ID: st.Search + "|" + string(st.Sort), Type: catalog.TypeProduct}},
		Meta:  catalog.Meta{CurrentPage: st.Page, LastPage: lastPage, TotalItems: lastPage * 10},
	}, nil
}

func (r *recorder) snapshotCalls() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.calls...)
}

func (r *recorder) setFail(err error) {
	r.mu.Lock()
	r.fail = err
	r.mu.Unlock()
}

func (r *recorder) setBlock(o catalog.SortOrder, ch chan struct{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.block == nil {
		r.block = make(map[catalog.SortOrder]chan struct{})
	}
	r.block[o] = ch
}

func (r *recorder) setLastPage(n int) {
	r.mu.Lock()
	r.lastPage = n
	r.mu.Unlock()
}

func newController(t *testing.T, r *recorder) *Controller {
	t.Helper()
	c := New(r.fetch, WithDebounce(testWindow))
	t.Cleanup(c.Close)
	return c
}

func TestController_ActivateFetchesFirstPage(t *testing.T) {
	r := &recorder{}
	c := newController(t, r)

	c.Activate(context.Background())
	c.Wait()

	snap := c.Snapshot()
	assert.True(t, snap.Active)
	assert.True(t, snap.Loaded)
	assert.False(t, snap.Loading)
	assert.Equal(t, 1, snap.Page.Meta.CurrentPage)
	require.Len(t, r.snapshotCalls(), 1)
}

func TestController_DebounceCollapsesKeystrokes(t *testing.T) {
	r := &recorder{}
	c := newController(t, r)
	c.Activate(context.Background())
	c.Wait()

	c.SetSearchTerm("a")
	c.SetSearchTerm("ab")
	c.SetSearchTerm("abc")
	assert.Equal(t, "abc", c.Snapshot().State.RawSearch)
	assert.Equal(t, "", c.Snapshot().State.Search, "debounced term lags the raw term")

	time.Sleep(3 * testWindow)
	c.Wait()

	var searches []string
	for _, call := range r.snapshotCalls() {
		if call.Search != "" {
			searches = append(searches, call.Search)
		}
	}
	assert.Equal(t, []string{"abc"}, searches)
	assert.Equal(t, "abc", c.Snapshot().State.Search)
}

func TestController_SearchResetsPage(t *testing.T) {
	r := &recorder{}
	c := newController(t, r)
	c.Activate(context.Background())
	c.Wait()

	c.SetPage(3)
	c.Wait()
	require.Equal(t, 3, c.Snapshot().State.Page)

	c.SetSearchTerm("camisa")
	time.Sleep(3 * testWindow)
	c.Wait()

	calls := r.snapshotCalls()
	last := calls[len(calls)-1]
	assert.Equal(t, "camisa", last.Search)
	assert.Equal(t, 1, last.Page)
}

func TestController_SortKeepsPageAndSearch(t *testing.T) {
	r := &recorder{}
	c := newController(t, r)
	c.Activate(context.Background())
	c.Wait()

	c.SetSearchTerm("tenis")
	c.FlushSearch()
	c.Wait()
	c.SetPage(2)
	c.Wait()

	c.SetSortOrder(catalog.SortDesc)
	c.Wait()

	st := c.Snapshot().State
	assert.Equal(t, "tenis", st.Search)
	assert.Equal(t, 2, st.Page)
	assert.Equal(t, catalog.SortDesc, st.Sort)

	before := len(r.snapshotCalls())
	c.SetSortOrder(catalog.SortDesc)
	c.Wait()
	assert.Equal(t, before, len(r.snapshotCalls()), "unchanged sort must not refetch")
}

func TestController_PageClampedToLastPage(t *testing.T) {
	r := &recorder{lastPage: 2}
	c := newController(t, r)
	c.Activate(context.Background())
	c.Wait()

	c.SetPage(9)
	c.Wait()
	assert.Equal(t, 2, c.Snapshot().State.Page)

	c.NextPage()
	c.Wait()
	assert.Equal(t, 2, c.Snapshot().State.Page)

	c.SetPage(0)
	c.Wait()
	assert.Equal(t, 1, c.Snapshot().State.Page)

	c.PrevPage()
	c.Wait()
	assert.Len(t, r.snapshotCalls(), 3, "initial, page 2 and page 1 only")
}

func TestController_StaleResponseDropped(t *testing.T) {
	release := make(chan struct{})
	r := &recorder{block: map[catalog.SortOrder]chan struct{}{catalog.SortAsc: release}}
	c := newController(t, r)
	c.Activate(context.Background())
	c.Wait()

	c.SetSortOrder(catalog.SortAsc)  // slow
	c.SetSortOrder(catalog.SortDesc) // fast, issued last
	require.Eventually(t, func() bool {
		return !c.Snapshot().Loading
	}, time.Second, 5*time.Millisecond)

	close(release)
	c.Wait()

	snap := c.Snapshot()
	require.Len(t, snap.Page.Items, 1)
	assert.Equal(t, "|desc", snap.Page.Items[0].ID)
	assert.Equal(t, catalog.SortDesc, snap.State.Sort)
}

func TestController_FailureKeepsPreviousPage(t *testing.T) {
	r := &recorder{}
	c := newController(t, r)
	c.Activate(context.Background())
	c.Wait()
	before := c.Snapshot().Page

	boom := errors.New("catalog unavailable")
	r.setFail(boom)
	c.NextPage()
	c.Wait()

	snap := c.Snapshot()
	assert.ErrorIs(t, snap.Err, boom)
	assert.Equal(t, before, snap.Page)
	assert.Equal(t, 2, snap.State.Page)

	r.setFail(nil)
	require.NoError(t, c.Retry())
	c.Wait()

	snap = c.Snapshot()
	assert.NoError(t, snap.Err)
	assert.Equal(t, 2, snap.Page.Meta.CurrentPage)
	calls := r.snapshotCalls()
	assert.Equal(t, calls[len(calls)-2], calls[len(calls)-1], "retry reissues the same query")
}

func TestController_DeactivateIgnoresLateResponse(t *testing.T) {
	release := make(chan struct{})
	r := &recorder{block: map[catalog.SortOrder]chan struct{}{catalog.SortAsc: release}}
	c := newController(t, r)
	c.Activate(context.Background())
	c.Wait()
	before := c.Snapshot().Page

	c.SetSortOrder(catalog.SortAsc)
	c.Deactivate()
	c.Wait()
	close(release)

	snap := c.Snapshot()
	assert.False(t, snap.Active)
	assert.False(t, snap.Loading)
	assert.NoError(t, snap.Err)
	assert.Equal(t, before, snap.Page)
	assert.ErrorIs(t, c.Retry(), ErrInactive)
}

func TestController_DeactivateCancelsPendingSearch(t *testing.T) {
	r := &recorder{}
	c := newController(t, r)
	c.Activate(context.Background())
	c.Wait()

	c.SetSearchTerm("bolsa")
	c.Deactivate()
	time.Sleep(3 * testWindow)
	c.Wait()

	assert.Len(t, r.snapshotCalls(), 1)
	assert.Equal(t, "", c.Snapshot().State.Search)
}

func TestController_ReopenAppliesPendingSearch(t *testing.T) {
	r := &recorder{}
	c := newController(t, r)
	c.Activate(context.Background())
	c.Wait()

	// Confirmed inside the debounce window: the term never reached the query.
	c.SetSearchTerm("abc")
	c.Deactivate()
	c.Activate(context.Background())
	c.Wait()

	st := c.Snapshot().State
	assert.Equal(t, "abc", st.RawSearch)
	assert.Equal(t, "abc", st.Search)
	calls := r.snapshotCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, "abc", calls[1].Search)
	assert.Equal(t, 1, calls[1].Page)

	time.Sleep(3 * testWindow)
	c.Wait()
	assert.Len(t, r.snapshotCalls(), 2, "no fetch left scheduled")
}

func TestController_PageMoveDuringNewSearch(t *testing.T) {
	r := &recorder{lastPage: 5}
	c := newController(t, r)
	c.Activate(context.Background())
	c.Wait()

	release := make(chan struct{})
	r.setBlock(catalog.SortNone, release)
	r.setLastPage(1)
	c.SetSearchTerm("x")
	c.FlushSearch()

	// The loaded page's last page belongs to the previous search.
	c.NextPage()
	close(release)
	c.Wait()

	snap := c.Snapshot()
	assert.Equal(t, 1, snap.State.Page)
	assert.False(t, snap.Loading)
	assert.Equal(t, 1, snap.Page.Meta.CurrentPage)
	require.Len(t, snap.Page.Items, 1)
	assert.Equal(t, "x|", snap.Page.Items[0].ID)
}

func TestController_ResetClearsQuery(t *testing.T) {
	r := &recorder{}
	c := newController(t, r)
	c.Activate(context.Background())
	c.Wait()
	c.SetSearchTerm("relogio")
	c.FlushSearch()
	c.Wait()
	c.NextPage()
	c.Wait()

	c.Deactivate()
	c.Reset()

	st := c.Snapshot().State
	assert.Equal(t, State{Page: 1}, st)

	c.Activate(context.Background())
	c.Wait()
	calls := r.snapshotCalls()
	assert.Equal(t, State{Page: 1}, calls[len(calls)-1])
}

func TestController_OnChangeObservesLoading(t *testing.T) {
	var mu sync.Mutex
	var sawLoading bool
	r := &recorder{}
	c := New(r.fetch, WithDebounce(testWindow), WithOnChange(func(s Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		if s.Loading {
			sawLoading = true
		}
	}))
	t.Cleanup(c.Close)

	c.Activate(context.Background())
	c.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, sawLoading)
}

type fakeCatalog struct {
	productQueries []catalog.ProductQuery
	categoryNames  []string
}

func (f *fakeCatalog) GetProducts(_ context.Context, q catalog.ProductQuery) (catalog.Page, error) {
	f.productQueries = append(f.productQueries, q)
	return catalog.Page{Meta: catalog.Meta{CurrentPage: q.Page, LastPage: 1}}, nil
}

func (f *fakeCatalog) GetCategories(_ context.Context, q catalog.CategoryQuery) ([]catalog.DisplayRecord, error) {
	f.categoryNames = append(f.categoryNames, q.Name)
	return []catalog.DisplayRecord{{ID: "c1", Type: catalog.TypeCategory}}, nil
}

func (f *fakeCatalog) GetProductsByIDs(context.Context, []string) ([]catalog.DisplayRecord, error) {
	return nil, nil
}

func (f *fakeCatalog) GetCategoriesByIDs(context.Context, []string) ([]catalog.DisplayRecord, error) {
	return nil, nil
}

func TestFetchAdapters(t *testing.T) {
	svc := &fakeCatalog{}
	ctx := context.Background()

	_, err := Products(svc, 500)(ctx, State{Search: "x", Sort: catalog.SortAsc, Page: 2})
	require.NoError(t, err)
	require.Len(t, svc.productQueries, 1)
	assert.Equal(t, catalog.ProductQuery{Page: 2, PerPage: 50, Search: "x", OrderBy: "price_asc"}, svc.productQueries[0])

	page, err := Categories(svc)(ctx, State{Search: "moda", Page: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"moda"}, svc.categoryNames)
	assert.Equal(t, 1, page.Meta.LastPage)
	assert.Len(t, page.Items, 1)
}
