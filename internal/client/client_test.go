package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"brandconsole/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	method string
	path   string
	query  url.Values
	auth   string
	body   []byte
}

type fakeAPI struct {
	mu       sync.Mutex
	requests []recordedRequest
	handler  http.HandlerFunc
}

func newFakeAPI(t *testing.T, handler http.HandlerFunc) (*fakeAPI, *Client) {
	t.Helper()
	api := &fakeAPI{handler: handler}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		api.mu.Lock()
		api.requests = append(api.requests, recordedRequest{
			method: r.Method, path: r.URL.Path, query: r.URL.Query(),
			auth: r.Header.Get("Authorization"), body: body,
		})
		api.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL+"/api/", WithToken("secret"))
	require.NoError(t, err)
	return api, c
}

func (a *fakeAPI) last() recordedRequest {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.requests[len(a.requests)-1]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestGetProducts(t *testing.T) {
	api, c := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"list": []map[string]any{{"id": "p1", "name": "Cafeteira", "price_cents": 1999}},
			"meta": map[string]any{"current_page": 2, "last_page": 4, "total_items": 40},
		})
	})

	page, err := c.GetProducts(context.Background(), catalog.ProductQuery{Page: 2, PerPage: 12, Search: "café", OrderBy: "price_desc"})
	require.NoError(t, err)
	assert.Equal(t, catalog.Meta{CurrentPage: 2, LastPage: 4, TotalItems: 40}, page.Meta)
	require.Len(t, page.Items, 1)
	assert.Equal(t, catalog.TypeProduct, page.Items[0].Type)
	assert.Equal(t, int64(1999), page.Items[0].PriceCents)

	req := api.last()
	assert.Equal(t, http.MethodGet, req.method)
	assert.Equal(t, "/api/products", req.path)
	assert.Equal(t, "2", req.query.Get("page"))
	assert.Equal(t, "12", req.query.Get("perpage"))
	assert.Equal(t, "café", req.query.Get("search"))
	assert.Equal(t, "price_desc", req.query.Get("orderBy"))
	assert.Equal(t, "Bearer secret", req.auth)
}

func TestGetProductsOmitsEmptyFilters(t *testing.T) {
	api, c := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, catalog.SinglePage(nil))
	})
	_, err := c.GetProducts(context.Background(), catalog.ProductQuery{PerPage: 500})
	require.NoError(t, err)

	req := api.last()
	assert.Equal(t, "1", req.query.Get("page"))
	assert.Equal(t, "50", req.query.Get("perpage"))
	assert.False(t, req.query.Has("search"))
	assert.False(t, req.query.Has("orderBy"))

	_, err = c.GetProducts(context.Background(), catalog.ProductQuery{OrderBy: "name"})
	assert.ErrorIs(t, err, catalog.ErrInvalidOrder)
}

func TestGetCategoriesAndLookups(t *testing.T) {
	api, c := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/categories":
			writeJSON(w, http.StatusOK, map[string]any{"list": []map[string]any{{"id": "k1", "name": "Casa"}}})
		default:
			writeJSON(w, http.StatusOK, catalog.SinglePage([]catalog.DisplayRecord{{ID: "p1"}, {ID: "p2"}}))
		}
	})
	ctx := context.Background()

	cats, err := c.GetCategories(ctx, catalog.CategoryQuery{Name: "ca"})
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, catalog.TypeCategory, cats[0].Type)
	assert.Equal(t, "ca", api.last().query.Get("name"))

	_, err = c.GetCategoriesByIDs(ctx, []string{"k1", "k2"})
	require.NoError(t, err)
	assert.Equal(t, "k1,k2", api.last().query.Get("ids"))

	products, err := c.GetProductsByIDs(ctx, []string{"p1", "p2"})
	require.NoError(t, err)
	assert.Len(t, products, 2)
	assert.Equal(t, "p1,p2", api.last().query.Get("ids"))
	assert.Equal(t, "2", api.last().query.Get("perpage"))

	none, err := c.GetProductsByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestCampaignEndpoints(t *testing.T) {
	api, c := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/campaigns/c1":
			writeJSON(w, http.StatusOK, catalog.Campaign{ID: "c1", Name: "Natal", Items: []catalog.ItemRef{{ID: "p1", Type: catalog.TypeProduct}}})
		case r.Method == http.MethodPut && r.URL.Path == "/api/campaigns/c1":
			writeJSON(w, http.StatusOK, catalog.UpdateResult{Success: true})
		case r.Method == http.MethodPut && r.URL.Path == "/api/campaigns/c2":
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"success": false, "message": "Limite excedido"})
		case r.URL.Path == "/api/campaigns/c3":
			writeJSON(w, http.StatusBadGateway, map[string]any{})
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	got, err := c.GetCampaign(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Natal", got.Name)
	assert.Len(t, got.Items, 1)

	_, err = c.GetCampaign(ctx, "missing")
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	payload := catalog.Campaign{ID: "c1", Name: "Natal", CommissionType: catalog.CommissionPercentage, Commission: 35,
		Items: []catalog.ItemRef{{ID: "p1", Type: catalog.TypeProduct}, {ID: "k1", Type: catalog.TypeCategory}}}
	res, err := c.UpdateCampaign(ctx, payload)
	require.NoError(t, err)
	assert.True(t, res.Success)

	var sent catalog.Campaign
	require.NoError(t, json.Unmarshal(api.last().body, &sent))
	assert.Equal(t, payload, sent)

	res, err = c.UpdateCampaign(ctx, catalog.Campaign{ID: "c2"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Limite excedido", res.Message)

	_, err = c.UpdateCampaign(ctx, catalog.Campaign{ID: "c3"})
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.Code)
}

func TestRateLimitHonorsContext(t *testing.T) {
	_, c := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"list": []any{}})
	})
	WithRateLimit(0.001, 1)(c)

	ctx := context.Background()
	_, err := c.GetCategories(ctx, catalog.CategoryQuery{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = c.GetCategories(ctx, catalog.CategoryQuery{})
	require.Error(t, err)
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New("ftp://example.com")
	assert.Error(t, err)
	_, err = New("://bad")
	assert.Error(t, err)

	c, err := New("https://api.example.com", WithTimeout(3*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, c.http.Timeout)
}
