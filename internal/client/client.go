// Package client implements the catalog and campaign services over the
// brand console's JSON HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"brandconsole/internal/catalog"
	"brandconsole/internal/logging"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultTimeout bounds each request when no HTTP client is supplied.
const DefaultTimeout = 15 * time.Second

// StatusError is returned for non-2xx responses that carry no usable body.
type StatusError struct {
	Code    int
	Status  string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Status, e.Message)
	}
	return e.Status
}

// Client talks to the remote catalog and campaign endpoints.
type Client struct {
	base    *url.URL
	http    *http.Client
	limiter *rate.Limiter
	token   string
	logger  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithRateLimit caps outgoing requests to rps per second with the given
// burst. A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithToken sends token as a bearer credential.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New returns a client rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	c := &Client{
		base:   base,
		http:   &http.Client{Timeout: DefaultTimeout},
		logger: logging.Get(logging.CategoryClient),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

var (
	_ catalog.CatalogService  = (*Client)(nil)
	_ catalog.CampaignService = (*Client)(nil)
)

type listResponse struct {
	List []catalog.DisplayRecord `json:"list"`
}

// GetProducts fetches one page of products.
func (c *Client) GetProducts(ctx context.Context, q catalog.ProductQuery) (catalog.Page, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(max(q.Page, 1)))
	params.Set("perpage", strconv.Itoa(catalog.ClampPerPage(q.PerPage, catalog.DefaultPageSize)))
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.OrderBy != "" {
		orderBy, err := catalog.NormalizeOrderBy(q.OrderBy)
		if err != nil {
			return catalog.Page{}, err
		}
		params.Set("orderBy", orderBy)
	}

	var page catalog.Page
	if err := c.do(ctx, http.MethodGet, "/products", params, nil, &page); err != nil {
		return catalog.Page{}, fmt.Errorf("get products: %w", err)
	}
	typed(page.Items, catalog.TypeProduct)
	return page, nil
}

// GetCategories fetches the categories matching q.Name.
func (c *Client) GetCategories(ctx context.Context, q catalog.CategoryQuery) ([]catalog.DisplayRecord, error) {
	params := url.Values{}
	if q.Name != "" {
		params.Set("name", q.Name)
	}
	var resp listResponse
	if err := c.do(ctx, http.MethodGet, "/categories", params, nil, &resp); err != nil {
		return nil, fmt.Errorf("get categories: %w", err)
	}
	typed(resp.List, catalog.TypeCategory)
	return resp.List, nil
}

// GetProductsByIDs fetches the products among ids.
func (c *Client) GetProductsByIDs(ctx context.Context, ids []string) ([]catalog.DisplayRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	params := url.Values{}
	params.Set("ids", strings.Join(ids, ","))
	params.Set("perpage", strconv.Itoa(len(ids)))
	var page catalog.Page
	if err := c.do(ctx, http.MethodGet, "/products", params, nil, &page); err != nil {
		return nil, fmt.Errorf("get products by id: %w", err)
	}
	typed(page.Items, catalog.TypeProduct)
	return page.Items, nil
}

// GetCategoriesByIDs fetches the categories among ids.
func (c *Client) GetCategoriesByIDs(ctx context.Context, ids []string) ([]catalog.DisplayRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	params := url.Values{}
	params.Set("ids", strings.Join(ids, ","))
	var resp listResponse
	if err := c.do(ctx, http.MethodGet, "/categories", params, nil, &resp); err != nil {
		return nil, fmt.Errorf("get categories by id: %w", err)
	}
	typed(resp.List, catalog.TypeCategory)
	return resp.List, nil
}

// GetCampaign fetches campaign id.
func (c *Client) GetCampaign(ctx context.Context, id string) (catalog.Campaign, error) {
	var campaign catalog.Campaign
	if err := c.do(ctx, http.MethodGet, "/campaigns/"+url.PathEscape(id), nil, nil, &campaign); err != nil {
		return catalog.Campaign{}, fmt.Errorf("get campaign %s: %w", id, err)
	}
	return campaign, nil
}

// UpdateCampaign sends c. A refusal with a JSON body is returned as an
// unsuccessful result; transport and server failures are errors.
func (c *Client) UpdateCampaign(ctx context.Context, campaign catalog.Campaign) (catalog.UpdateResult, error) {
	body, err := json.Marshal(campaign)
	if err != nil {
		return catalog.UpdateResult{}, fmt.Errorf("encode campaign: %w", err)
	}
	var result catalog.UpdateResult
	err = c.do(ctx, http.MethodPut, "/campaigns/"+url.PathEscape(campaign.ID), nil, body, &result)
	var se *StatusError
	if errors.As(err, &se) && se.Code >= 400 && se.Code < 500 && se.Code != http.StatusNotFound && se.Message != "" {
		return catalog.UpdateResult{Success: false, Message: se.Message}, nil
	}
	if err != nil {
		return catalog.UpdateResult{}, fmt.Errorf("update campaign %s: %w", campaign.ID, err)
	}
	return result, nil
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body []byte, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit: %w", err)
		}
	}

	u := *c.base
	u.Path = c.base.Path + path
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return err
	}
	defer resp.Body.Close()
	c.logger.Debug("request done",
		zap.String("method", method),
		zap.String("url", u.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode == http.StatusNotFound {
		return catalog.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func statusError(resp *http.Response) error {
	se := &StatusError{Code: resp.StatusCode, Status: resp.Status}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil {
		se.Message = payload.Message
		if se.Message == "" {
			se.Message = payload.Error
		}
	}
	return se
}

func typed(recs []catalog.DisplayRecord, t catalog.ItemType) {
	for i := range recs {
		recs[i].Type = t
	}
}
