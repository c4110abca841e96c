// Package catalog defines the records exchanged between the campaign editor
// and the remote catalog and campaign services.
package catalog

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a campaign or catalog entry does not exist.
var ErrNotFound = errors.New("catalog: not found")

// ItemType distinguishes the two kinds of entity a campaign can reference.
type ItemType string

const (
	TypeProduct  ItemType = "product"
	TypeCategory ItemType = "category"
)

// Types lists every item type in the order campaign items are emitted.
var Types = []ItemType{TypeProduct, TypeCategory}

// Valid reports whether t is a known item type.
func (t ItemType) Valid() bool {
	return t == TypeProduct || t == TypeCategory
}

// ItemRef identifies a campaign item. Identity is the (ID, Type) pair.
type ItemRef struct {
	ID   string   `json:"id"`
	Type ItemType `json:"type"`
}

// DisplayRecord is the denormalized read model used to render a selected item
// without querying the catalog again.
type DisplayRecord struct {
	ID           string   `json:"id"`
	Type         ItemType `json:"type"`
	Name         string   `json:"name"`
	SKU          string   `json:"sku,omitempty"`
	CategoryName string   `json:"category_name,omitempty"`
	PriceCents   int64    `json:"price_cents"`
	Commission   float64  `json:"commission"` // percentage
	ImageURL     string   `json:"image_url,omitempty"`
}

// Ref returns the campaign reference for the record.
func (r DisplayRecord) Ref() ItemRef {
	return ItemRef{ID: r.ID, Type: r.Type}
}

// Meta carries the pagination metadata of a catalog page.
type Meta struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	TotalItems  int `json:"total_items"`
}

// Page is one page of catalog results. It is replaced wholesale on every
// successful query.
type Page struct {
	Items []DisplayRecord `json:"list"`
	Meta  Meta            `json:"meta"`
}

// SinglePage wraps an unpaginated result list as page 1 of 1.
func SinglePage(items []DisplayRecord) Page {
	return Page{
		Items: items,
		Meta:  Meta{CurrentPage: 1, LastPage: 1, TotalItems: len(items)},
	}
}

// ProductQuery is the paginated product search request.
type ProductQuery struct {
	Page    int
	PerPage int
	Search  string
	OrderBy string
}

// CategoryQuery filters categories by name. Categories are not paginated.
type CategoryQuery struct {
	Name string
}

// CatalogService is the remote product and category catalog.
type CatalogService interface {
	GetProducts(ctx context.Context, q ProductQuery) (Page, error)
	GetCategories(ctx context.Context, q CategoryQuery) ([]DisplayRecord, error)
	GetProductsByIDs(ctx context.Context, ids []string) ([]DisplayRecord, error)
	GetCategoriesByIDs(ctx context.Context, ids []string) ([]DisplayRecord, error)
}

// Commission types accepted by the campaign form.
const (
	CommissionPercentage = "percentage"
	CommissionFixed      = "fixed"
)

// Campaign is the payload submitted when a campaign is saved.
type Campaign struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	CommissionType string    `json:"commission_type"`
	Commission     float64   `json:"commission"`
	StartDate      string    `json:"start_date,omitempty"`
	EndDate        string    `json:"end_date,omitempty"`
	Items          []ItemRef `json:"items"`
}

// Clone returns a copy of c that shares no slices with it.
func (c Campaign) Clone() Campaign {
	out := c
	if c.Items != nil {
		out.Items = append([]ItemRef(nil), c.Items...)
	}
	return out
}

// RefsOf returns the IDs of refs with the given type, in order.
func (c Campaign) RefsOf(t ItemType) []string {
	var ids []string
	for _, ref := range c.Items {
		if ref.Type == t {
			ids = append(ids, ref.ID)
		}
	}
	return ids
}

// UpdateResult is the campaign service's answer to an update.
type UpdateResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// CampaignService loads and persists campaigns.
type CampaignService interface {
	GetCampaign(ctx context.Context, id string) (Campaign, error)
	UpdateCampaign(ctx context.Context, c Campaign) (UpdateResult, error)
}
