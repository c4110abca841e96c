package editor

import (
	"context"
	"sync"

	"brandconsole/internal/catalog"
)

type fakeCampaigns struct {
	mu       sync.Mutex
	campaign catalog.Campaign
	getErr   error
	result   catalog.UpdateResult
	err      error
	updates  []catalog.Campaign
	block    chan struct{}
}

func (f *fakeCampaigns) GetCampaign(_ context.Context, id string) (catalog.Campaign, error) {
	if f.getErr != nil {
		return catalog.Campaign{}, f.getErr
	}
	if f.campaign.ID != id {
		return catalog.Campaign{}, catalog.ErrNotFound
	}
	return f.campaign.Clone(), nil
}

func (f *fakeCampaigns) UpdateCampaign(ctx context.Context, c catalog.Campaign) (catalog.UpdateResult, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return catalog.UpdateResult{}, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, c.Clone())
	if f.err != nil {
		return catalog.UpdateResult{}, f.err
	}
	return f.result, nil
}

func (f *fakeCampaigns) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

type fakeCatalog struct {
	products   map[string]catalog.DisplayRecord
	categories map[string]catalog.DisplayRecord
	err        error
}

func (f *fakeCatalog) GetProducts(context.Context, catalog.ProductQuery) (catalog.Page, error) {
	var items []catalog.DisplayRecord
	for _, p := range f.products {
		items = append(items, p)
	}
	return catalog.SinglePage(items), f.err
}

func (f *fakeCatalog) GetCategories(context.Context, catalog.CategoryQuery) ([]catalog.DisplayRecord, error) {
	var items []catalog.DisplayRecord
	for _, c := range f.categories {
		items = append(items, c)
	}
	return items, f.err
}

func (f *fakeCatalog) GetProductsByIDs(_ context.Context, ids []string) ([]catalog.DisplayRecord, error) {
	return pick(f.products, ids), f.err
}

func (f *fakeCatalog) GetCategoriesByIDs(_ context.Context, ids []string) ([]catalog.DisplayRecord, error) {
	return pick(f.categories, ids), f.err
}

// pick returns matches in reverse order so callers must reorder.
func pick(from map[string]catalog.DisplayRecord, ids []string) []catalog.DisplayRecord {
	var out []catalog.DisplayRecord
	for i := len(ids) - 1; i >= 0; i-- {
		if rec, ok := from[ids[i]]; ok {
			out = append(out, rec)
		}
	}
	return out
}

func product(id string) catalog.DisplayRecord {
	return catalog.DisplayRecord{ID: id, Type: catalog.TypeProduct, Name: "Produto " + id}
}

func category(id string) catalog.DisplayRecord {
	return catalog.DisplayRecord{ID: id, Type: catalog.TypeCategory, Name: "Categoria " + id}
}
