package main

import (
	"fmt"

	"brandconsole/internal/catalog"
	"brandconsole/internal/client"
	"brandconsole/internal/config"
	"brandconsole/internal/store"
)

// backend bundles the two service contracts with their cleanup.
type backend struct {
	catalog   catalog.CatalogService
	campaigns catalog.CampaignService
	store     *store.Store // nil for the http backend
	close     func() error
}

func openBackend(c *config.Config) (*backend, error) {
	switch c.Backend.Kind {
	case config.BackendHTTP:
		cl, err := client.New(c.Backend.BaseURL,
			client.WithTimeout(c.BackendTimeout()),
			client.WithRateLimit(c.Backend.RequestsPerSecond, c.Backend.Burst),
			client.WithToken(c.Backend.Token))
		if err != nil {
			return nil, err
		}
		return &backend{catalog: cl, campaigns: cl, close: func() error { return nil }}, nil
	case config.BackendSQLite:
		st, err := store.Open(c.Store.Path, store.WithMaxItems(c.Selection.MaxItems))
		if err != nil {
			return nil, err
		}
		return &backend{catalog: st, campaigns: st, store: st, close: st.Close}, nil
	default:
		return nil, fmt.Errorf("unknown backend kind %q", c.Backend.Kind)
	}
}
