// Package store persists the product catalog and campaigns in SQLite and
// serves them through the catalog and campaign service contracts. It backs
// the console when no remote backend is configured.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"brandconsole/internal/catalog"
	"brandconsole/internal/logging"
	"brandconsole/internal/selection"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed catalog and campaign service.
type Store struct {
	db       *sql.DB
	path     string
	maxItems int
	logger   *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithMaxItems sets the item limit enforced on campaign updates.
func WithMaxItems(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxItems = n
		}
	}
}

// Open opens or creates the database at path. ":memory:" opens a private
// in-memory database.
func Open(path string, opts ...Option) (*Store, error) {
	logger := logging.Get(logging.CategoryStore)

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			logger.Debug("pragma failed", zap.String("pragma", pragma), zap.Error(err))
		}
	}

	s := &Store{db: db, path: path, maxItems: selection.DefaultMaxItems, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	if _, err := s.runMigrations(); err != nil {
		db.Close()
		return nil, err
	}
	logger.Debug("store opened", zap.String("path", path))
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database path.
func (s *Store) Path() string { return s.path }

// MaxItems returns the per-campaign item limit.
func (s *Store) MaxItems() int { return s.maxItems }

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS categories (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		commission REAL NOT NULL DEFAULT 0,
		image_url TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		sku TEXT NOT NULL DEFAULT '',
		category_id TEXT REFERENCES categories(id) ON DELETE SET NULL,
		price_cents INTEGER NOT NULL DEFAULT 0,
		commission REAL NOT NULL DEFAULT 0,
		image_url TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_products_price ON products(price_cents);
	CREATE INDEX IF NOT EXISTS idx_products_name ON products(name);

	CREATE TABLE IF NOT EXISTS campaigns (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		commission_type TEXT NOT NULL DEFAULT 'percentage',
		commission REAL NOT NULL DEFAULT 0,
		start_date TEXT NOT NULL DEFAULT '',
		end_date TEXT NOT NULL DEFAULT '',
		updated_at TEXT NOT NULL
	);

	-- Items keep their submitted order through position.
	CREATE TABLE IF NOT EXISTS campaign_items (
		campaign_id TEXT NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		item_id TEXT NOT NULL,
		item_type TEXT NOT NULL CHECK (item_type IN ('product', 'category')),
		PRIMARY KEY (campaign_id, position),
		UNIQUE (campaign_id, item_id, item_type)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

var (
	_ catalog.CatalogService  = (*Store)(nil)
	_ catalog.CampaignService = (*Store)(nil)
)
