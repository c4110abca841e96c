package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"brandconsole/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_FreshDatabase(t *testing.T) {
	s := openTestStore(t)
	assert.Equal(t, CurrentSchemaVersion, s.SchemaVersion())

	applied, err := s.runMigrations()
	require.NoError(t, err)
	assert.Zero(t, applied)
}

func TestMigrations_UpgradesOldDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`
		CREATE TABLE categories (id TEXT PRIMARY KEY, name TEXT NOT NULL, commission REAL NOT NULL DEFAULT 0);
		CREATE TABLE products (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			category_id TEXT,
			price_cents INTEGER NOT NULL DEFAULT 0,
			commission REAL NOT NULL DEFAULT 0
		);
		INSERT INTO categories (id, name, commission) VALUES ('k1', 'Casa', 5);
		INSERT INTO products (id, name, category_id, price_cents, commission) VALUES ('p1', 'Cafeteira', 'k1', 500, 10);`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	assert.Equal(t, CurrentSchemaVersion, s.SchemaVersion())
	assert.True(t, columnExists(s.db, "products", "sku"))
	assert.True(t, columnExists(s.db, "categories", "image_url"))

	page, err := s.GetProducts(context.Background(), catalog.ProductQuery{Page: 1, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Cafeteira", page.Items[0].Name)
	assert.Empty(t, page.Items[0].SKU)
	assert.Equal(t, "Casa", page.Items[0].CategoryName)
}
