package store

import (
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Schema versions:
// v1: categories, products, campaigns, campaign_items
// v2: products.sku and image_url columns
// v3: campaigns.start_date and end_date columns
const CurrentSchemaVersion = 3

// Migration adds a column that older databases lack.
type Migration struct {
	Version int
	Table   string
	Column  string
	Def     string
}

var pendingMigrations = []Migration{
	{2, "products", "sku", "TEXT NOT NULL DEFAULT ''"},
	{2, "products", "image_url", "TEXT NOT NULL DEFAULT ''"},
	{2, "categories", "image_url", "TEXT NOT NULL DEFAULT ''"},
	{3, "campaigns", "start_date", "TEXT NOT NULL DEFAULT ''"},
	{3, "campaigns", "end_date", "TEXT NOT NULL DEFAULT ''"},
}

// runMigrations brings a database created by an older build up to
// CurrentSchemaVersion. It returns the number of columns added.
func (s *Store) runMigrations() (int, error) {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_versions (
		version INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return 0, fmt.Errorf("create schema_versions: %w", err)
	}

	from := s.SchemaVersion()
	if from >= CurrentSchemaVersion {
		return 0, nil
	}

	applied := 0
	for _, m := range pendingMigrations {
		if m.Version <= from || !tableExists(s.db, m.Table) || columnExists(s.db, m.Table, m.Column) {
			continue
		}
		query := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", m.Table, m.Column, m.Def)
		if _, err := s.db.Exec(query); err != nil {
			return applied, fmt.Errorf("migrate %s.%s: %w", m.Table, m.Column, err)
		}
		s.logger.Info("migration applied", zap.String("table", m.Table), zap.String("column", m.Column))
		applied++
	}

	if _, err := s.db.Exec(`INSERT OR REPLACE INTO schema_versions (version, applied_at) VALUES (?, ?)`,
		CurrentSchemaVersion, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return applied, fmt.Errorf("record schema version: %w", err)
	}
	s.logger.Debug("schema migrated", zap.Int("from", from), zap.Int("to", CurrentSchemaVersion), zap.Int("applied", applied))
	return applied, nil
}

// SchemaVersion returns the latest recorded schema version, 0 when none.
func (s *Store) SchemaVersion() int {
	var version int
	if err := s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_versions`).Scan(&version); err != nil {
		return 0
	}
	return version
}

func columnExists(db *sql.DB, table, column string) bool {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid, notnull, pk int
			name, ctype      string
			dflt             any
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			continue
		}
		if name == column {
			return true
		}
	}
	return false
}

func tableExists(db *sql.DB, table string) bool {
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&count); err != nil {
		return false
	}
	return count > 0
}
