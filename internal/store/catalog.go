package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"brandconsole/internal/catalog"

	"go.uber.org/zap"
)

const productColumns = `p.id, p.name, p.sku, COALESCE(c.name, ''), p.price_cents, p.commission, p.image_url`

const productFrom = `FROM products p LEFT JOIN categories c ON c.id = p.category_id`

// GetProducts returns one page of products whose name or SKU contains
// q.Search, ordered by q.OrderBy.
func (s *Store) GetProducts(ctx context.Context, q catalog.ProductQuery) (catalog.Page, error) {
	orderBy, err := catalog.NormalizeOrderBy(q.OrderBy)
	if err != nil {
		return catalog.Page{}, err
	}
	perPage := catalog.ClampPerPage(q.PerPage, catalog.DefaultPageSize)
	page := q.Page
	if page < 1 {
		page = 1
	}

	where := ""
	var args []any
	if term := strings.TrimSpace(q.Search); term != "" {
		pattern := likePattern(term)
		where = ` WHERE p.name LIKE ? ESCAPE '\' OR p.sku LIKE ? ESCAPE '\'`
		args = append(args, pattern, pattern)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) `+productFrom+where, args...).Scan(&total); err != nil {
		return catalog.Page{}, fmt.Errorf("count products: %w", err)
	}

	query := `SELECT ` + productColumns + ` ` + productFrom + where + ` ORDER BY ` + productOrder(orderBy) + ` LIMIT ? OFFSET ?`
	rows, err := s.db.QueryContext(ctx, query, append(args, perPage, (page-1)*perPage)...)
	if err != nil {
		return catalog.Page{}, fmt.Errorf("query products: %w", err)
	}
	items, err := scanProducts(rows)
	if err != nil {
		return catalog.Page{}, err
	}

	s.logger.Debug("products listed",
		zap.String("search", q.Search),
		zap.String("order_by", orderBy),
		zap.Int("page", page),
		zap.Int("returned", len(items)),
		zap.Int("total", total))
	return catalog.Page{
		Items: items,
		Meta: catalog.Meta{
			CurrentPage: page,
			LastPage:    catalog.LastPage(total, perPage),
			TotalItems:  total,
		},
	}, nil
}

// GetCategories returns every category whose name contains q.Name.
func (s *Store) GetCategories(ctx context.Context, q catalog.CategoryQuery) ([]catalog.DisplayRecord, error) {
	query := `SELECT id, name, commission, image_url FROM categories`
	var args []any
	if name := strings.TrimSpace(q.Name); name != "" {
		query += ` WHERE name LIKE ? ESCAPE '\'`
		args = append(args, likePattern(name))
	}
	query += ` ORDER BY name, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	return scanCategories(rows)
}

// GetProductsByIDs returns the products among ids. Unknown ids are skipped;
// the result order is unspecified.
func (s *Store) GetProductsByIDs(ctx context.Context, ids []string) ([]catalog.DisplayRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + productColumns + ` ` + productFrom + ` WHERE p.id IN (` + placeholders(len(ids)) + `)`
	rows, err := s.db.QueryContext(ctx, query, stringArgs(ids)...)
	if err != nil {
		return nil, fmt.Errorf("query products by id: %w", err)
	}
	return scanProducts(rows)
}

// GetCategoriesByIDs returns the categories among ids. Unknown ids are
// skipped; the result order is unspecified.
func (s *Store) GetCategoriesByIDs(ctx context.Context, ids []string) ([]catalog.DisplayRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT id, name, commission, image_url FROM categories WHERE id IN (` + placeholders(len(ids)) + `)`
	rows, err := s.db.QueryContext(ctx, query, stringArgs(ids)...)
	if err != nil {
		return nil, fmt.Errorf("query categories by id: %w", err)
	}
	return scanCategories(rows)
}

func productOrder(orderBy string) string {
	switch orderBy {
	case "price_asc":
		return "p.price_cents ASC, p.name, p.id"
	case "price_desc":
		return "p.price_cents DESC, p.name, p.id"
	default:
		return "p.name, p.id"
	}
}

func scanProducts(rows *sql.Rows) ([]catalog.DisplayRecord, error) {
	defer rows.Close()
	var out []catalog.DisplayRecord
	for rows.Next() {
		rec := catalog.DisplayRecord{Type: catalog.TypeProduct}
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.SKU, &rec.CategoryName, &rec.PriceCents, &rec.Commission, &rec.ImageURL); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanCategories(rows *sql.Rows) ([]catalog.DisplayRecord, error) {
	defer rows.Close()
	var out []catalog.DisplayRecord
	for rows.Next() {
		rec := catalog.DisplayRecord{Type: catalog.TypeCategory}
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Commission, &rec.ImageURL); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// likePattern wraps term for a substring LIKE match with '\' as escape.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(term) + "%"
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func stringArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}
