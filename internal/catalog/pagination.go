package catalog

import (
	"errors"
	"fmt"
)

// ErrInvalidOrder is returned for an order_by value outside the allow-list.
var ErrInvalidOrder = errors.New("catalog: invalid order_by")

// SortOrder is the user-facing price sort direction. The zero value means
// "no explicit order".
type SortOrder string

const (
	SortNone SortOrder = ""
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Next cycles none -> asc -> desc -> none.
func (o SortOrder) Next() SortOrder {
	switch o {
	case SortNone:
		return SortAsc
	case SortAsc:
		return SortDesc
	default:
		return SortNone
	}
}

// OrderBy maps the sort order onto the catalog service's order_by value.
func (o SortOrder) OrderBy() string {
	switch o {
	case SortAsc:
		return "price_asc"
	case SortDesc:
		return "price_desc"
	default:
		return ""
	}
}

// AllowedOrderBy lists the order_by values the product listing accepts.
var AllowedOrderBy = []string{"price_asc", "price_desc"}

// PageSizeConfig configures per-page normalization.
type PageSizeConfig struct {
	Default int
	Max     int
}

// DefaultPageSize matches the product grid of the editor.
var DefaultPageSize = PageSizeConfig{Default: 12, Max: 50}

// ClampPerPage applies defaults and limits to a requested page size.
func ClampPerPage(value int, cfg PageSizeConfig) int {
	perPage := value
	if perPage <= 0 {
		perPage = cfg.Default
	}
	if cfg.Max > 0 && perPage > cfg.Max {
		perPage = cfg.Max
	}
	if perPage <= 0 {
		perPage = 1
	}
	return perPage
}

// NormalizeOrderBy validates order_by. The empty string is accepted and
// means natural order.
func NormalizeOrderBy(orderBy string) (string, error) {
	if orderBy == "" {
		return "", nil
	}
	for _, allowed := range AllowedOrderBy {
		if orderBy == allowed {
			return orderBy, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidOrder, orderBy)
}

// LastPage computes the last page number for total items; it is never below 1.
func LastPage(total, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}
