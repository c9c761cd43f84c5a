// Package listing resolves paging and sorting input into a safe store query.
package listing

import (
	"math"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	// DefaultSort is the column every listing falls back to.
	DefaultSort = "id"
)

type Order string

const (
	Asc  Order = "ASC"
	Desc Order = "DESC"
)

// Params is the raw listing input as received from a caller.
type Params struct {
	Page  int
	Limit int
	Sort  string
	Order string
}

// Query is a validated listing request. Sort is always one of the
// allow-listed columns.
type Query struct {
	Offset int
	Limit  int
	Sort   string
	Order  Order
}

// Desc reports whether the query sorts descending.
func (q Query) Desc() bool {
	return q.Order == Desc
}

// Page is one page of a listing with its paging metadata.
type Page[T any] struct {
	Items []T
	Total int64
	Page  int
	Limit int
}

// Resolve normalises p against the allowed sort columns. An unknown sort
// column silently falls back to id; an unknown order becomes ASC.
func Resolve(p Params, allowed ...string) (Query, int) {
	page := p.Page
	if page < 1 {
		page = DefaultPage
	}

	limit := p.Limit
	if limit < 1 {
		limit = DefaultLimit
	} else if limit > MaxLimit {
		limit = MaxLimit
	}

	// (page-1)*limit must stay within int.
	if maxPage := math.MaxInt / limit; page > maxPage {
		page = maxPage
	}

	sort := DefaultSort
	field := strings.ToLower(strings.TrimSpace(p.Sort))
	for _, a := range allowed {
		if field == a {
			sort = a
			break
		}
	}

	order := Asc
	if strings.EqualFold(strings.TrimSpace(p.Order), string(Desc)) {
		order = Desc
	}

	return Query{
		Offset: (page - 1) * limit,
		Limit:  limit,
		Sort:   sort,
		Order:  order,
	}, page
}

// NewPage assembles a page, never returning nil items.
func NewPage[T any](items []T, total int64, page int, q Query) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items: items,
		Total: total,
		Page:  page,
		Limit: q.Limit,
	}
}
