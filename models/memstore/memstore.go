// Package memstore is an in-memory catalog store honouring the same
// contracts as the postgres repositories: unique names, the product to
// category foreign key, the price adjustment procedure and the price
// aggregates. It backs STORE_DRIVER=memory and the service tests.
package memstore

import (
	"cmp"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/mytheresa/catalog-admin/app/listing"
	"github.com/mytheresa/catalog-admin/models"
	"github.com/shopspring/decimal"
)

type Store struct {
	mu         sync.RWMutex
	categories map[int64]models.Category
	products   map[int64]models.Product
	nextCatID  int64
	nextProdID int64
	err        error
	calls      []Call
}

// Call records a stored procedure invocation.
type Call struct {
	Name string
	Args []any
}

func New() *Store {
	return &Store{
		categories: map[int64]models.Category{},
		products:   map[int64]models.Product{},
	}
}

// Categories returns the category repository view.
func (s *Store) Categories() *Categories {
	return &Categories{s: s}
}

// Products returns the product repository view.
func (s *Store) Products() *Products {
	return &Products{s: s}
}

// FailWith makes every subsequent operation return err. Pass nil to clear.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Calls returns the stored procedure invocations seen so far.
func (s *Store) Calls() []Call {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Call(nil), s.calls...)
}

// CategoryCount and ProductCount report the number of stored rows.
func (s *Store) CategoryCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.categories)
}

func (s *Store) ProductCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

func (s *Store) categoryNameTaken(name string, except map[int64]bool) bool {
	for id, c := range s.categories {
		if c.Name == name && !except[id] {
			return true
		}
	}
	return false
}

func (s *Store) productNameTaken(name string, except map[int64]bool) bool {
	for id, p := range s.products {
		if p.Name == name && !except[id] {
			return true
		}
	}
	return false
}

// resolve returns a copy of p with its category attached.
func (s *Store) resolve(p models.Product) models.Product {
	p.Category = nil
	if p.CategoryID != nil {
		id := *p.CategoryID
		p.CategoryID = &id
		if c, ok := s.categories[id]; ok {
			c.Products = nil
			p.Category = &c
		}
	}
	return p
}

func (s *Store) productsOf(categoryID int64) []models.Product {
	var out []models.Product
	for _, p := range s.products {
		if p.CategoryID != nil && *p.CategoryID == categoryID {
			p.Category = nil
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if out == nil {
		out = []models.Product{}
	}
	return out
}

func idSet(ids []int64) map[int64]bool {
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

type sortKey struct {
	id    int64
	name  string
	brand string
	price decimal.Decimal
}

// page orders rows the way the postgres repositories do (id breaks ties)
// and applies offset and limit.
func page[T any](rows []T, q listing.Query, key func(T) sortKey) []T {
	compare := func(a, b sortKey) int {
		switch q.Sort {
		case "price":
			return a.price.Cmp(b.price)
		case "name":
			return strings.Compare(a.name, b.name)
		case "brand":
			return strings.Compare(a.brand, b.brand)
		default:
			return cmp.Compare(a.id, b.id)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := key(rows[i]), key(rows[j])
		if c := compare(a, b); c != 0 {
			if q.Desc() {
				return c > 0
			}
			return c < 0
		}
		return a.id < b.id
	})

	start := min(max(q.Offset, 0), len(rows))
	end := min(start+max(q.Limit, 0), len(rows))
	return rows[start:end]
}

func categoryIDValue(v any) (*int64, error) {
	switch id := v.(type) {
	case nil:
		return nil, nil
	case int64:
		return &id, nil
	case *int64:
		if id == nil {
			return nil, nil
		}
		v := *id
		return &v, nil
	default:
		return nil, fmt.Errorf("memstore: unsupported category_id value %T", v)
	}
}

func unknownColumn(col string) error {
	return fmt.Errorf("memstore: unknown column %q", col)
}
