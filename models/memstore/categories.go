package memstore

import (
	"context"

	"github.com/mytheresa/catalog-admin/app/listing"
	"github.com/mytheresa/catalog-admin/models"
)

// Categories implements the category repository contract.
type Categories struct {
	s *Store
}

func (r *Categories) find(match func(models.Category) bool, withProducts bool) (*models.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.err != nil {
		return nil, r.s.err
	}
	for _, c := range r.s.categories {
		if match(c) {
			c.Products = nil
			if withProducts {
				c.Products = r.s.productsOf(c.ID)
			}
			return &c, nil
		}
	}
	return nil, models.ErrCategoryNotFound
}

func (r *Categories) FindByID(_ context.Context, id int64) (*models.Category, error) {
	return r.find(func(c models.Category) bool { return c.ID == id }, false)
}

func (r *Categories) FindByIDWithProducts(_ context.Context, id int64) (*models.Category, error) {
	return r.find(func(c models.Category) bool { return c.ID == id }, true)
}

func (r *Categories) FindByName(_ context.Context, name string) (*models.Category, error) {
	return r.find(func(c models.Category) bool { return c.Name == name }, false)
}

func (r *Categories) FindAndCount(_ context.Context, q listing.Query) ([]models.Category, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.err != nil {
		return nil, 0, r.s.err
	}

	rows := make([]models.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		rows = append(rows, c)
	}
	rows = page(rows, q, func(c models.Category) sortKey {
		return sortKey{id: c.ID, name: c.Name}
	})
	for i := range rows {
		rows[i].Products = r.s.productsOf(rows[i].ID)
	}

	return rows, int64(len(r.s.categories)), nil
}

func (r *Categories) Create(_ context.Context, category *models.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return r.s.err
	}
	if r.s.categoryNameTaken(category.Name, nil) {
		return models.ErrDuplicateName
	}

	r.s.nextCatID++
	category.ID = r.s.nextCatID
	r.s.categories[category.ID] = models.Category{ID: category.ID, Name: category.Name}
	return nil
}

func (r *Categories) UpdateByIDs(_ context.Context, ids []int64, fields map[string]any) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return r.s.err
	}

	targets := idSet(ids)
	for col, v := range fields {
		switch col {
		case models.CategoryColumnName:
			name, _ := v.(string)
			if r.s.categoryNameTaken(name, targets) || countExisting(targets, r.s.categories) > 1 {
				return models.ErrDuplicateName
			}
		default:
			return unknownColumn(col)
		}
	}

	for id := range targets {
		c, ok := r.s.categories[id]
		if !ok {
			continue
		}
		if name, ok := fields[models.CategoryColumnName].(string); ok {
			c.Name = name
		}
		r.s.categories[id] = c
	}
	return nil
}

func (r *Categories) DeleteByIDs(_ context.Context, ids []int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return r.s.err
	}

	targets := idSet(ids)
	for _, p := range r.s.products {
		if p.CategoryID != nil && targets[*p.CategoryID] {
			return models.ErrCategoryInUse
		}
	}
	for id := range targets {
		delete(r.s.categories, id)
	}
	return nil
}

func countExisting[V any](ids map[int64]bool, rows map[int64]V) int {
	n := 0
	for id := range ids {
		if _, ok := rows[id]; ok {
			n++
		}
	}
	return n
}
