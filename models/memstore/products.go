package memstore

import (
	"context"
	"fmt"
	"sort"

	"github.com/mytheresa/catalog-admin/app/listing"
	"github.com/mytheresa/catalog-admin/models"
	"github.com/shopspring/decimal"
)

// Products implements the product repository contract.
type Products struct {
	s *Store
}

var hundred = decimal.NewFromInt(100)

func (r *Products) find(match func(models.Product) bool) (*models.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.err != nil {
		return nil, r.s.err
	}
	for _, p := range r.s.products {
		if match(p) {
			p = r.s.resolve(p)
			return &p, nil
		}
	}
	return nil, models.ErrProductNotFound
}

func (r *Products) FindByID(_ context.Context, id int64) (*models.Product, error) {
	return r.find(func(p models.Product) bool { return p.ID == id })
}

func (r *Products) FindByName(_ context.Context, name string) (*models.Product, error) {
	return r.find(func(p models.Product) bool { return p.Name == name })
}

func (r *Products) FindByCategory(_ context.Context, categoryID int64) ([]models.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.err != nil {
		return nil, r.s.err
	}

	var out []models.Product
	for _, p := range r.s.products {
		if p.CategoryID != nil && *p.CategoryID == categoryID {
			out = append(out, r.s.resolve(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Products) CountByCategoryIDs(_ context.Context, ids []int64) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.err != nil {
		return 0, r.s.err
	}

	targets := idSet(ids)
	var n int64
	for _, p := range r.s.products {
		if p.CategoryID != nil && targets[*p.CategoryID] {
			n++
		}
	}
	return n, nil
}

func (r *Products) FindAndCount(_ context.Context, q listing.Query) ([]models.Product, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.err != nil {
		return nil, 0, r.s.err
	}

	rows := make([]models.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		rows = append(rows, r.s.resolve(p))
	}
	rows = page(rows, q, func(p models.Product) sortKey {
		return sortKey{id: p.ID, name: p.Name, brand: p.Brand, price: p.Price}
	})

	return rows, int64(len(r.s.products)), nil
}

func (r *Products) Create(_ context.Context, product *models.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return r.s.err
	}
	if r.s.productNameTaken(product.Name, nil) {
		return models.ErrDuplicateName
	}
	if product.CategoryID != nil {
		if _, ok := r.s.categories[*product.CategoryID]; !ok {
			return models.ErrCategoryNotFound
		}
	}

	r.s.nextProdID++
	product.ID = r.s.nextProdID
	stored := *product
	stored.Price = stored.Price.Round(2)
	stored.Category = nil
	if product.CategoryID != nil {
		id := *product.CategoryID
		stored.CategoryID = &id
	}
	r.s.products[product.ID] = stored
	return nil
}

func (r *Products) UpdateByIDs(_ context.Context, ids []int64, fields map[string]any) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return r.s.err
	}

	targets := idSet(ids)
	apply := make([]func(*models.Product), 0, len(fields))
	for col, v := range fields {
		switch col {
		case models.ProductColumnName:
			name, _ := v.(string)
			if r.s.productNameTaken(name, targets) || countExisting(targets, r.s.products) > 1 {
				return models.ErrDuplicateName
			}
			apply = append(apply, func(p *models.Product) { p.Name = name })
		case models.ProductColumnBrand:
			brand, _ := v.(string)
			apply = append(apply, func(p *models.Product) { p.Brand = brand })
		case models.ProductColumnPrice:
			price, ok := v.(decimal.Decimal)
			if !ok {
				return fmt.Errorf("memstore: unsupported price value %T", v)
			}
			apply = append(apply, func(p *models.Product) { p.Price = price.Round(2) })
		case models.ProductColumnCategoryID:
			categoryID, err := categoryIDValue(v)
			if err != nil {
				return err
			}
			if categoryID != nil {
				if _, ok := r.s.categories[*categoryID]; !ok {
					return models.ErrCategoryNotFound
				}
			}
			apply = append(apply, func(p *models.Product) {
				if categoryID == nil {
					p.CategoryID = nil
					return
				}
				id := *categoryID
				p.CategoryID = &id
			})
		default:
			return unknownColumn(col)
		}
	}

	for id := range targets {
		p, ok := r.s.products[id]
		if !ok {
			continue
		}
		for _, fn := range apply {
			fn(&p)
		}
		r.s.products[id] = p
	}
	return nil
}

func (r *Products) DeleteByIDs(_ context.Context, ids []int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return r.s.err
	}
	for _, id := range ids {
		delete(r.s.products, id)
	}
	return nil
}

// CallProcedure supports adjust_product_prices(percent, brand, category_id,
// increase) with the same NULL-means-no-filter semantics as the SQL routine.
// The whole matching set is adjusted under one lock.
func (r *Products) CallProcedure(_ context.Context, name string, args ...any) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return r.s.err
	}
	r.s.calls = append(r.s.calls, Call{Name: name, Args: append([]any(nil), args...)})

	if name != models.ProcAdjustProductPrices {
		return fmt.Errorf("memstore: procedure %q does not exist", name)
	}
	if len(args) != 4 {
		return fmt.Errorf("memstore: %s expects 4 arguments, got %d", name, len(args))
	}

	percent, ok := args[0].(decimal.Decimal)
	if !ok {
		return fmt.Errorf("memstore: percent must be decimal, got %T", args[0])
	}
	brand, _ := args[1].(string)
	hasBrand := args[1] != nil
	categoryID, err := categoryIDValue(args[2])
	if err != nil {
		return err
	}
	increase, _ := args[3].(bool)

	factor := decimal.NewFromInt(1)
	if increase {
		factor = factor.Add(percent.Div(hundred))
	} else {
		factor = factor.Sub(percent.Div(hundred))
	}

	for id, p := range r.s.products {
		if hasBrand && p.Brand != brand {
			continue
		}
		if categoryID != nil && (p.CategoryID == nil || *p.CategoryID != *categoryID) {
			continue
		}
		p.Price = p.Price.Mul(factor).Round(2)
		r.s.products[id] = p
	}
	return nil
}

func (r *Products) TotalPrice(_ context.Context, categoryID *int64) (decimal.Decimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.err != nil {
		return decimal.Zero, r.s.err
	}

	total := decimal.Zero
	for _, p := range r.s.products {
		if categoryID != nil && (p.CategoryID == nil || *p.CategoryID != *categoryID) {
			continue
		}
		total = total.Add(p.Price)
	}
	return total.Round(2), nil
}
