package models

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/mytheresa/catalog-admin/app/listing"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductsRepository struct {
	db *gorm.DB
}

func NewProductsRepository(db *gorm.DB) *ProductsRepository {
	return &ProductsRepository{
		db: db,
	}
}

func preloadCategory(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Category")
}

// translate maps constraint violations onto the package sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return ErrDuplicateName
	case isForeignKeyViolation(err):
		return ErrCategoryNotFound
	default:
		return err
	}
}

func (r *ProductsRepository) first(ctx context.Context, tx func(*gorm.DB) *gorm.DB) (*Product, error) {
	var product Product
	if err := tx(r.db.WithContext(ctx)).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err // Other DB error
	}
	return &product, nil
}

// FindByID loads the product with its category resolved.
func (r *ProductsRepository) FindByID(ctx context.Context, id int64) (*Product, error) {
	return r.first(ctx, func(tx *gorm.DB) *gorm.DB {
		return preloadCategory(tx).Where("id = ?", id)
	})
}

func (r *ProductsRepository) FindByName(ctx context.Context, name string) (*Product, error) {
	return r.first(ctx, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("name = ?", name)
	})
}

func (r *ProductsRepository) FindByCategory(ctx context.Context, categoryID int64) ([]Product, error) {
	var products []Product
	if err := preloadCategory(r.db.WithContext(ctx)).
		Where("category_id = ?", categoryID).
		Order("id").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// CountByCategoryIDs counts products assigned to any of the given categories.
func (r *ProductsRepository) CountByCategoryIDs(ctx context.Context, ids []int64) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&Product{}).
		Where("category_id IN ?", ids).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ProductsRepository) FindAndCount(ctx context.Context, q listing.Query) ([]Product, int64, error) {
	return findAndCount[Product](ctx, r.db, "products", q, preloadCategory)
}

func (r *ProductsRepository) Create(ctx context.Context, product *Product) error {
	return translate(r.db.WithContext(ctx).Omit("Category").Create(product).Error)
}

func (r *ProductsRepository) UpdateByIDs(ctx context.Context, ids []int64, fields map[string]any) error {
	return translate(r.db.WithContext(ctx).
		Model(&Product{}).
		Where("id IN ?", ids).
		Updates(fields).Error)
}

func (r *ProductsRepository) DeleteByIDs(ctx context.Context, ids []int64) error {
	return r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&Product{}).Error
}

// CallProcedure invokes a stored procedure with positional arguments as a
// single statement.
func (r *ProductsRepository) CallProcedure(ctx context.Context, name string, args ...any) error {
	return r.db.WithContext(ctx).Exec(callStatement("CALL", name, len(args)), args...).Error
}

// TotalPrice sums product prices through the stored aggregate functions,
// over all products or over one category when categoryID is set.
func (r *ProductsRepository) TotalPrice(ctx context.Context, categoryID *int64) (decimal.Decimal, error) {
	var (
		total decimal.Decimal
		row   interface{ Scan(...any) error }
	)
	if categoryID == nil {
		row = r.db.WithContext(ctx).Raw(callStatement("SELECT", FuncTotalProductsPrice, 0)).Row()
	} else {
		row = r.db.WithContext(ctx).Raw(callStatement("SELECT", FuncCategoryProductsPrice, 1), *categoryID).Row()
	}
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// callStatement renders `<verb> "name"(?, ?, ...)` with a quoted routine name.
func callStatement(verb, name string, argc int) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", argc), ", ")
	return fmt.Sprintf("%s %s(%s)", verb, pgx.Identifier{name}.Sanitize(), placeholders)
}
