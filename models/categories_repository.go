package models

import (
	"context"
	"errors"

	"github.com/mytheresa/catalog-admin/app/listing"
	"gorm.io/gorm"
)

type CategoriesRepository struct {
	db *gorm.DB
}

func NewCategoriesRepository(db *gorm.DB) *CategoriesRepository {
	return &CategoriesRepository{
		db: db,
	}
}

func preloadProducts(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Products", func(db *gorm.DB) *gorm.DB {
		return db.Order("products.id")
	})
}

func (r *CategoriesRepository) first(ctx context.Context, tx func(*gorm.DB) *gorm.DB) (*Category, error) {
	var category Category
	if err := tx(r.db.WithContext(ctx)).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

// FindByID loads the category row without its products.
func (r *CategoriesRepository) FindByID(ctx context.Context, id int64) (*Category, error) {
	return r.first(ctx, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("id = ?", id)
	})
}

func (r *CategoriesRepository) FindByIDWithProducts(ctx context.Context, id int64) (*Category, error) {
	return r.first(ctx, func(tx *gorm.DB) *gorm.DB {
		return preloadProducts(tx).Where("id = ?", id)
	})
}

func (r *CategoriesRepository) FindByName(ctx context.Context, name string) (*Category, error) {
	return r.first(ctx, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("name = ?", name)
	})
}

// FindAndCount returns one page of categories with their products and the
// total number of categories.
func (r *CategoriesRepository) FindAndCount(ctx context.Context, q listing.Query) ([]Category, int64, error) {
	return findAndCount[Category](ctx, r.db, "categories", q, preloadProducts)
}

func (r *CategoriesRepository) Create(ctx context.Context, category *Category) error {
	err := r.db.WithContext(ctx).Omit("Products").Create(category).Error
	if isUniqueViolation(err) {
		return ErrDuplicateName
	}
	return err
}

func (r *CategoriesRepository) UpdateByIDs(ctx context.Context, ids []int64, fields map[string]any) error {
	err := r.db.WithContext(ctx).
		Model(&Category{}).
		Where("id IN ?", ids).
		Updates(fields).Error
	if isUniqueViolation(err) {
		return ErrDuplicateName
	}
	return err
}

func (r *CategoriesRepository) DeleteByIDs(ctx context.Context, ids []int64) error {
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&Category{}).Error
	if isForeignKeyViolation(err) {
		return ErrCategoryInUse
	}
	return err
}
