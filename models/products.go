package models

import (
	"github.com/shopspring/decimal"
)

// Product represents a product in the catalog.
// It owns an optional association to exactly one category.
type Product struct {
	ID         int64           `gorm:"primaryKey"`
	Name       string          `gorm:"size:255;uniqueIndex;not null"`
	Brand      string          `gorm:"size:255;index"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);not null;index"`
	CategoryID *int64          `gorm:"index"`
	Category   *Category       `gorm:"foreignKey:CategoryID"`
}

func (p *Product) TableName() string {
	return "products"
}

// Column names accepted by ProductsRepository.UpdateByIDs.
const (
	ProductColumnName       = "name"
	ProductColumnBrand      = "brand"
	ProductColumnPrice      = "price"
	ProductColumnCategoryID = "category_id"
)

// Stored routines created by the migrations.
const (
	ProcAdjustProductPrices   = "adjust_product_prices"
	FuncTotalProductsPrice    = "calculate_total_products_price"
	FuncCategoryProductsPrice = "calculate_category_products_price"
)
