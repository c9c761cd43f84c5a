package models

// Category groups products. Its name is unique across all categories.
// Products is the non-owning side of the relation and is only populated
// when explicitly loaded.
type Category struct {
	ID       int64     `gorm:"primaryKey"`
	Name     string    `gorm:"size:255;uniqueIndex;not null"`
	Products []Product `gorm:"foreignKey:CategoryID"`
}

func (c *Category) TableName() string {
	return "categories"
}

// Column names accepted by CategoriesRepository.UpdateByIDs.
const (
	CategoryColumnName = "name"
)
