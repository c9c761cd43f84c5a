package products

import (
	"context"
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/mytheresa/catalog-admin/app/apperr"
	"github.com/mytheresa/catalog-admin/app/listing"
	"github.com/mytheresa/catalog-admin/app/patch"
	"github.com/mytheresa/catalog-admin/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SortFields lists the columns a product listing may be ordered by.
var SortFields = []string{"id", "name", "price", "brand"}

// maxPrice is the first value that no longer fits decimal(10,2).
var maxPrice = decimal.New(1, 8)

type Repository interface {
	FindByID(ctx context.Context, id int64) (*models.Product, error)
	FindByName(ctx context.Context, name string) (*models.Product, error)
	FindByCategory(ctx context.Context, categoryID int64) ([]models.Product, error)
	FindAndCount(ctx context.Context, q listing.Query) ([]models.Product, int64, error)
	Create(ctx context.Context, product *models.Product) error
	UpdateByIDs(ctx context.Context, ids []int64, fields map[string]any) error
	DeleteByIDs(ctx context.Context, ids []int64) error
	CallProcedure(ctx context.Context, name string, args ...any) error
	TotalPrice(ctx context.Context, categoryID *int64) (decimal.Decimal, error)
}

// CategoryFinder resolves category ids before a product is wired to one.
type CategoryFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Category, error)
}

type CreateInput struct {
	Name       string          `json:"name"`
	Brand      string          `json:"brand"`
	Price      decimal.Decimal `json:"price"`
	CategoryID *int64          `json:"categoryId"`
}

func (in CreateInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, nameRules()...),
		validation.Field(&in.Brand, brandRules()...),
		validation.Field(&in.Price, priceRules()...),
	)
}

// UpdateInput carries a partial update. Absent fields are left unchanged;
// a null or zero CategoryID clears the association.
type UpdateInput struct {
	Name       patch.Field[string]          `json:"name"`
	Brand      patch.Field[string]          `json:"brand"`
	Price      patch.Field[decimal.Decimal] `json:"price"`
	CategoryID patch.Field[int64]           `json:"categoryId"`
}

type AdjustPricesInput struct {
	Percent    decimal.Decimal `json:"percent"`
	Brand      string          `json:"brand"`
	CategoryID *int64          `json:"categoryId"`
	// Increase defaults to true when omitted.
	Increase *bool `json:"increase"`
}

func (in AdjustPricesInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Percent, validation.By(func(any) error {
			if in.Percent.IsNegative() {
				return errors.New("must not be negative")
			}
			return nil
		})),
	)
}

type BulkUpdateInput struct {
	IDs        []int64                      `json:"ids"`
	Price      patch.Field[decimal.Decimal] `json:"price"`
	Brand      patch.Field[string]          `json:"brand"`
	CategoryID patch.Field[int64]           `json:"categoryId"`
}

func nameRules() []validation.Rule {
	return []validation.Rule{
		validation.Required.Error("name is required"),
		validation.RuneLength(1, 255).Error("name must be 1-255 characters"),
	}
}

func brandRules() []validation.Rule {
	return []validation.Rule{
		validation.RuneLength(0, 255).Error("brand must be at most 255 characters"),
	}
}

func priceRules() []validation.Rule {
	return []validation.Rule{
		validation.By(func(v any) error {
			price, _ := v.(decimal.Decimal)
			switch {
			case !price.IsPositive():
				return errors.New("must be greater than 0")
			case price.GreaterThanOrEqual(maxPrice):
				return errors.New("must be less than 100000000")
			}
			return nil
		}),
	}
}

func validate(field string, value any, rules ...validation.Rule) error {
	if err := validation.Validate(value, rules...); err != nil {
		return apperr.Validation(validation.Errors{field: err})
	}
	return nil
}

type Service struct {
	repo       Repository
	categories CategoryFinder
	log        *zap.Logger
}

func NewService(repo Repository, categories CategoryFinder, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		repo:       repo,
		categories: categories,
		log:        log.Named("products"),
	}
}

// List returns one page of products with their categories resolved.
func (s *Service) List(ctx context.Context, p listing.Params) (*listing.Page[models.Product], error) {
	q, page := listing.Resolve(p, SortFields...)
	rows, total, err := s.repo.FindAndCount(ctx, q)
	if err != nil {
		return nil, s.infra(err, "failed to list products")
	}
	return listing.NewPage(rows, total, page, q), nil
}

func (s *Service) Get(ctx context.Context, id int64) (*models.Product, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			return nil, apperr.NotFound("product with ID %d not found", id)
		}
		return nil, s.infra(err, "failed to load product")
	}
	return product, nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Brand = strings.TrimSpace(in.Brand)
	in.Price = in.Price.Round(2)
	if err := in.Validate(); err != nil {
		return nil, apperr.Validation(err)
	}

	if err := s.ensureNameFree(ctx, in.Name, 0); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:  in.Name,
		Brand: in.Brand,
		Price: in.Price,
	}
	if in.CategoryID != nil && *in.CategoryID != 0 {
		category, err := s.findCategory(ctx, *in.CategoryID)
		if err != nil {
			return nil, err
		}
		product.CategoryID = &category.ID
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, s.writeErr(err, product.Name, product.CategoryID, "failed to create product")
	}

	s.log.Info("product created", zap.Int64("id", product.ID), zap.String("name", product.Name))
	return s.Get(ctx, product.ID)
}

// Update overwrites only the fields present in in.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*models.Product, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}

	if in.Name.Set {
		name, ok := in.Name.Get()
		if !ok {
			return nil, apperr.InvalidInput("name must not be null")
		}
		name = strings.TrimSpace(name)
		if err := validate("name", name, nameRules()...); err != nil {
			return nil, err
		}
		if err := s.ensureNameFree(ctx, name, id); err != nil {
			return nil, err
		}
		fields[models.ProductColumnName] = name
	}

	if in.Brand.Set {
		brand, ok := in.Brand.Get()
		if !ok {
			return nil, apperr.InvalidInput("brand must not be null")
		}
		brand = strings.TrimSpace(brand)
		if err := validate("brand", brand, brandRules()...); err != nil {
			return nil, err
		}
		fields[models.ProductColumnBrand] = brand
	}

	if in.Price.Set {
		price, err := priceValue(in.Price)
		if err != nil {
			return nil, err
		}
		fields[models.ProductColumnPrice] = price
	}

	var categoryID *int64
	if in.CategoryID.Set {
		categoryID, err = s.categoryValue(ctx, in.CategoryID)
		if err != nil {
			return nil, err
		}
		fields[models.ProductColumnCategoryID] = nullable(categoryID)
	}

	if len(fields) == 0 {
		return existing, nil
	}
	if err := s.repo.UpdateByIDs(ctx, []int64{id}, fields); err != nil {
		name, _ := fields[models.ProductColumnName].(string)
		return nil, s.writeErr(err, name, categoryID, "failed to update product")
	}

	return s.Get(ctx, id)
}

func (s *Service) Remove(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteByIDs(ctx, []int64{id}); err != nil {
		return s.infra(err, "failed to delete product")
	}
	s.log.Info("product deleted", zap.Int64("id", id))
	return nil
}

// ListByCategory returns every product in the category, or an empty slice.
func (s *Service) ListByCategory(ctx context.Context, categoryID int64) ([]models.Product, error) {
	if categoryID <= 0 {
		return nil, apperr.InvalidInput("invalid category id %d", categoryID)
	}
	products, err := s.repo.FindByCategory(ctx, categoryID)
	if err != nil {
		return nil, s.infra(err, "failed to list category products")
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

// AdjustPrices multiplies the price of every matching product by
// 1 ± percent/100 in a single stored procedure call. An empty brand or a
// zero category imposes no filter.
func (s *Service) AdjustPrices(ctx context.Context, in AdjustPricesInput) error {
	if err := in.Validate(); err != nil {
		return apperr.Validation(err)
	}

	var brand, category any
	if b := strings.TrimSpace(in.Brand); b != "" {
		brand = b
	}
	if in.CategoryID != nil && *in.CategoryID != 0 {
		category = *in.CategoryID
	}
	increase := true
	if in.Increase != nil {
		increase = *in.Increase
	}

	err := s.repo.CallProcedure(ctx, models.ProcAdjustProductPrices, in.Percent, brand, category, increase)
	if err != nil {
		return s.infra(err, "failed to adjust product prices")
	}

	s.log.Info("product prices adjusted",
		zap.String("percent", in.Percent.String()),
		zap.Any("brand", brand),
		zap.Any("category_id", category),
		zap.Bool("increase", increase),
	)
	return nil
}

// BulkDelete removes every listed product. Unknown ids are ignored.
func (s *Service) BulkDelete(ctx context.Context, ids []int64) error {
	if err := checkIDs(ids); err != nil {
		return err
	}
	if err := s.repo.DeleteByIDs(ctx, ids); err != nil {
		return s.infra(err, "failed to delete products")
	}
	s.log.Info("products deleted", zap.Int64s("ids", ids))
	return nil
}

// BulkUpdate applies the same fields to every listed product in one
// statement.
func (s *Service) BulkUpdate(ctx context.Context, in BulkUpdateInput) error {
	if err := checkIDs(in.IDs); err != nil {
		return err
	}

	fields := map[string]any{}
	if in.Price.Set {
		price, err := priceValue(in.Price)
		if err != nil {
			return err
		}
		fields[models.ProductColumnPrice] = price
	}
	if in.Brand.Set {
		brand, ok := in.Brand.Get()
		if !ok {
			return apperr.InvalidInput("brand must not be null")
		}
		brand = strings.TrimSpace(brand)
		if err := validate("brand", brand, brandRules()...); err != nil {
			return err
		}
		fields[models.ProductColumnBrand] = brand
	}
	var categoryID *int64
	if in.CategoryID.Set {
		var err error
		categoryID, err = s.categoryValue(ctx, in.CategoryID)
		if err != nil {
			return err
		}
		fields[models.ProductColumnCategoryID] = nullable(categoryID)
	}
	if len(fields) == 0 {
		return apperr.InvalidInput("at least one of price, brand or categoryId is required")
	}

	if err := s.repo.UpdateByIDs(ctx, in.IDs, fields); err != nil {
		return s.writeErr(err, "", categoryID, "failed to update products")
	}
	s.log.Info("products updated", zap.Int64s("ids", in.IDs), zap.Int("fields", len(fields)))
	return nil
}

func (s *Service) NameExists(ctx context.Context, name string) (bool, error) {
	_, err := s.repo.FindByName(ctx, strings.TrimSpace(name))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, models.ErrProductNotFound):
		return false, nil
	default:
		return false, s.infra(err, "failed to check product name")
	}
}

// TotalPrice sums product prices over the whole catalog, or over one
// category when categoryID is set.
func (s *Service) TotalPrice(ctx context.Context, categoryID *int64) (decimal.Decimal, error) {
	if categoryID != nil {
		if _, err := s.findCategory(ctx, *categoryID); err != nil {
			return decimal.Zero, err
		}
	}
	total, err := s.repo.TotalPrice(ctx, categoryID)
	if err != nil {
		return decimal.Zero, s.infra(err, "failed to calculate total price")
	}
	return total, nil
}

func (s *Service) findCategory(ctx context.Context, id int64) (*models.Category, error) {
	if id <= 0 {
		return nil, apperr.InvalidInput("invalid category id %d", id)
	}
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrCategoryNotFound) {
			return nil, categoryNotFound(id)
		}
		return nil, s.infra(err, "failed to load category")
	}
	return category, nil
}

// categoryValue resolves a present categoryId field: null or zero clears,
// anything else must name an existing category.
func (s *Service) categoryValue(ctx context.Context, f patch.Field[int64]) (*int64, error) {
	id, ok := f.Get()
	if !ok || id == 0 {
		return nil, nil
	}
	category, err := s.findCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	return &category.ID, nil
}

func (s *Service) ensureNameFree(ctx context.Context, name string, self int64) error {
	existing, err := s.repo.FindByName(ctx, name)
	switch {
	case errors.Is(err, models.ErrProductNotFound):
		return nil
	case err != nil:
		return s.infra(err, "failed to check product name")
	case existing.ID != self:
		return duplicate(name)
	default:
		return nil
	}
}

// writeErr classifies a failed insert or update. The store reports a
// category deleted after it was checked as ErrCategoryNotFound.
func (s *Service) writeErr(err error, name string, categoryID *int64, message string) error {
	switch {
	case errors.Is(err, models.ErrDuplicateName):
		if name == "" {
			return apperr.Conflict("product name already exists")
		}
		return duplicate(name)
	case errors.Is(err, models.ErrCategoryNotFound) && categoryID != nil:
		return categoryNotFound(*categoryID)
	default:
		return s.infra(err, message)
	}
}

func (s *Service) infra(err error, message string) error {
	s.log.Error(message, zap.Error(err))
	return apperr.Infrastructure(err, message)
}

func priceValue(f patch.Field[decimal.Decimal]) (decimal.Decimal, error) {
	price, ok := f.Get()
	if !ok {
		return decimal.Zero, apperr.InvalidInput("price must not be null")
	}
	price = price.Round(2)
	if err := validate("price", price, priceRules()...); err != nil {
		return decimal.Zero, err
	}
	return price, nil
}

// nullable turns a nil id into an untyped nil so the store writes NULL.
func nullable(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

func duplicate(name string) error {
	return apperr.Conflict("product with name %q already exists", name)
}

func categoryNotFound(id int64) error {
	return apperr.NotFound("category with ID %d not found", id)
}

func checkID(id int64) error {
	if id <= 0 {
		return apperr.InvalidInput("invalid product id %d", id)
	}
	return nil
}

func checkIDs(ids []int64) error {
	if len(ids) == 0 {
		return apperr.InvalidInput("ids must not be empty")
	}
	for _, id := range ids {
		if err := checkID(id); err != nil {
			return err
		}
	}
	return nil
}
