package categories

import (
	"context"
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/mytheresa/catalog-admin/app/apperr"
	"github.com/mytheresa/catalog-admin/app/listing"
	"github.com/mytheresa/catalog-admin/models"
	"go.uber.org/zap"
)

// SortFields lists the columns a category listing may be ordered by.
var SortFields = []string{"id", "name"}

type Repository interface {
	FindByID(ctx context.Context, id int64) (*models.Category, error)
	FindByIDWithProducts(ctx context.Context, id int64) (*models.Category, error)
	FindByName(ctx context.Context, name string) (*models.Category, error)
	FindAndCount(ctx context.Context, q listing.Query) ([]models.Category, int64, error)
	Create(ctx context.Context, category *models.Category) error
	UpdateByIDs(ctx context.Context, ids []int64, fields map[string]any) error
	DeleteByIDs(ctx context.Context, ids []int64) error
}

// ProductCounter reports how many products reference a set of categories.
type ProductCounter interface {
	CountByCategoryIDs(ctx context.Context, ids []int64) (int64, error)
}

type CreateInput struct {
	Name string `json:"name"`
}

func (in CreateInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, nameRules()...),
	)
}

type UpdateInput struct {
	Name string `json:"name"`
}

func (in UpdateInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, nameRules()...),
	)
}

func nameRules() []validation.Rule {
	return []validation.Rule{
		validation.Required.Error("name is required"),
		validation.RuneLength(1, 255).Error("name must be 1-255 characters"),
	}
}

type Service struct {
	repo     Repository
	products ProductCounter
	log      *zap.Logger
}

func NewService(repo Repository, products ProductCounter, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		products: products,
		log:      log.Named("categories"),
	}
}

// List returns one page of categories with their products. An unknown sort
// column falls back to id.
func (s *Service) List(ctx context.Context, p listing.Params) (*listing.Page[models.Category], error) {
	q, page := listing.Resolve(p, SortFields...)
	rows, total, err := s.repo.FindAndCount(ctx, q)
	if err != nil {
		return nil, s.infra(err, "failed to list categories")
	}
	return listing.NewPage(rows, total, page, q), nil
}

func (s *Service) Get(ctx context.Context, id int64) (*models.Category, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	category, err := s.repo.FindByIDWithProducts(ctx, id)
	if err != nil {
		return nil, s.lookupErr(err, id)
	}
	if category.Products == nil {
		category.Products = []models.Product{}
	}
	return category, nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := in.Validate(); err != nil {
		return nil, apperr.Validation(err)
	}

	if err := s.ensureNameFree(ctx, in.Name, 0); err != nil {
		return nil, err
	}

	category := &models.Category{Name: in.Name}
	if err := s.repo.Create(ctx, category); err != nil {
		if errors.Is(err, models.ErrDuplicateName) {
			return nil, duplicate(in.Name)
		}
		return nil, s.infra(err, "failed to create category")
	}
	category.Products = []models.Product{}

	s.log.Info("category created", zap.Int64("id", category.ID), zap.String("name", category.Name))
	return category, nil
}

func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*models.Category, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := in.Validate(); err != nil {
		return nil, apperr.Validation(err)
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, s.lookupErr(err, id)
	}
	if err := s.ensureNameFree(ctx, in.Name, id); err != nil {
		return nil, err
	}

	err := s.repo.UpdateByIDs(ctx, []int64{id}, map[string]any{
		models.CategoryColumnName: in.Name,
	})
	if err != nil {
		if errors.Is(err, models.ErrDuplicateName) {
			return nil, duplicate(in.Name)
		}
		return nil, s.infra(err, "failed to update category")
	}

	return s.Get(ctx, id)
}

// Remove deletes a category that no product references.
func (s *Service) Remove(ctx context.Context, id int64) error {
	if err := checkID(id); err != nil {
		return err
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return s.lookupErr(err, id)
	}

	count, err := s.products.CountByCategoryIDs(ctx, []int64{id})
	if err != nil {
		return s.infra(err, "failed to count category products")
	}
	if count > 0 {
		return apperr.Conflict("cannot delete category %d: it has %d associated products", id, count)
	}

	return s.delete(ctx, []int64{id})
}

// BulkDelete deletes every listed category, or none of them when any is
// still referenced by a product.
func (s *Service) BulkDelete(ctx context.Context, ids []int64) error {
	if err := checkIDs(ids); err != nil {
		return err
	}

	count, err := s.products.CountByCategoryIDs(ctx, ids)
	if err != nil {
		return s.infra(err, "failed to count category products")
	}
	if count > 0 {
		return apperr.Conflict("cannot delete categories: %d associated products found", count)
	}

	return s.delete(ctx, ids)
}

func (s *Service) NameExists(ctx context.Context, name string) (bool, error) {
	_, err := s.repo.FindByName(ctx, strings.TrimSpace(name))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, models.ErrCategoryNotFound):
		return false, nil
	default:
		return false, s.infra(err, "failed to check category name")
	}
}

func (s *Service) delete(ctx context.Context, ids []int64) error {
	if err := s.repo.DeleteByIDs(ctx, ids); err != nil {
		// A product assigned after the count still trips the foreign key.
		if errors.Is(err, models.ErrCategoryInUse) {
			return apperr.Conflict("cannot delete categories %v: products still reference them", ids)
		}
		return s.infra(err, "failed to delete categories")
	}
	s.log.Info("categories deleted", zap.Int64s("ids", ids))
	return nil
}

// ensureNameFree fails with Conflict when a category other than self
// already holds name.
func (s *Service) ensureNameFree(ctx context.Context, name string, self int64) error {
	existing, err := s.repo.FindByName(ctx, name)
	switch {
	case errors.Is(err, models.ErrCategoryNotFound):
		return nil
	case err != nil:
		return s.infra(err, "failed to check category name")
	case existing.ID != self:
		return duplicate(name)
	default:
		return nil
	}
}

func (s *Service) lookupErr(err error, id int64) error {
	if errors.Is(err, models.ErrCategoryNotFound) {
		return apperr.NotFound("category with ID %d not found", id)
	}
	return s.infra(err, "failed to load category")
}

func (s *Service) infra(err error, message string) error {
	s.log.Error(message, zap.Error(err))
	return apperr.Infrastructure(err, message)
}

func duplicate(name string) error {
	return apperr.Conflict("category with name %q already exists", name)
}

func checkID(id int64) error {
	if id <= 0 {
		return apperr.InvalidInput("invalid category id %d", id)
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
