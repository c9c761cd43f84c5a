package models

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrProductNotFound is returned when a product is not found.
	ErrProductNotFound = errors.New("product not found")
	// ErrCategoryNotFound is returned when a category is not found, including
	// when a product write references a category that no longer exists.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrDuplicateName is returned when a write violates a unique name.
	ErrDuplicateName = errors.New("name already exists")
	// ErrCategoryInUse is returned when deleting a category still referenced
	// by products.
	ErrCategoryInUse = errors.New("category is referenced by products")
)

// SQLSTATE codes the repositories translate.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pgCode(err) == pgUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return pgCode(err) == pgForeignKeyViolation
}
