package models

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/mytheresa/catalog-admin/app/listing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type statement struct {
	SQL  string
	Vars []any
}

// recorder captures the statements gorm builds without sending them.
type recorder struct {
	mu    sync.Mutex
	stmts []statement
}

func (r *recorder) record(db *gorm.DB) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stmts = append(r.stmts, statement{
		SQL:  db.Statement.SQL.String(),
		Vars: append([]any(nil), db.Statement.Vars...),
	})
}

func (r *recorder) find(t *testing.T, prefix string) statement {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.stmts {
		if strings.HasPrefix(s.SQL, prefix) {
			return s
		}
	}
	require.Failf(t, "statement not recorded", "no statement starting with %q in %v", prefix, r.stmts)
	return statement{}
}

func dryRunDB(t *testing.T) (*gorm.DB, *recorder) {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=catalog dbname=catalog sslmode=disable",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               logger.Discard,
	})
	require.NoError(t, err)

	rec := &recorder{}
	cb := db.Callback()
	require.NoError(t, cb.Query().After("gorm:query").Register("catalog:record_query", rec.record))
	require.NoError(t, cb.Update().After("gorm:update").Register("catalog:record_update", rec.record))
	require.NoError(t, cb.Delete().After("gorm:delete").Register("catalog:record_delete", rec.record))
	require.NoError(t, cb.Raw().After("gorm:raw").Register("catalog:record_raw", rec.record))
	return db, rec
}

func TestProductStatements(t *testing.T) {
	ctx := context.Background()

	t.Run("UpdateByIDs clears the category with NULL", func(t *testing.T) {
		db, rec := dryRunDB(t)
		repo := NewProductsRepository(db)

		err := repo.UpdateByIDs(ctx, []int64{1, 2}, map[string]any{ProductColumnCategoryID: nil})
		require.NoError(t, err)

		s := rec.find(t, "UPDATE")
		assert.Equal(t, `UPDATE "products" SET "category_id"=$1 WHERE id IN ($2,$3)`, s.SQL)
		assert.Equal(t, []any{nil, int64(1), int64(2)}, s.Vars)
	})

	t.Run("CallProcedure binds every argument", func(t *testing.T) {
		db, rec := dryRunDB(t)
		repo := NewProductsRepository(db)

		percent := decimal.NewFromInt(10)
		err := repo.CallProcedure(ctx, ProcAdjustProductPrices, percent, nil, int64(3), true)
		require.NoError(t, err)

		s := rec.find(t, "CALL")
		assert.Equal(t, `CALL "adjust_product_prices"($1, $2, $3, $4)`, s.SQL)
		require.Len(t, s.Vars, 4)
		assert.True(t, percent.Equal(s.Vars[0].(decimal.Decimal)))
		assert.Nil(t, s.Vars[1])
		assert.Equal(t, int64(3), s.Vars[2])
		assert.Equal(t, true, s.Vars[3])
	})

	t.Run("FindAndCount pages with a stable order", func(t *testing.T) {
		db, rec := dryRunDB(t)
		repo := NewProductsRepository(db)

		q, _ := listing.Resolve(listing.Params{Page: 3, Limit: 10, Sort: "price", Order: "DESC"}, "id", "price")
		_, _, err := repo.FindAndCount(ctx, q)
		require.NoError(t, err)

		count := rec.find(t, "SELECT count(*)")
		assert.Equal(t, `SELECT count(*) FROM "products"`, count.SQL)

		page := rec.find(t, "SELECT * ")
		assert.Contains(t, page.SQL, `ORDER BY "products"."price" DESC,"products"."id"`)
		assert.Contains(t, page.SQL, "LIMIT")
		assert.Contains(t, page.SQL, "OFFSET")
		assert.Contains(t, page.Vars, 10)
		assert.Contains(t, page.Vars, 20)
	})

	t.Run("DeleteByIDs removes the id set in one statement", func(t *testing.T) {
		db, rec := dryRunDB(t)
		repo := NewProductsRepository(db)

		require.NoError(t, repo.DeleteByIDs(ctx, []int64{4, 5, 6}))

		s := rec.find(t, "DELETE")
		assert.Equal(t, `DELETE FROM "products" WHERE id IN ($1,$2,$3)`, s.SQL)
		assert.Equal(t, []any{int64(4), int64(5), int64(6)}, s.Vars)
	})

	t.Run("CountByCategoryIDs filters on the foreign key", func(t *testing.T) {
		db, rec := dryRunDB(t)
		repo := NewProductsRepository(db)

		_, err := repo.CountByCategoryIDs(ctx, []int64{7, 8})
		require.NoError(t, err)

		s := rec.find(t, "SELECT count(*)")
		assert.Equal(t, `SELECT count(*) FROM "products" WHERE category_id IN ($1,$2)`, s.SQL)
		assert.Equal(t, []any{int64(7), int64(8)}, s.Vars)
	})
}
