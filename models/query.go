package models

import (
	"context"

	"github.com/mytheresa/catalog-admin/app/listing"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// orderBy builds the ORDER BY for a resolved listing query, with id as a
// tie-breaker so pages are stable. The sort column is already allow-listed.
func orderBy(table string, q listing.Query) clause.OrderBy {
	cols := []clause.OrderByColumn{{
		Column: clause.Column{Table: table, Name: q.Sort},
		Desc:   q.Desc(),
	}}
	if q.Sort != listing.DefaultSort {
		cols = append(cols, clause.OrderByColumn{
			Column: clause.Column{Table: table, Name: listing.DefaultSort},
		})
	}
	return clause.OrderBy{Columns: cols}
}

// findAndCount runs the page query and the total count concurrently.
// page receives a fresh session and must apply its own preloads.
func findAndCount[T any](ctx context.Context, db *gorm.DB, table string, q listing.Query,
	page func(tx *gorm.DB) *gorm.DB) ([]T, int64, error) {
	var (
		rows  []T
		total int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var model T
		return db.WithContext(gctx).Model(&model).Count(&total).Error
	})
	g.Go(func() error {
		tx := db.WithContext(gctx).
			Clauses(orderBy(table, q)).
			Offset(q.Offset).
			Limit(q.Limit)
		return page(tx).Find(&rows).Error
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}
