package main

import (
	"net/http"

	"github.com/mytheresa/catalog-admin/app/api"
	"github.com/mytheresa/catalog-admin/app/categories"
	"github.com/mytheresa/catalog-admin/app/products"
	"go.uber.org/zap"
)

// productStore is what both store drivers provide for products.
type productStore interface {
	products.Repository
	categories.ProductCounter
}

type stores struct {
	categories categories.Repository
	products   productStore
}

func newRouter(s stores, allowedOrigins []string, log *zap.Logger) http.Handler {
	categorySvc := categories.NewService(s.categories, s.products, log)
	productSvc := products.NewService(s.products, s.categories, log)

	mux := http.NewServeMux()
	categories.NewCategoryHandler(categorySvc).RegisterRoutes(mux)
	products.NewProductHandler(productSvc).RegisterRoutes(mux)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		api.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return api.Chain(mux,
		api.RequestLogger(log),
		api.Recoverer(log),
		api.CORS(allowedOrigins),
	)
}
