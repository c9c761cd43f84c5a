package products

import (
	"context"
	"net/http"

	"github.com/mytheresa/catalog-admin/app/api"
	"github.com/mytheresa/catalog-admin/app/listing"
	"github.com/mytheresa/catalog-admin/models"
	"github.com/shopspring/decimal"
)

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type ProductResponse struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Brand    string    `json:"brand"`
	Price    float64   `json:"price"`
	Category *Category `json:"category"`
}

type ListResponse struct {
	Items []ProductResponse `json:"items"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

type BulkDeleteRequest struct {
	IDs []int64 `json:"ids"`
}

type NameExistsResponse struct {
	Exists bool `json:"exists"`
}

type TotalPriceResponse struct {
	Total      float64 `json:"total"`
	CategoryID *int64  `json:"categoryId,omitempty"`
}

type ProductProvider interface {
	List(ctx context.Context, p listing.Params) (*listing.Page[models.Product], error)
	Get(ctx context.Context, id int64) (*models.Product, error)
	Create(ctx context.Context, in CreateInput) (*models.Product, error)
	Update(ctx context.Context, id int64, in UpdateInput) (*models.Product, error)
	Remove(ctx context.Context, id int64) error
	ListByCategory(ctx context.Context, categoryID int64) ([]models.Product, error)
	AdjustPrices(ctx context.Context, in AdjustPricesInput) error
	BulkDelete(ctx context.Context, ids []int64) error
	BulkUpdate(ctx context.Context, in BulkUpdateInput) error
	NameExists(ctx context.Context, name string) (bool, error)
	TotalPrice(ctx context.Context, categoryID *int64) (decimal.Decimal, error)
}

type ProductHandler struct {
	svc ProductProvider
}

func NewProductHandler(s ProductProvider) *ProductHandler {
	return &ProductHandler{svc: s}
}

func (h *ProductHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /products", h.HandleGetAll)
	mux.HandleFunc("POST /products", h.HandleCreate)
	mux.HandleFunc("GET /products/total-price", h.HandleTotalPrice)
	mux.HandleFunc("GET /products/check-name/{name}", h.HandleCheckName)
	mux.HandleFunc("GET /products/category/{categoryId}", h.HandleGetByCategory)
	mux.HandleFunc("POST /products/adjust-prices", h.HandleAdjustPrices)
	mux.HandleFunc("POST /products/bulk-delete", h.HandleBulkDelete)
	mux.HandleFunc("POST /products/bulk-update", h.HandleBulkUpdate)
	mux.HandleFunc("GET /products/{id}", h.HandleGetProduct)
	mux.HandleFunc("PUT /products/{id}", h.HandleUpdate)
	mux.HandleFunc("DELETE /products/{id}", h.HandleDelete)
}

func toResponse(p *models.Product) ProductResponse {
	resp := ProductResponse{
		ID:    p.ID,
		Name:  p.Name,
		Brand: p.Brand,
		Price: p.Price.InexactFloat64(),
	}
	if p.Category != nil {
		resp.Category = &Category{
			ID:   p.Category.ID,
			Name: p.Category.Name,
		}
	}
	return resp
}

func toResponses(products []models.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = toResponse(&products[i])
	}
	return out
}

func (h *ProductHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.List(r.Context(), api.ListParams(r))
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, ListResponse{
		Items: toResponses(page.Items),
		Total: page.Total,
		Page:  page.Page,
		Limit: page.Limit,
	})
}

func (h *ProductHandler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathID(r, "id")
	if err != nil {
		api.WriteError(w, err)
		return
	}

	product, err := h.svc.Get(r.Context(), id)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, toResponse(product))
}

func (h *ProductHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input CreateInput
	if err := api.DecodeJSON(r, &input); err != nil {
		api.WriteError(w, err)
		return
	}

	product, err := h.svc.Create(r.Context(), input)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, toResponse(product))
}

func (h *ProductHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathID(r, "id")
	if err != nil {
		api.WriteError(w, err)
		return
	}

	var input UpdateInput
	if err := api.DecodeJSON(r, &input); err != nil {
		api.WriteError(w, err)
		return
	}

	product, err := h.svc.Update(r.Context(), id, input)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, toResponse(product))
}

func (h *ProductHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathID(r, "id")
	if err != nil {
		api.WriteError(w, err)
		return
	}

	if err := h.svc.Remove(r.Context(), id); err != nil {
		api.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) HandleGetByCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := api.PathID(r, "categoryId")
	if err != nil {
		api.WriteError(w, err)
		return
	}

	products, err := h.svc.ListByCategory(r.Context(), categoryID)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, toResponses(products))
}

func (h *ProductHandler) HandleAdjustPrices(w http.ResponseWriter, r *http.Request) {
	var input AdjustPricesInput
	if err := api.DecodeJSON(r, &input); err != nil {
		api.WriteError(w, err)
		return
	}

	if err := h.svc.AdjustPrices(r.Context(), input); err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, api.MessageResponse{Message: "Prices adjusted successfully"})
}

func (h *ProductHandler) HandleBulkDelete(w http.ResponseWriter, r *http.Request) {
	var input BulkDeleteRequest
	if err := api.DecodeJSON(r, &input); err != nil {
		api.WriteError(w, err)
		return
	}

	if err := h.svc.BulkDelete(r.Context(), input.IDs); err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, api.MessageResponse{Message: "Products deleted successfully"})
}

func (h *ProductHandler) HandleBulkUpdate(w http.ResponseWriter, r *http.Request) {
	var input BulkUpdateInput
	if err := api.DecodeJSON(r, &input); err != nil {
		api.WriteError(w, err)
		return
	}

	if err := h.svc.BulkUpdate(r.Context(), input); err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, api.MessageResponse{Message: "Products updated successfully"})
}

func (h *ProductHandler) HandleCheckName(w http.ResponseWriter, r *http.Request) {
	exists, err := h.svc.NameExists(r.Context(), r.PathValue("name"))
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, NameExistsResponse{Exists: exists})
}

func (h *ProductHandler) HandleTotalPrice(w http.ResponseWriter, r *http.Request) {
	categoryID, err := api.QueryID(r, "categoryId")
	if err != nil {
		api.WriteError(w, err)
		return
	}

	total, err := h.svc.TotalPrice(r.Context(), categoryID)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, TotalPriceResponse{
		Total:      total.InexactFloat64(),
		CategoryID: categoryID,
	})
}
