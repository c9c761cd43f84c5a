package categories

import (
	"context"
	"net/http"

	"github.com/mytheresa/catalog-admin/app/api"
	"github.com/mytheresa/catalog-admin/app/listing"
	"github.com/mytheresa/catalog-admin/models"
)

type ProductResponse struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Brand string  `json:"brand"`
	Price float64 `json:"price"`
}

type CategoryResponse struct {
	ID       int64             `json:"id"`
	Name     string            `json:"name"`
	Products []ProductResponse `json:"products"`
}

type ListResponse struct {
	Items []CategoryResponse `json:"items"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

type BulkDeleteRequest struct {
	IDs []int64 `json:"ids"`
}

type NameExistsResponse struct {
	Exists bool `json:"exists"`
}

type CategoryProvider interface {
	List(ctx context.Context, p listing.Params) (*listing.Page[models.Category], error)
	Get(ctx context.Context, id int64) (*models.Category, error)
	Create(ctx context.Context, in CreateInput) (*models.Category, error)
	Update(ctx context.Context, id int64, in UpdateInput) (*models.Category, error)
	Remove(ctx context.Context, id int64) error
	BulkDelete(ctx context.Context, ids []int64) error
	NameExists(ctx context.Context, name string) (bool, error)
}

type CategoryHandler struct {
	svc CategoryProvider
}

func NewCategoryHandler(s CategoryProvider) *CategoryHandler {
	return &CategoryHandler{svc: s}
}

func (h *CategoryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /categories", h.HandleGetAll)
	mux.HandleFunc("POST /categories", h.HandleCreate)
	mux.HandleFunc("POST /categories/bulk-delete", h.HandleBulkDelete)
	mux.HandleFunc("GET /categories/check-name/{name}", h.HandleCheckName)
	mux.HandleFunc("GET /categories/{id}", h.HandleGet)
	mux.HandleFunc("PUT /categories/{id}", h.HandleUpdate)
	mux.HandleFunc("DELETE /categories/{id}", h.HandleDelete)
}

func toResponse(c *models.Category) CategoryResponse {
	products := make([]ProductResponse, len(c.Products))
	for i, p := range c.Products {
		products[i] = ProductResponse{
			ID:    p.ID,
			Name:  p.Name,
			Brand: p.Brand,
			Price: p.Price.InexactFloat64(),
		}
	}
	return CategoryResponse{
		ID:       c.ID,
		Name:     c.Name,
		Products: products,
	}
}

func (h *CategoryHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.List(r.Context(), api.ListParams(r))
	if err != nil {
		api.WriteError(w, err)
		return
	}

	items := make([]CategoryResponse, len(page.Items))
	for i := range page.Items {
		items[i] = toResponse(&page.Items[i])
	}
	api.WriteJSON(w, http.StatusOK, ListResponse{
		Items: items,
		Total: page.Total,
		Page:  page.Page,
		Limit: page.Limit,
	})
}

func (h *CategoryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathID(r, "id")
	if err != nil {
		api.WriteError(w, err)
		return
	}

	category, err := h.svc.Get(r.Context(), id)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, toResponse(category))
}

func (h *CategoryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input CreateInput
	if err := api.DecodeJSON(r, &input); err != nil {
		api.WriteError(w, err)
		return
	}

	category, err := h.svc.Create(r.Context(), input)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, toResponse(category))
}

func (h *CategoryHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
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

	category, err := h.svc.Update(r.Context(), id, input)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, toResponse(category))
}

func (h *CategoryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
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

func (h *CategoryHandler) HandleBulkDelete(w http.ResponseWriter, r *http.Request) {
	var input BulkDeleteRequest
	if err := api.DecodeJSON(r, &input); err != nil {
		api.WriteError(w, err)
		return
	}

	if err := h.svc.BulkDelete(r.Context(), input.IDs); err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, api.MessageResponse{Message: "Categories deleted successfully"})
}

func (h *CategoryHandler) HandleCheckName(w http.ResponseWriter, r *http.Request) {
	exists, err := h.svc.NameExists(r.Context(), r.PathValue("name"))
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, NameExistsResponse{Exists: exists})
}
