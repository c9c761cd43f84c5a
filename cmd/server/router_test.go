package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mytheresa/catalog-admin/models/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := memstore.New()
	srv := httptest.NewServer(newRouter(
		stores{categories: store.Categories(), products: store.Products()},
		[]string{"http://localhost:5173"},
		zap.NewNop(),
	))
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, srv *httptest.Server, method, path, body string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	if resp.StatusCode != http.StatusNoContent {
		_ = json.NewDecoder(resp.Body).Decode(&out)
	}
	return resp.StatusCode, out
}

func TestCatalogFlow(t *testing.T) {
	srv := newTestServer(t)

	status, body := call(t, srv, http.MethodPost, "/categories", `{"name":"Shoes"}`)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, float64(1), body["id"])

	status, _ = call(t, srv, http.MethodPost, "/products", `{"name":"Sneaker","brand":"Acme","price":100,"categoryId":1}`)
	require.Equal(t, http.StatusCreated, status)
	status, _ = call(t, srv, http.MethodPost, "/products", `{"name":"Boot","brand":"Globex","price":"50.00","categoryId":1}`)
	require.Equal(t, http.StatusCreated, status)

	status, body = call(t, srv, http.MethodPost, "/products", `{"name":"Orphan","price":10,"categoryId":99}`)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "category with ID 99 not found", body["error"])

	status, body = call(t, srv, http.MethodDelete, "/categories/1", "")
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, body["error"], "2 associated products")

	status, _ = call(t, srv, http.MethodPost, "/products/adjust-prices", `{"percent":10,"brand":"Acme"}`)
	require.Equal(t, http.StatusOK, status)
	status, body = call(t, srv, http.MethodGet, "/products/1", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 110.0, body["price"])

	status, body = call(t, srv, http.MethodGet, "/products/total-price?categoryId=1", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 160.0, body["total"])

	status, _ = call(t, srv, http.MethodPut, "/products/2", `{"price":-1}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = call(t, srv, http.MethodPost, "/products/bulk-update", `{"ids":[1,2],"categoryId":null}`)
	require.Equal(t, http.StatusOK, status)

	status, body = call(t, srv, http.MethodGet, "/categories/1", "")
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["products"])

	status, _ = call(t, srv, http.MethodDelete, "/categories/1", "")
	assert.Equal(t, http.StatusNoContent, status)

	status, body = call(t, srv, http.MethodGet, "/products?page=1&limit=1&sort=bogus", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(2), body["total"])
	items, ok := body["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
	assert.Equal(t, "Sneaker", items[0].(map[string]any)["name"])
}

func TestMiddlewareStack(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/products", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp, err = srv.Client().Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}
