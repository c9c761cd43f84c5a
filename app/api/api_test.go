package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mytheresa/catalog-admin/app/apperr"
	"github.com/mytheresa/catalog-admin/app/listing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWriteError(t *testing.T) {
	testCases := []struct {
		name               string
		err                error
		expectedStatusCode int
		expectedBody       string
	}{
		{"Not found", apperr.NotFound("product with ID 3 not found"), http.StatusNotFound, `{"error":"product with ID 3 not found"}`},
		{"Conflict", apperr.Conflict("taken"), http.StatusConflict, `{"error":"taken"}`},
		{"Invalid input", apperr.InvalidInput("bad"), http.StatusBadRequest, `{"error":"bad"}`},
		{"Infrastructure hides the cause", apperr.Infrastructure(errors.New("dial tcp: refused"), "failed to list products"), http.StatusInternalServerError, `{"error":"failed to list products"}`},
		{"Untyped error", errors.New("boom"), http.StatusInternalServerError, `{"error":"internal server error"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tc.err)

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, tc.expectedBody, rec.Body.String())
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	type input struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	testCases := []struct {
		name        string
		body        string
		expectedErr string
	}{
		{name: "Valid", body: `{"name":"Shoes","count":2}`},
		{name: "Empty body", body: ``, expectedErr: "request body must not be empty"},
		{name: "Syntax error", body: `{"name":`, expectedErr: "Invalid JSON body"},
		{name: "Wrong type", body: `{"count":"two"}`, expectedErr: `invalid value for field "count"`},
		{name: "Unknown field", body: `{"name":"Shoes","code":"x"}`, expectedErr: `unknown field "code"`},
		{name: "Trailing data", body: `{"name":"Shoes"}{"name":"Bags"}`, expectedErr: "single JSON object"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var dst input
			err := DecodeJSON(req, &dst)
			if tc.expectedErr == "" {
				require.NoError(t, err)
				assert.Equal(t, input{Name: "Shoes", Count: 2}, dst)
				return
			}
			assert.ErrorIs(t, err, apperr.ErrInvalidInput)
			assert.ErrorContains(t, err, tc.expectedErr)
		})
	}
}

func TestListParams(t *testing.T) {
	testCases := []struct {
		name     string
		target   string
		expected listing.Params
	}{
		{
			name:     "Malformed limit is dropped",
			target:   "/products?page=3&limit=abc&sort=price&order=desc",
			expected: listing.Params{Page: 3, Limit: 0, Sort: "price", Order: "desc"},
		},
		{
			name:     "Leading zeros are decimal",
			target:   "/products?page=010&limit=09",
			expected: listing.Params{Page: 10, Limit: 9},
		},
		{
			name:     "Hex is not a number",
			target:   "/products?page=0x10",
			expected: listing.Params{},
		},
		{
			name:     "All zeros",
			target:   "/products?page=000&limit=0",
			expected: listing.Params{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ListParams(httptest.NewRequest(http.MethodGet, tc.target, nil)))
		})
	}
}

func TestQueryID(t *testing.T) {
	testCases := []struct {
		name     string
		target   string
		expected *int64
		wantErr  bool
	}{
		{name: "Absent", target: "/x"},
		{name: "Empty", target: "/x?categoryId="},
		{name: "Valid", target: "/x?categoryId=12", expected: func() *int64 { v := int64(12); return &v }()},
		{name: "Zero", target: "/x?categoryId=0", wantErr: true},
		{name: "Not a number", target: "/x?categoryId=twelve", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			id, err := QueryID(httptest.NewRequest(http.MethodGet, tc.target, nil), "categoryId")
			if tc.wantErr {
				assert.ErrorIs(t, err, apperr.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, id)
		})
	}
}

func TestRequestLoggerAndRecoverer(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	log := zap.New(core)

	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("nil map write")
	}), RequestLogger(log), Recoverer(log))

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))

	require.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
	entries := logs.FilterMessage("HTTP request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-123", fields["request_id"])
	assert.Equal(t, int64(http.StatusInternalServerError), fields["status"])
}

func TestRequestLoggerGeneratesID(t *testing.T) {
	h := RequestLogger(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	testCases := []struct {
		name               string
		origins            []string
		method             string
		origin             string
		expectedStatusCode int
		expectedAllow      string
	}{
		{"Allowed origin", []string{"https://admin.example.com"}, http.MethodGet, "https://admin.example.com", http.StatusOK, "https://admin.example.com"},
		{"Foreign origin", []string{"https://admin.example.com"}, http.MethodGet, "https://evil.example.com", http.StatusOK, ""},
		{"Wildcard", []string{"*"}, http.MethodGet, "https://any.example.com", http.StatusOK, "https://any.example.com"},
		{"Preflight", []string{"*"}, http.MethodOptions, "https://any.example.com", http.StatusNoContent, "https://any.example.com"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/products", nil)
			req.Header.Set("Origin", tc.origin)
			if tc.method == http.MethodOptions {
				req.Header.Set("Access-Control-Request-Method", http.MethodPut)
			}
			rec := httptest.NewRecorder()
			CORS(tc.origins)(next).ServeHTTP(rec, req)

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			assert.Equal(t, tc.expectedAllow, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}
