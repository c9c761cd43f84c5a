package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/mytheresa/catalog-admin/app/apperr"
	"github.com/mytheresa/catalog-admin/app/listing"
	"github.com/spf13/cast"
)

// PathID parses the named path wildcard as a positive decimal id.
func PathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.InvalidInput("invalid %s %q", name, raw)
	}
	return id, nil
}

// QueryID parses an optional positive id from the query string. A missing
// or empty parameter yields nil.
func QueryID(r *http.Request, name string) (*int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, apperr.InvalidInput("invalid %s %q", name, raw)
	}
	return &id, nil
}

// ListParams reads page, limit, sort and order from the query string.
// Malformed numbers are treated as absent so listing falls back to defaults.
func ListParams(r *http.Request) listing.Params {
	q := r.URL.Query()
	return listing.Params{
		Page:  queryInt(q.Get("page")),
		Limit: queryInt(q.Get("limit")),
		Sort:  q.Get("sort"),
		Order: q.Get("order"),
	}
}

// queryInt reads a decimal number. Leading zeros are dropped first since
// cast would otherwise parse "010" as octal and "0x10" as hex.
func queryInt(raw string) int {
	return cast.ToInt(strings.TrimLeft(strings.TrimSpace(raw), "0"))
}
