// Package api holds the JSON plumbing and middleware shared by the HTTP
// handlers.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/mytheresa/catalog-admin/app/apperr"
)

// maxBodyBytes caps request bodies accepted by DecodeJSON.
const maxBodyBytes = 1 << 20

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// WriteJSON writes v as the response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps err onto its HTTP status and writes {"error": message}.
func WriteError(w http.ResponseWriter, err error) {
	WriteJSON(w, apperr.KindOf(err).HTTPStatus(), ErrorResponse{Error: apperr.Message(err)})
}

// DecodeJSON decodes the request body into dst, rejecting unknown fields
// and trailing data.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.Is(err, io.EOF):
			return apperr.InvalidInput("request body must not be empty")
		case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
			return apperr.InvalidInput("Invalid JSON body")
		case errors.As(err, &typeErr):
			return apperr.InvalidInput("invalid value for field %q", typeErr.Field)
		default:
			// Unknown fields surface as a plain error from encoding/json.
			return apperr.InvalidInput("%s", err.Error())
		}
	}
	if dec.More() {
		return apperr.InvalidInput("request body must contain a single JSON object")
	}
	return nil
}
