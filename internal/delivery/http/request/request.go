package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

// ErrMissingParam is returned when a route parameter is empty
var ErrMissingParam = errors.New("missing route parameter")

// DecodeJSON decodes a single JSON value from the body, capped at 1MB
func DecodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	if dec.More() {
		return errors.New("decode body: unexpected data after JSON value")
	}
	return nil
}

// GetUUIDParam parses the chi route parameter key as a UUID
func GetUUIDParam(r *http.Request, key string) (uuid.UUID, error) {
	raw := chi.URLParam(r, key)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%w: %s", ErrMissingParam, key)
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parameter %s: %w", key, err)
	}
	return id, nil
}

// FormOrQuery returns a form field, falling back to the query string
func FormOrQuery(r *http.Request, key string) string {
	if err := r.ParseForm(); err == nil {
		if v := r.PostForm.Get(key); v != "" {
			return v
		}
	}
	return r.URL.Query().Get(key)
}
