package upstream

import (
	"context"
	"encoding/json"
	"net/http"

	dErrors "admin-gateway/pkg/domainerrors"
)

// Get fetches and decodes a JSON resource. An empty 2xx body yields the zero
// value; a body that does not match T is a schema_mismatch, not an upstream
// error, so callers can tell "the API changed shape" apart from "the API is
// down".
func Get[T any](ctx context.Context, c *Client, path string, opts ...CallOption) (T, error) {
	return call[T](ctx, c, http.MethodGet, path, nil, opts...)
}

func Post[T any](ctx context.Context, c *Client, path string, body any, opts ...CallOption) (T, error) {
	return call[T](ctx, c, http.MethodPost, path, body, opts...)
}

func Put[T any](ctx context.Context, c *Client, path string, body any, opts ...CallOption) (T, error) {
	return call[T](ctx, c, http.MethodPut, path, body, opts...)
}

func Delete[T any](ctx context.Context, c *Client, path string, opts ...CallOption) (T, error) {
	return call[T](ctx, c, http.MethodDelete, path, nil, opts...)
}

func call[T any](ctx context.Context, c *Client, method, path string, body any, opts ...CallOption) (T, error) {
	var out T
	payload, err := c.Do(ctx, method, path, body, opts...)
	if err != nil {
		return out, err
	}
	if len(payload) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return out, dErrors.Wrap(err, dErrors.CodeSchema, "upstream response did not match the expected shape")
	}
	return out, nil
}
