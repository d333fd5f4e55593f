package requester

import (
	"context"
	"net/http"
	"strconv"
)

// Resource is the typed view of one content resource, e.g. "works".
type Resource[T any] struct {
	c *Client
}

func NewResource[T any](c *Client) Resource[T] {
	return Resource[T]{c: c}
}

func (r Resource[T]) CreateData(ctx context.Context, e *T, resource, token string) (*T, error) {
	var out T
	if err := r.c.doJSON(ctx, http.MethodPost, r.c.url(resource), token, e, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r Resource[T]) DeleteData(ctx context.Context, resource string, generalId int, token string) error {
	return r.c.DeleteData(ctx, resource, generalId, token)
}

func (r Resource[T]) FetchData(ctx context.Context, resource string) ([]T, error) {
	var out []T
	if err := r.c.doJSON(ctx, http.MethodGet, r.c.url(resource), "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r Resource[T]) FetchOne(ctx context.Context, resource string, id int) (*T, error) {
	var out T
	if err := r.c.doJSON(ctx, http.MethodGet, r.c.url(resource, strconv.Itoa(id)), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r Resource[T]) UpdateData(ctx context.Context, id int, e *T, resource, token string) (*T, error) {
	var out T
	if err := r.c.doJSON(ctx, http.MethodPut, r.c.url(resource, strconv.Itoa(id)), token, e, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
