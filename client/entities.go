package client

import (
	"context"
	"net/url"

	"github.com/openadmin/adminkit/client/auth/store"
	"github.com/openadmin/adminkit/schema"
	"github.com/openadmin/adminkit/transport"
)

// EntitiesClient provides generic CRUD over admin entity records. Create and
// Update accept request options so callers can pass an idempotency key and
// make the write retryable.
type EntitiesClient struct {
	*subClient
}

func newEntitiesClient(pipeline *transport.Pipeline, s store.Store) *EntitiesClient {
	return &EntitiesClient{subClient: newSubClient(pipeline, s)}
}

func entityPath(entityType string, id string) string {
	ret := "/v1/entities/" + url.PathEscape(entityType)
	if id != "" {
		ret += "/" + url.PathEscape(id)
	}
	return ret
}

// List returns one page of entities; pass the previous page's cursor to
// continue.
func (e *EntitiesClient) List(ctx context.Context, entityType, cursor string) (*schema.EntityList, error) {
	ret := &schema.EntityList{}
	options := []transport.RequestOption{}
	if cursor != "" {
		options = append(options, transport.WithQuery("cursor", cursor))
	}
	if err := e.pipeline.Do(ctx, "GET", entityPath(entityType, ""), nil, ret, options...); err != nil {
		return nil, err
	}
	return ret, nil
}

func (e *EntitiesClient) Get(ctx context.Context, entityType, id string) (schema.Entity, error) {
	ret := schema.Entity{}
	if err := e.pipeline.Do(ctx, "GET", entityPath(entityType, id), nil, &ret); err != nil {
		return nil, err
	}
	return ret, nil
}

func (e *EntitiesClient) Create(ctx context.Context, entityType string, entity schema.Entity, options ...transport.RequestOption) (schema.Entity, error) {
	ret := schema.Entity{}
	if err := e.pipeline.Do(ctx, "POST", entityPath(entityType, ""), entity, &ret, options...); err != nil {
		return nil, err
	}
	return ret, nil
}

func (e *EntitiesClient) Update(ctx context.Context, entityType, id string, entity schema.Entity, options ...transport.RequestOption) (schema.Entity, error) {
	ret := schema.Entity{}
	if err := e.pipeline.Do(ctx, "PUT", entityPath(entityType, id), entity, &ret, options...); err != nil {
		return nil, err
	}
	return ret, nil
}

func (e *EntitiesClient) Delete(ctx context.Context, entityType, id string, options ...transport.RequestOption) error {
	return e.pipeline.Do(ctx, "DELETE", entityPath(entityType, id), nil, nil, options...)
}
