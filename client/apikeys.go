package client

import (
	"context"
	"net/url"

	"github.com/openadmin/adminkit/client/auth/store"
	"github.com/openadmin/adminkit/schema"
	"github.com/openadmin/adminkit/transport"
)

// APIKeysClient manages machine-to-machine API keys.
type APIKeysClient struct {
	*subClient
}

func newAPIKeysClient(pipeline *transport.Pipeline, s store.Store) *APIKeysClient {
	return &APIKeysClient{subClient: newSubClient(pipeline, s)}
}

func (a *APIKeysClient) List(ctx context.Context) ([]schema.APIKey, error) {
	var ret []schema.APIKey
	if err := a.pipeline.Do(ctx, "GET", "/v1/apikeys", nil, &ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// Create returns the key plus its one-time secret.
func (a *APIKeysClient) Create(ctx context.Context, request *schema.CreateAPIKeyRequest, options ...transport.RequestOption) (*schema.CreateAPIKeyResponse, error) {
	ret := &schema.CreateAPIKeyResponse{}
	if err := a.pipeline.Do(ctx, "POST", "/v1/apikeys", request, ret, options...); err != nil {
		return nil, err
	}
	return ret, nil
}

func (a *APIKeysClient) Revoke(ctx context.Context, id string, options ...transport.RequestOption) error {
	return a.pipeline.Do(ctx, "DELETE", "/v1/apikeys/"+url.PathEscape(id), nil, nil, options...)
}
