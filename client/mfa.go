package client

import (
	"context"

	"github.com/openadmin/adminkit/client/auth/store"
	"github.com/openadmin/adminkit/schema"
	"github.com/openadmin/adminkit/transport"
)

// MFAClient manages TOTP enrollment for the authenticated user; challenge UX
// belongs to the presentation layer.
type MFAClient struct {
	*subClient
}

func newMFAClient(pipeline *transport.Pipeline, s store.Store) *MFAClient {
	return &MFAClient{subClient: newSubClient(pipeline, s)}
}

// Enroll starts a TOTP enrollment and returns the shared secret.
func (m *MFAClient) Enroll(ctx context.Context) (*schema.MFAEnrollment, error) {
	ret := &schema.MFAEnrollment{}
	if err := m.pipeline.Do(ctx, "POST", "/v1/mfa/enroll", nil, ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// Verify confirms an enrollment with a TOTP code.
func (m *MFAClient) Verify(ctx context.Context, code string) error {
	return m.pipeline.Do(ctx, "POST", "/v1/mfa/verify", &schema.MFAVerifyRequest{Code: code}, nil)
}

// Disable removes the enrollment; a valid code is required.
func (m *MFAClient) Disable(ctx context.Context, code string) error {
	return m.pipeline.Do(ctx, "POST", "/v1/mfa/disable", &schema.MFAVerifyRequest{Code: code}, nil)
}
