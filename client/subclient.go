package client

import (
	"sync"

	"github.com/openadmin/adminkit/client/auth/store"
	"github.com/openadmin/adminkit/schema"
	"github.com/openadmin/adminkit/transport"
)

// subClient is the base every resource client embeds. It holds the shared
// pipeline and registers with the credential store at construction; the
// registration is a non-owning observation used for broadcast, not for
// lifetime control.
type subClient struct {
	pipeline *transport.Pipeline
	store    store.Store
	handle   store.Handle

	mux  sync.RWMutex
	cred *schema.Credential
}

func newSubClient(pipeline *transport.Pipeline, s store.Store) *subClient {
	ret := &subClient{pipeline: pipeline, store: s}
	ret.cred = s.Get()
	ret.handle = s.Subscribe(store.ObserverFunc(ret.onCredentialChange))
	return ret
}

func (s *subClient) onCredentialChange(cred *schema.Credential) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.cred = cred
}

// Credential returns this sub-client's observed credential; by construction
// it equals the store's current value.
func (s *subClient) Credential() *schema.Credential {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.cred
}

// Close releases the store registration.
func (s *subClient) Close() {
	if s.handle != nil {
		s.handle.Close()
	}
}
