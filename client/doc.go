// Package client exposes the session coordinator and the resource
// sub-clients of the admin API.
//
// The Client owns the credential store and the session monitor; Login,
// Logout and ExtendSession are the only entry points the presentation layer
// needs. Every sub-client shares the same store and registers with it at
// construction, so a credential set by Login is visible to all of them
// before their next request. Logout always clears local state, even when the
// remote revoke call fails.
package client
