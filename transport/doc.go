// Package transport implements the HTTP request pipeline shared by every
// sub-client: it attaches the current credential (bearer token or API key),
// adds idempotency keys, retries transient failures per a pure retry policy
// and classifies failures into the schema error taxonomy.
//
// The credential is re-read from the store on every attempt, so a concurrent
// logout prevents a scheduled retry from going out with a cleared credential.
// 401/403 responses are never retried; they are handed to the configured
// auth-error handler (the session coordinator performs the forced logout)
// and surfaced to the caller as an auth error.
package transport
