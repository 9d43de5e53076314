// Package store defines the credential store shared by every sub-client.
//
// The store owns the single current Credential plus its activity timestamps.
// Mutations notify registered observers synchronously before returning, so a
// read issued anywhere after Set or Clear returns always reflects the new
// value. It ships with an in-memory implementation for tests and short-lived
// tools, and a file-backed one that survives process restarts.
package store
