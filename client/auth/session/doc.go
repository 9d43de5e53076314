// Package session tracks user activity against the credential store and
// computes remaining session time.
//
// The Monitor is a four-state machine (Inactive, Active, Warning, Expired)
// driven by a fixed-period poll plus explicit activity events. It emits a
// single warning per threshold crossing and fires the expiry callback exactly
// once per session; the subscription handle returned by Start must be closed
// so the poll goroutine and the store registration are released across
// logout/login cycles.
package session
