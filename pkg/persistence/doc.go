// Package persistence loads and saves the application envelope through a
// ports.KVStore. Failures never reach the caller: a failed load yields the
// empty state and a failed save is logged and reported as false.
//
// Store behavior (encryption, masking) is layered with the middleware
// subpackage.
package persistence
