// Package keycache memoizes imported ECDSA verification keys.
//
// A single Cache is built by the application wiring and injected into the
// crypto suite; tests build their own.
package keycache
