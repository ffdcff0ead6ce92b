// Package logging builds the process logger: a text or JSON slog handler
// wrapped by a handler that redacts key material and shortens public keys
// to fingerprints.
package logging
