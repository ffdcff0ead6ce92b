// Package store keeps the local key pair on disk, sealed under a passphrase.
//
// The file is a small JSON envelope. A key derived from the passphrase with
// scrypt (default) or argon2id seals the serialized pair with
// ChaCha20-Poly1305. Writes go through a temp file and an atomic rename so a
// crash never leaves a half-written keystore behind.
package store
