// Package identity manages creation and loading of the local key pair.
//
// It enforces the passphrase policy, builds the pair with the crypto Suite
// (randomly or from a seed) and persists it through a domain.KeyStore.
package identity
