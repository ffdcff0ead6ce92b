package interfaces

import domaintypes "graphseal/internal/domain/types"

// KeyStore persists a key pair sealed under a passphrase.
type KeyStore interface {
	SaveKeyPair(passphrase string, pair domaintypes.KeyPair) error
	LoadKeyPair(passphrase string) (domaintypes.KeyPair, error)
}
