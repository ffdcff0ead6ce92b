package interfaces

import (
	"context"

	domaintypes "graphseal/internal/domain/types"
)

// IdentityService creates and loads the locally stored key pair.
type IdentityService interface {
	GenerateIdentity(
		ctx context.Context,
		passphrase string,
		seed []byte,
	) (domaintypes.KeyPair, domaintypes.Fingerprint, error)
	LoadIdentity(passphrase string) (domaintypes.KeyPair, error)
	FingerprintIdentity(passphrase string) (domaintypes.Fingerprint, error)
}

// AccountService registers and authenticates aliases in the graph.
type AccountService interface {
	Create(ctx context.Context, alias, passphrase string) (domaintypes.KeyPair, error)
	Authenticate(ctx context.Context, alias, passphrase string) (domaintypes.KeyPair, error)
}
