package identity

import (
	"context"
	"fmt"
	"unicode"

	"graphseal/internal/crypto"
	"graphseal/internal/domain"
)

const (
	// minPassphraseLength defines the minimum number of characters required for a passphrase.
	minPassphraseLength = 12
)

var (
	// ErrWeakPassphrase is returned when the passphrase fails the strength policy.
	ErrWeakPassphrase = fmt.Errorf(
		"passphrase is too weak (must be at least %d characters and include upper, lower, "+
			"number, and symbol)",
		minPassphraseLength,
	)
)

// Service creates the local key pair and reads it back from the keystore.
//
// The pair holds:
//   - a P-256 signing half (Pub/Priv) for SignedEnvelopes and certificates.
//   - a P-256 encryption half (EPub/EPriv) for ECDH secrets.
type Service struct {
	suite *crypto.Suite
	store domain.KeyStore
}

// New returns an identity service backed by the given suite and store.
func New(suite *crypto.Suite, s domain.KeyStore) *Service {
	return &Service{suite: suite, store: s}
}

// GenerateIdentity creates a pair, saves it encrypted with the passphrase,
// and returns it with the fingerprint of its signing key. A non-empty seed
// makes the pair deterministic.
func (s *Service) GenerateIdentity(
	ctx context.Context,
	passphrase string,
	seed []byte,
) (domain.KeyPair, domain.Fingerprint, error) {
	if !isSecurePassphrase(passphrase) {
		return domain.KeyPair{}, "", ErrWeakPassphrase
	}

	pair, err := s.suite.Pair(ctx, crypto.PairOptions{Seed: seed})
	if err != nil {
		return domain.KeyPair{}, "", fmt.Errorf("generate pair: %w", err)
	}
	fp, err := crypto.Fingerprint(pair.Pub)
	if err != nil {
		return domain.KeyPair{}, "", err
	}
	if err := s.store.SaveKeyPair(passphrase, pair); err != nil {
		return domain.KeyPair{}, "", fmt.Errorf("save pair: %w", err)
	}
	return pair, fp, nil
}

// LoadIdentity decrypts the stored pair and checks that its halves agree.
func (s *Service) LoadIdentity(passphrase string) (domain.KeyPair, error) {
	pair, err := s.store.LoadKeyPair(passphrase)
	if err != nil {
		return domain.KeyPair{}, err
	}
	if err := s.suite.CheckPair(pair); err != nil {
		return domain.KeyPair{}, fmt.Errorf("stored pair: %w", err)
	}
	return pair, nil
}

// FingerprintIdentity returns the fingerprint of the stored signing key.
func (s *Service) FingerprintIdentity(passphrase string) (domain.Fingerprint, error) {
	pair, err := s.store.LoadKeyPair(passphrase)
	if err != nil {
		return "", err
	}
	return crypto.Fingerprint(pair.Pub)
}

// isSecurePassphrase enforces a basic strength policy.
func isSecurePassphrase(passphrase string) bool {
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	if len([]rune(passphrase)) < minPassphraseLength {
		return false
	}
	for _, r := range passphrase {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r), unicode.IsSymbol(r):
			hasSymbol = true
		}
	}
	return hasUpper && hasLower && hasDigit && hasSymbol
}

// Compile-time assertion that Service implements domain.IdentityService.
var _ domain.IdentityService = (*Service)(nil)
