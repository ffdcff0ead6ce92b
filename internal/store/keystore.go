package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"graphseal/internal/domain"
	"graphseal/internal/util/memzero"
)

// KeyFile is the keystore's file name inside the home directory.
const KeyFile = "keypair.json.enc"

// ErrNoKeyPair is returned by LoadKeyPair when nothing has been saved yet.
var ErrNoKeyPair = errors.New("no key pair in keystore")

// Options tunes the KDF used for new envelopes. Loading always honours the
// KDF recorded in the file.
type Options struct {
	KDF    KDF
	Params *KDFParams
}

// KeyFileStore persists one key pair under dir.
type KeyFileStore struct {
	dir    string
	kdf    KDF
	params KDFParams
	mu     sync.Mutex
}

// NewKeyFileStore returns a KeyFileStore rooted at dir.
func NewKeyFileStore(dir string, opts Options) (*KeyFileStore, error) {
	kdf := opts.KDF
	if kdf == "" {
		kdf = Scrypt
	}
	if kdf != Scrypt && kdf != Argon2id {
		return nil, fmt.Errorf("unsupported kdf %q", kdf)
	}
	params := DefaultParams(kdf)
	if opts.Params != nil {
		params = *opts.Params
	}
	return &KeyFileStore{dir: dir, kdf: kdf, params: params}, nil
}

// Path returns the keystore file location.
func (s *KeyFileStore) Path() string { return filepath.Join(s.dir, KeyFile) }

// SaveKeyPair seals pair under passphrase, replacing any previous pair.
func (s *KeyFileStore) SaveKeyPair(passphrase string, pair domain.KeyPair) error {
	if passphrase == "" {
		return errors.New("empty passphrase")
	}
	if !pair.CanSign() {
		return errors.New("key pair has no private signing key")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(pair)
	if err != nil {
		return err
	}
	defer memzero.Zero(raw)

	blob, err := seal(s.kdf, s.params, passphrase, raw)
	if err != nil {
		return err
	}
	return writeFile(s.Path(), blob, 0o600)
}

// LoadKeyPair opens the keystore with passphrase.
func (s *KeyFileStore) LoadKeyPair(passphrase string) (domain.KeyPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, ok, err := readFile(s.Path())
	if err != nil {
		return domain.KeyPair{}, err
	}
	if !ok {
		return domain.KeyPair{}, fmt.Errorf("%w at %s", ErrNoKeyPair, s.Path())
	}
	raw, err := open(passphrase, blob)
	if err != nil {
		return domain.KeyPair{}, err
	}
	defer memzero.Zero(raw)

	var pair domain.KeyPair
	if err := json.Unmarshal(raw, &pair); err != nil {
		return domain.KeyPair{}, err
	}
	return pair, nil
}

// Exists reports whether a keystore file is present.
func (s *KeyFileStore) Exists() bool {
	_, err := os.Stat(s.Path())
	return err == nil
}

// Compile-time assertion that KeyFileStore implements domain.KeyStore.
var _ domain.KeyStore = (*KeyFileStore)(nil)
