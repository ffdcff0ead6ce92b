package store

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"graphseal/internal/util/memzero"
)

// Current on-disk envelope version.
const envelopeVersion = 1

// KDF names the passphrase key-derivation function.
type KDF string

const (
	Scrypt   KDF = "scrypt"
	Argon2id KDF = "argon2id"
)

// ErrWrongPassphrase is returned when the passphrase is incorrect or the
// envelope was modified.
var ErrWrongPassphrase = errors.New("wrong passphrase or corrupted keystore")

// KDFParams holds the tunables of whichever KDF sealed the envelope.
type KDFParams struct {
	N       int    `json:"n,omitempty"`
	R       int    `json:"r,omitempty"`
	P       int    `json:"p,omitempty"`
	Time    uint32 `json:"time,omitempty"`
	Memory  uint32 `json:"memory_kib,omitempty"`
	Threads uint8  `json:"threads,omitempty"`
}

// DefaultParams returns the parameters used when none are configured.
func DefaultParams(kdf KDF) KDFParams {
	if kdf == Argon2id {
		return KDFParams{Time: 1, Memory: 64 * 1024, Threads: 4}
	}
	return KDFParams{N: 1 << 15, R: 8, P: 1}
}

type envelope struct {
	V      int       `json:"v"`
	KDF    KDF       `json:"kdf"`
	Salt   []byte    `json:"salt"`
	Params KDFParams `json:"params"`
	Nonce  []byte    `json:"nonce"`
	Cipher []byte    `json:"cipher"`
}

func deriveKey(kdf KDF, passphrase string, salt []byte, p KDFParams) ([]byte, error) {
	switch kdf {
	case Scrypt:
		return scrypt.Key([]byte(passphrase), salt, p.N, p.R, p.P, chacha20poly1305.KeySize)
	case Argon2id:
		if p.Time == 0 || p.Memory == 0 || p.Threads == 0 {
			return nil, fmt.Errorf("invalid argon2id parameters %+v", p)
		}
		return argon2.IDKey([]byte(passphrase), salt, p.Time, p.Memory, p.Threads, chacha20poly1305.KeySize), nil
	default:
		return nil, fmt.Errorf("unsupported kdf %q", kdf)
	}
}

// additional data binds the header fields to the ciphertext.
func (e envelope) ad() []byte {
	return append([]byte(fmt.Sprintf("graphseal-keystore/v%d/%s/", e.V, e.KDF)), e.Salt...)
}

// seal derives a key from passphrase and seals raw into a JSON envelope.
func seal(kdf KDF, params KDFParams, passphrase string, raw []byte) ([]byte, error) {
	env := envelope{V: envelopeVersion, KDF: kdf, Params: params, Salt: make([]byte, 16)}
	if _, err := rand.Read(env.Salt); err != nil {
		return nil, err
	}
	key, err := deriveKey(kdf, passphrase, env.Salt, params)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	env.Nonce = make([]byte, aead.NonceSize())
	if _, err := rand.Read(env.Nonce); err != nil {
		return nil, err
	}
	env.Cipher = aead.Seal(nil, env.Nonce, raw, env.ad())
	return json.MarshalIndent(env, "", "  ")
}

// open parses a JSON envelope and decrypts it with passphrase.
func open(passphrase string, b []byte) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("parse keystore: %w", err)
	}
	if env.V < 1 || env.V > envelopeVersion {
		return nil, fmt.Errorf("unsupported keystore version %d", env.V)
	}
	key, err := deriveKey(env.KDF, passphrase, env.Salt, env.Params)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	if len(env.Nonce) != aead.NonceSize() {
		return nil, ErrWrongPassphrase
	}
	pt, err := aead.Open(nil, env.Nonce, env.Cipher, env.ad())
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return pt, nil
}
