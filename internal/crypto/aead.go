package crypto

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"graphseal/internal/domain"
	"graphseal/internal/errs"
	"graphseal/internal/util/memzero"
	"graphseal/internal/wire"
)

// Algorithm names an AEAD construction.
type Algorithm string

const (
	AESGCM            Algorithm = "AES-GCM"
	XChaCha20Poly1305 Algorithm = "XChaCha20-Poly1305"
)

const (
	saltSize  = 9
	aesIVSize = 15
)

func (a Algorithm) orDefault() Algorithm {
	if a == "" {
		return AESGCM
	}
	return a
}

func (a Algorithm) nonceSize() (int, error) {
	switch a.orDefault() {
	case AESGCM:
		return aesIVSize, nil
	case XChaCha20Poly1305:
		return chacha20poly1305.NonceSizeX, nil
	}
	return 0, errs.New(errs.InvalidInput, fmt.Sprintf("unknown algorithm %q", string(a)))
}

// newAEAD builds the cipher for key with the given nonce length.
func (a Algorithm) newAEAD(key []byte, nonceLen int) (cipher.AEAD, error) {
	switch a.orDefault() {
	case AESGCM:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, err
		}
		return cipher.NewGCMWithNonceSize(block, nonceLen)
	case XChaCha20Poly1305:
		if nonceLen != chacha20poly1305.NonceSizeX {
			return nil, fmt.Errorf("xchacha20-poly1305 needs a %d byte nonce, got %d", chacha20poly1305.NonceSizeX, nonceLen)
		}
		return chacha20poly1305.NewX(key)
	}
	return nil, errs.New(errs.InvalidInput, fmt.Sprintf("unknown algorithm %q", string(a)))
}

// aeadKey derives the one-time key sha256(material || salt). The salt bytes
// are read as UTF-8 with invalid sequences replaced, the way historical
// writers concatenated them into a string.
func aeadKey(material string, salt []byte) []byte {
	sum := sha256.Sum256([]byte(material + string([]rune(string(salt)))))
	return sum[:]
}

// EncryptOptions tunes Encrypt.
type EncryptOptions struct {
	Encoding  Encoding
	Algorithm Algorithm
	// Salt overrides the random per-message salt.
	Salt []byte
}

// DecryptOptions tunes Decrypt.
type DecryptOptions struct {
	Encoding  Encoding
	Algorithm Algorithm
}

// EncryptionKey returns the key material Encrypt uses for a pair.
func EncryptionKey(pair domain.KeyPair) string { return pair.EPriv }

// Encrypt seals data under key. Strings are encrypted as is, anything else
// as JSON. key is typically a pair's EPriv, a Secret or a Work proof.
func (s *Suite) Encrypt(ctx context.Context, data any, key string, opts EncryptOptions) (domain.EncryptedEnvelope, error) {
	env, err := s.encrypt(ctx, data, key, opts)
	if err != nil {
		return domain.EncryptedEnvelope{}, s.fail("encrypt", err)
	}
	return env, nil
}

// EncryptPacked is Encrypt followed by wire.Pack.
func (s *Suite) EncryptPacked(ctx context.Context, data any, key string, opts EncryptOptions) (string, error) {
	env, err := s.Encrypt(ctx, data, key, opts)
	if err != nil {
		return "", err
	}
	return wire.Pack(env)
}

func (s *Suite) encrypt(ctx context.Context, data any, key string, opts EncryptOptions) (domain.EncryptedEnvelope, error) {
	if key == "" {
		return domain.EncryptedEnvelope{}, errs.New(errs.NoEncryptionKey, "No encryption key.")
	}
	if data == nil {
		return domain.EncryptedEnvelope{}, errs.New(errs.InvalidInput, "nil data cannot be encrypted")
	}
	if !opts.Encoding.Valid() {
		return domain.EncryptedEnvelope{}, errs.New(errs.InvalidInput, "unknown encoding "+string(opts.Encoding))
	}
	if err := ctx.Err(); err != nil {
		return domain.EncryptedEnvelope{}, err
	}
	msg, err := wire.Digestible(data)
	if err != nil {
		return domain.EncryptedEnvelope{}, errs.Wrap(errs.InvalidInput, "data is not JSON-serializable", err)
	}

	salt := opts.Salt
	if len(salt) == 0 {
		if salt, err = s.random(saltSize); err != nil {
			return domain.EncryptedEnvelope{}, err
		}
	}
	n, err := opts.Algorithm.nonceSize()
	if err != nil {
		return domain.EncryptedEnvelope{}, err
	}
	nonce, err := s.random(n)
	if err != nil {
		return domain.EncryptedEnvelope{}, err
	}

	k := aeadKey(key, salt)
	defer memzero.Zero(k)
	aead, err := opts.Algorithm.newAEAD(k, n)
	if err != nil {
		return domain.EncryptedEnvelope{}, err
	}
	ct := aead.Seal(nil, nonce, msg, nil)

	enc := opts.Encoding
	return domain.EncryptedEnvelope{
		CT: enc.Encode(ct),
		IV: enc.Encode(nonce),
		S:  enc.Encode(salt),
	}, nil
}

// envelopeDecoder is one way of reading the binary fields of an encrypted
// envelope.
type envelopeDecoder struct {
	name     string
	encoding Encoding
}

// envelopeDecoders lists the decoders Decrypt tries: the requested
// encoding, then raw UTF-8 bytes.
func envelopeDecoders(enc Encoding) []envelopeDecoder {
	enc = enc.orDefault()
	out := []envelopeDecoder{{name: string(enc), encoding: enc}}
	if enc != UTF8 {
		out = append(out, envelopeDecoder{name: string(UTF8), encoding: UTF8})
	}
	return out
}

// Decrypt opens an envelope produced by Encrypt and returns the parsed
// plaintext.
func (s *Suite) Decrypt(ctx context.Context, data any, key string, opts DecryptOptions) (any, error) {
	v, err := s.decrypt(ctx, data, key, opts)
	if err != nil {
		return nil, s.fail("decrypt", err)
	}
	return v, nil
}

func (s *Suite) decrypt(ctx context.Context, data any, key string, opts DecryptOptions) (any, error) {
	if key == "" {
		return nil, errs.New(errs.NoEncryptionKey, "No decryption key.")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	env, ok := wire.EncryptedEnvelope(data)
	if !ok {
		return nil, errs.New(errs.DecryptionFailed, "not an encrypted envelope")
	}
	if !opts.Encoding.Valid() {
		return nil, errs.New(errs.InvalidInput, "unknown encoding "+string(opts.Encoding))
	}
	var last error
	for _, d := range envelopeDecoders(opts.Encoding) {
		pt, err := open(env, key, d.encoding, opts.Algorithm)
		if err == nil {
			return wire.Parse(string(pt)), nil
		}
		last = err
	}
	return nil, errs.Wrap(errs.DecryptionFailed, "Could not decrypt", last)
}

func open(env domain.EncryptedEnvelope, key string, enc Encoding, alg Algorithm) ([]byte, error) {
	salt, err := enc.Decode(env.S)
	if err != nil {
		return nil, err
	}
	iv, err := enc.Decode(env.IV)
	if err != nil {
		return nil, err
	}
	ct, err := enc.Decode(env.CT)
	if err != nil {
		return nil, err
	}
	if len(iv) == 0 {
		return nil, fmt.Errorf("empty nonce")
	}
	k := aeadKey(key, salt)
	defer memzero.Zero(k)
	aead, err := alg.newAEAD(k, len(iv))
	if err != nil {
		return nil, err
	}
	return aead.Open(nil, iv, ct, nil)
}
