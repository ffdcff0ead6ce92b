package crypto

import (
	"context"
	"crypto/ecdh"
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"

	"graphseal/internal/domain"
	"graphseal/internal/errs"
	"graphseal/internal/util/memzero"
)

// SecretOptions tunes Secret.
type SecretOptions struct {
	// Info, when set, expands the raw ECDH output with HKDF-SHA256 under
	// this context string. Empty keeps the raw 256 bits.
	Info string
}

// Secret derives the key shared between my encryption pair and their
// encryption public key. Both sides compute the same value. The result is
// 32 bytes of base64url without padding, usable as key material for
// Encrypt.
func (s *Suite) Secret(ctx context.Context, theirEPub string, my domain.KeyPair, opts SecretOptions) (string, error) {
	out, err := secret(ctx, theirEPub, my, opts)
	if err != nil {
		return "", s.fail("secret", err)
	}
	return out, nil
}

func secret(ctx context.Context, theirEPub string, my domain.KeyPair, opts SecretOptions) (string, error) {
	if theirEPub == "" || !my.CanExchange() {
		return "", errs.New(errs.NoSecretMaterial, "No secret mix.")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	peer, err := decodePoint(theirEPub)
	if err != nil {
		return "", err
	}
	pub, err := ecdh.P256().NewPublicKey(uncompressed(peer))
	if err != nil {
		return "", errs.Wrap(errs.InvalidKeyEncoding, "invalid peer key", err)
	}
	d, err := decodeScalar(my.EPriv)
	if err != nil {
		return "", err
	}
	db := scalarBytes(d)
	defer memzero.Zero(db)
	priv, err := ecdh.P256().NewPrivateKey(db)
	if err != nil {
		return "", errs.Wrap(errs.InvalidKeyEncoding, "invalid encryption scalar", err)
	}
	bits, err := priv.ECDH(pub)
	if err != nil {
		return "", errs.Wrap(errs.NoSecretMaterial, "ecdh failed", err)
	}
	defer memzero.Zero(bits)

	if opts.Info == "" {
		return b64url.EncodeToString(bits), nil
	}
	key := make([]byte, 32)
	defer memzero.Zero(key)
	if _, err := io.ReadFull(hkdf.New(sha256.New, bits, nil, []byte(opts.Info)), key); err != nil {
		return "", err
	}
	return b64url.EncodeToString(key), nil
}
