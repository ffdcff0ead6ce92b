package crypto

import (
	"context"
	"crypto/ecdsa"
	"crypto/sha256"

	"graphseal/internal/domain"
	"graphseal/internal/ecc"
	"graphseal/internal/errs"
	"graphseal/internal/util/memzero"
	"graphseal/internal/wire"
)

// SignOptions tunes Sign.
type SignOptions struct {
	// Encoding of the signature; base64 when empty.
	Encoding Encoding
}

// Sign signs data with pair and returns the envelope {m, s}.
//
// data may be a Go value, a JSON string, a "SEA" string or an envelope. If
// it already is an envelope that verifies under pair.Pub it is returned
// unchanged.
func (s *Suite) Sign(ctx context.Context, data any, pair domain.KeyPair, opts SignOptions) (domain.SignedEnvelope, error) {
	env, err := s.sign(ctx, data, pair, opts)
	if err != nil {
		return domain.SignedEnvelope{}, s.fail("sign", err)
	}
	return env, nil
}

// SignPacked is Sign followed by wire.Pack.
func (s *Suite) SignPacked(ctx context.Context, data any, pair domain.KeyPair, opts SignOptions) (string, error) {
	env, err := s.Sign(ctx, data, pair, opts)
	if err != nil {
		return "", err
	}
	return wire.Pack(env)
}

func (s *Suite) sign(ctx context.Context, data any, pair domain.KeyPair, opts SignOptions) (domain.SignedEnvelope, error) {
	if pair.Priv == "" {
		return domain.SignedEnvelope{}, errs.New(errs.NoSigningKey, "No signing key.")
	}
	if data == nil {
		return domain.SignedEnvelope{}, errs.New(errs.InvalidInput, "nil data cannot be signed")
	}
	if !opts.Encoding.Valid() || opts.Encoding == UTF8 {
		return domain.SignedEnvelope{}, errs.New(errs.InvalidInput, "unsupported signature encoding "+string(opts.Encoding))
	}
	if err := ctx.Err(); err != nil {
		return domain.SignedEnvelope{}, err
	}

	m, err := wire.Normalize(wire.Parse(data))
	if err != nil {
		return domain.SignedEnvelope{}, errs.Wrap(errs.InvalidInput, "data is not JSON-serializable", err)
	}

	if prior, ok := wire.SignedEnvelope(m); ok && pair.Pub != "" {
		if _, err := s.verify(ctx, prior, pair.Pub, VerifyOptions{Encoding: opts.Encoding}); err == nil {
			return prior, nil
		}
	}

	digest, err := digestOf(m)
	if err != nil {
		return domain.SignedEnvelope{}, err
	}
	key, err := signingKey(pair.Priv)
	if err != nil {
		return domain.SignedEnvelope{}, err
	}
	defer memzero.Int(key.D)
	r, sv, err := ecdsa.Sign(s.rand, key, digest)
	if err != nil {
		return domain.SignedEnvelope{}, err
	}
	sig := append(scalarBytes(r), scalarBytes(sv)...)
	return domain.SignedEnvelope{M: m, S: opts.Encoding.Encode(sig)}, nil
}

func digestOf(m any) ([]byte, error) {
	b, err := wire.Digestible(m)
	if err != nil {
		return nil, errs.Wrap(errs.InvalidInput, "message is not JSON-serializable", err)
	}
	sum := sha256.Sum256(b)
	return sum[:], nil
}

// p1363 splits a raw r||s signature.
func p1363(sig []byte) (r, s []byte, ok bool) {
	if len(sig) != 2*ecc.ByteLen {
		return nil, nil, false
	}
	return sig[:ecc.ByteLen], sig[ecc.ByteLen:], true
}
