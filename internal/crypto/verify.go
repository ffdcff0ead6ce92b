package crypto

import (
	"context"
	"crypto/ecdsa"
	"math/big"

	"graphseal/internal/errs"
	"graphseal/internal/wire"
)

// VerifyOptions tunes Verify.
type VerifyOptions struct {
	// Encoding the signature was written in; base64 when empty.
	Encoding Encoding
}

// signatureDecoder is one way of reading an envelope's signature field.
type signatureDecoder struct {
	name   string
	decode func(string) ([]byte, error)
}

// signatureDecoders lists the decoders Verify tries, in order: the
// requested encoding, then raw UTF-8 bytes as written by old signers.
func signatureDecoders(enc Encoding) []signatureDecoder {
	enc = enc.orDefault()
	out := []signatureDecoder{{name: string(enc), decode: enc.Decode}}
	if enc != UTF8 {
		out = append(out, signatureDecoder{name: string(UTF8), decode: UTF8.Decode})
	}
	return out
}

// Verify checks the envelope's signature against pub and returns the
// parsed message.
func (s *Suite) Verify(ctx context.Context, data any, pub string, opts VerifyOptions) (any, error) {
	m, err := s.verify(ctx, data, pub, opts)
	if err != nil {
		return nil, s.fail("verify", err)
	}
	return m, nil
}

// Unwrap returns the parsed message of an envelope without checking its
// signature. It is for values that already passed verification on a
// trusted path, never for input from peers.
func (s *Suite) Unwrap(data any) (any, error) {
	env, ok := wire.SignedEnvelope(data)
	if !ok {
		return nil, s.fail("unwrap", errs.New(errs.InvalidInput, "not a signed envelope"))
	}
	return wire.Parse(env.M), nil
}

func (s *Suite) verify(ctx context.Context, data any, pub string, opts VerifyOptions) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	env, ok := wire.SignedEnvelope(data)
	if !ok {
		return nil, errs.New(errs.SignatureMismatch, "not a signed envelope")
	}
	if !opts.Encoding.Valid() {
		return nil, errs.New(errs.InvalidInput, "unknown signature encoding "+string(opts.Encoding))
	}
	key, err := s.keys.Get(pub)
	if err != nil {
		return nil, err
	}
	digest, err := digestOf(env.M)
	if err != nil {
		return nil, err
	}
	for _, d := range signatureDecoders(opts.Encoding) {
		raw, err := d.decode(env.S)
		if err != nil {
			continue
		}
		if verifyRaw(key, digest, raw) {
			return wire.Parse(env.M), nil
		}
	}
	return nil, errs.New(errs.SignatureMismatch, "Signature did not match.")
}

func verifyRaw(key *ecdsa.PublicKey, digest, sig []byte) bool {
	r, sv, ok := p1363(sig)
	if !ok {
		return false
	}
	return ecdsa.Verify(key, digest, new(big.Int).SetBytes(r), new(big.Int).SetBytes(sv))
}
