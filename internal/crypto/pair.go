package crypto

import (
	"context"
	"crypto/ecdh"

	"graphseal/internal/domain"
	"graphseal/internal/errs"
)

// PairOptions selects how Pair builds a key pair.
//
// Precedence:
//
//  1. Seed with any existing key: additive derivation of each given half.
//  2. Priv: keep it, recompute Pub; keep EPriv or draw a fresh one.
//  3. EPriv: keep it, recompute EPub; draw a fresh signing half.
//  4. Seed alone: deterministic pair.
//  5. Nothing: random pair.
type PairOptions struct {
	Seed  []byte
	Priv  string
	EPriv string
	Pub   string
	EPub  string
}

// Pair builds a key pair according to opts.
func (s *Suite) Pair(ctx context.Context, opts PairOptions) (domain.KeyPair, error) {
	pair, err := s.pair(ctx, opts)
	if err != nil {
		return domain.KeyPair{}, s.fail("pair", err)
	}
	return pair, nil
}

func (s *Suite) pair(ctx context.Context, opts PairOptions) (domain.KeyPair, error) {
	hasKey := opts.Priv != "" || opts.EPriv != "" || opts.Pub != "" || opts.EPub != ""
	switch {
	case len(opts.Seed) > 0 && hasKey:
		return deriveFrom(ctx, opts)
	case opts.Priv != "":
		return s.completeFrom(opts.Priv, opts.EPriv)
	case opts.EPriv != "":
		return s.completeFromEncryption(opts.EPriv)
	case len(opts.Seed) > 0:
		return seeded(ctx, opts.Seed)
	}
	return s.randomPair()
}

func deriveFrom(ctx context.Context, opts PairOptions) (domain.KeyPair, error) {
	var out domain.KeyPair
	var err error
	if out.Priv, out.Pub, err = deriveHalf(ctx, opts.Seed, deriveSignLabel, opts.Priv, opts.Pub); err != nil {
		return domain.KeyPair{}, err
	}
	if out.EPriv, out.EPub, err = deriveHalf(ctx, opts.Seed, deriveEncLabel, opts.EPriv, opts.EPub); err != nil {
		return domain.KeyPair{}, err
	}
	return out, nil
}

func (s *Suite) completeFrom(priv, epriv string) (domain.KeyPair, error) {
	pub, err := publicFromEncoded(priv)
	if err != nil {
		return domain.KeyPair{}, err
	}
	out := domain.KeyPair{Priv: priv, Pub: pub}
	if epriv != "" {
		if out.EPub, err = publicFromEncoded(epriv); err != nil {
			return domain.KeyPair{}, err
		}
		out.EPriv = epriv
		return out, nil
	}
	if out.EPriv, out.EPub, err = s.randomHalf(); err != nil {
		return domain.KeyPair{}, err
	}
	return out, nil
}

func (s *Suite) completeFromEncryption(epriv string) (domain.KeyPair, error) {
	epub, err := publicFromEncoded(epriv)
	if err != nil {
		return domain.KeyPair{}, err
	}
	out := domain.KeyPair{EPriv: epriv, EPub: epub}
	if out.Priv, out.Pub, err = s.randomHalf(); err != nil {
		return domain.KeyPair{}, err
	}
	return out, nil
}

func seeded(ctx context.Context, seed []byte) (domain.KeyPair, error) {
	sign, err := seededScalar(ctx, seed, seedSignSuffix)
	if err != nil {
		return domain.KeyPair{}, err
	}
	enc, err := seededScalar(ctx, seed, seedEncryptSuffix)
	if err != nil {
		return domain.KeyPair{}, err
	}
	out := domain.KeyPair{Priv: encodeScalar(sign), EPriv: encodeScalar(enc)}
	if out.Pub, err = publicFromScalar(sign); err != nil {
		return domain.KeyPair{}, err
	}
	if out.EPub, err = publicFromScalar(enc); err != nil {
		return domain.KeyPair{}, err
	}
	return out, nil
}

func (s *Suite) randomPair() (domain.KeyPair, error) {
	var out domain.KeyPair
	var err error
	if out.Priv, out.Pub, err = s.randomHalf(); err != nil {
		return domain.KeyPair{}, err
	}
	if out.EPriv, out.EPub, err = s.randomHalf(); err != nil {
		return domain.KeyPair{}, err
	}
	return out, nil
}

// randomHalf draws a fresh P-256 scalar and its public point.
func (s *Suite) randomHalf() (priv, pub string, err error) {
	k, err := ecdh.P256().GenerateKey(s.rand)
	if err != nil {
		return "", "", err
	}
	return b64url.EncodeToString(k.Bytes()), encodeSEC1(k.PublicKey().Bytes()), nil
}

func publicFromEncoded(priv string) (string, error) {
	d, err := decodeScalar(priv)
	if err != nil {
		return "", err
	}
	return publicFromScalar(d)
}

// checkPair confirms that every present public key matches its scalar.
func checkPair(p domain.KeyPair) error {
	for _, half := range [][2]string{{p.Priv, p.Pub}, {p.EPriv, p.EPub}} {
		if half[0] == "" || half[1] == "" {
			continue
		}
		pub, err := publicFromEncoded(half[0])
		if err != nil {
			return err
		}
		if pub != half[1] {
			return errs.New(errs.InvalidKeyEncoding, "public key does not match private scalar")
		}
	}
	return nil
}

// CheckPair reports whether the public keys in p match its private scalars.
func (s *Suite) CheckPair(p domain.KeyPair) error {
	return s.fail("check-pair", checkPair(p))
}
