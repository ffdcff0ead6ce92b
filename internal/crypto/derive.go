package crypto

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/big"

	"graphseal/internal/ecc"
	"graphseal/internal/errs"
)

const maxDerivationAttempts = 100

// Labels mixed into seeded derivation. Seeded keys hash seed||suffix;
// additive offsets hash prefix||seed.
const (
	seedSignSuffix    = "-sign"
	seedEncryptSuffix = "-encrypt"
	deriveSignLabel   = "SEA.DERIVE|sign|"
	deriveEncLabel    = "SEA.DERIVE|encrypt|"
)

// seededScalar derives a private scalar from seed and a role suffix.
func seededScalar(ctx context.Context, seed []byte, suffix string) (*big.Int, error) {
	return sampleScalar(ctx, concat(seed, []byte(suffix)), ecc.N)
}

// offsetScalar derives the additive offset for a role label.
func offsetScalar(ctx context.Context, seed []byte, label string) (*big.Int, error) {
	return sampleScalar(ctx, concat([]byte(label), seed), ecc.N)
}

// sampleScalar hashes input and rehashes with a little-endian attempt
// counter until the digest lies in [1, limit).
func sampleScalar(ctx context.Context, input []byte, limit *big.Int) (*big.Int, error) {
	h := sha256.Sum256(input)
	var buf [sha256.Size + 4]byte
	for attempt := 0; attempt < maxDerivationAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		k := new(big.Int).SetBytes(h[:])
		if k.Sign() > 0 && k.Cmp(limit) < 0 {
			return k, nil
		}
		copy(buf[:], h[:])
		binary.LittleEndian.PutUint32(buf[sha256.Size:], uint32(attempt))
		h = sha256.Sum256(buf[:])
	}
	return nil, errs.New(errs.DerivationExhausted,
		fmt.Sprintf("no valid scalar after %d attempts", maxDerivationAttempts))
}

func concat(a, b []byte) []byte {
	out := make([]byte, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

// publicFromScalar computes k·G and encodes it.
func publicFromScalar(k *big.Int) (string, error) {
	p, err := ecc.ScalarBaseMult(k)
	if err != nil {
		return "", err
	}
	return encodePoint(p), nil
}

// deriveHalf adds the seed offset to one half of a pair. Either priv or pub
// may be empty; the private side takes precedence for the public output.
func deriveHalf(ctx context.Context, seed []byte, label, priv, pub string) (outPriv, outPub string, err error) {
	if priv == "" && pub == "" {
		return "", "", nil
	}
	off, err := offsetScalar(ctx, seed, label)
	if err != nil {
		return "", "", err
	}
	if priv != "" {
		d, err := decodeScalar(priv)
		if err != nil {
			return "", "", err
		}
		d.Add(d, off).Mod(d, ecc.N)
		if d.Sign() == 0 {
			return "", "", errs.New(errs.DerivationExhausted, "derived scalar is zero")
		}
		outPriv = encodeScalar(d)
		if outPub, err = publicFromScalar(d); err != nil {
			return "", "", err
		}
		if pub == "" {
			return outPriv, outPub, nil
		}
	}
	if pub != "" {
		p, err := decodePoint(pub)
		if err != nil {
			return "", "", err
		}
		q, err := ecc.ScalarBaseMult(off)
		if err != nil {
			return "", "", err
		}
		sum, err := ecc.Add(p, q)
		if err != nil {
			return "", "", err
		}
		if sum.IsInfinity() {
			return "", "", errs.New(errs.InvalidPoint, "derived public key is the identity")
		}
		outPub = encodePoint(sum)
	}
	return outPriv, outPub, nil
}
