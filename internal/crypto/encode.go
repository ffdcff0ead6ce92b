package crypto

import (
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/elliptic"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"graphseal/internal/ecc"
	"graphseal/internal/errs"
)

// B64 returns standard base64 encoding without newlines.
func B64(b []byte) string { return base64.StdEncoding.EncodeToString(b) }

var b64url = base64.RawURLEncoding

// Encoding names how binary fields of an envelope are written as text.
type Encoding string

const (
	Base64    Encoding = "base64"
	Base64URL Encoding = "base64url"
	Hex       Encoding = "hex"
	UTF8      Encoding = "utf8"
)

func (e Encoding) orDefault() Encoding {
	if e == "" {
		return Base64
	}
	return e
}

// Encode writes b in encoding e. UTF8 copies the bytes into the string.
func (e Encoding) Encode(b []byte) string {
	switch e.orDefault() {
	case Base64URL:
		return b64url.EncodeToString(b)
	case Hex:
		return hex.EncodeToString(b)
	case UTF8:
		return string(b)
	default:
		return base64.StdEncoding.EncodeToString(b)
	}
}

// Decode reverses Encode. The base64 forms accept both alphabets, with or
// without padding.
func (e Encoding) Decode(s string) ([]byte, error) {
	switch e.orDefault() {
	case Base64, Base64URL:
		return decodeAnyBase64(s)
	case Hex:
		return hex.DecodeString(s)
	case UTF8:
		return []byte(s), nil
	}
	return nil, fmt.Errorf("unknown encoding %q", string(e))
}

// Valid reports whether e names a known encoding.
func (e Encoding) Valid() bool {
	switch e.orDefault() {
	case Base64, Base64URL, Hex, UTF8:
		return true
	}
	return false
}

func decodeAnyBase64(s string) ([]byte, error) {
	s = strings.TrimRight(s, "=")
	if strings.ContainsAny(s, "-_") {
		return base64.RawURLEncoding.DecodeString(s)
	}
	return base64.RawStdEncoding.DecodeString(s)
}

func encodeScalar(k *big.Int) string {
	b := make([]byte, ecc.ByteLen)
	k.FillBytes(b)
	return b64url.EncodeToString(b)
}

func decodeCoordinate(s string) (*big.Int, error) {
	if s == "" {
		return nil, errs.New(errs.InvalidKeyEncoding, "empty key component")
	}
	b, err := b64url.DecodeString(s)
	if err != nil {
		return nil, errs.Wrap(errs.InvalidKeyEncoding, "key component is not base64url", err)
	}
	if len(b) > ecc.ByteLen {
		return nil, errs.New(errs.InvalidKeyEncoding, "key component is longer than 32 bytes")
	}
	return new(big.Int).SetBytes(b), nil
}

func decodeScalar(s string) (*big.Int, error) {
	k, err := decodeCoordinate(s)
	if err != nil {
		return nil, err
	}
	if k.Sign() <= 0 || k.Cmp(ecc.N) >= 0 {
		return nil, errs.New(errs.InvalidKeyEncoding, "private scalar out of range")
	}
	return k, nil
}

func scalarBytes(k *big.Int) []byte {
	b := make([]byte, ecc.ByteLen)
	k.FillBytes(b)
	return b
}

func encodePoint(p ecc.Point) string {
	return encodeScalar(p.X) + "." + encodeScalar(p.Y)
}

func decodePoint(pub string) (ecc.Point, error) {
	parts := strings.Split(pub, ".")
	if len(parts) != 2 {
		return ecc.Point{}, errs.New(errs.InvalidKeyEncoding, "public key must be <x>.<y>")
	}
	x, err := decodeCoordinate(parts[0])
	if err != nil {
		return ecc.Point{}, err
	}
	y, err := decodeCoordinate(parts[1])
	if err != nil {
		return ecc.Point{}, err
	}
	p, err := ecc.NewPoint(x, y)
	if err != nil {
		return ecc.Point{}, errs.Wrap(errs.InvalidKeyEncoding, "public key is not on P-256", err)
	}
	return p, nil
}

// uncompressed returns the SEC 1 encoding 0x04 || x || y.
func uncompressed(p ecc.Point) []byte {
	out := make([]byte, 1, 1+2*ecc.ByteLen)
	out[0] = 4
	out = append(out, scalarBytes(p.X)...)
	return append(out, scalarBytes(p.Y)...)
}

// encodeSEC1 converts 0x04 || x || y into "<x>.<y>".
func encodeSEC1(raw []byte) string {
	return b64url.EncodeToString(raw[1:1+ecc.ByteLen]) + "." + b64url.EncodeToString(raw[1+ecc.ByteLen:])
}

// ImportVerifyKey parses an encoded public key into an ECDSA verification
// key. It is the import function behind the Suite's key cache.
func ImportVerifyKey(pub string) (*ecdsa.PublicKey, error) {
	p, err := decodePoint(pub)
	if err != nil {
		return nil, err
	}
	return &ecdsa.PublicKey{Curve: elliptic.P256(), X: p.X, Y: p.Y}, nil
}

// signingKey builds an ECDSA private key from an encoded scalar. The public
// half is recomputed from the scalar.
func signingKey(priv string) (*ecdsa.PrivateKey, error) {
	d, err := decodeScalar(priv)
	if err != nil {
		return nil, err
	}
	k, err := ecdh.P256().NewPrivateKey(scalarBytes(d))
	if err != nil {
		return nil, errs.Wrap(errs.InvalidKeyEncoding, "invalid private scalar", err)
	}
	raw := k.PublicKey().Bytes()
	return &ecdsa.PrivateKey{
		PublicKey: ecdsa.PublicKey{
			Curve: elliptic.P256(),
			X:     new(big.Int).SetBytes(raw[1 : 1+ecc.ByteLen]),
			Y:     new(big.Int).SetBytes(raw[1+ecc.ByteLen:]),
		},
		D: d,
	}, nil
}

// ValidatePublic reports whether pub is a well-formed P-256 public key.
func ValidatePublic(pub string) error {
	_, err := decodePoint(pub)
	return err
}
