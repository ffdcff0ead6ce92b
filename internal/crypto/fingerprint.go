package crypto

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"

	"github.com/mr-tron/base58"

	"graphseal/internal/domain"
)

const fingerprintPrefix = "gs1"

// Fingerprint returns a short, human-comparable identifier of a public key.
//
// It hashes the raw x||y coordinates with SHA-256, truncates to 20 bytes and
// base58-encodes the result behind a version prefix.
func Fingerprint(pub string) (domain.Fingerprint, error) {
	p, err := decodePoint(pub)
	if err != nil {
		return "", err
	}
	raw := uncompressed(p)[1:]
	sum := sha256.Sum256(raw)
	return domain.Fingerprint(fingerprintPrefix + base58.Encode(sum[:20])), nil
}

// KeyID returns the PGPv4-style key ID of a public key: the last 8 bytes
// of SHA-1 over 0x99 || len16 || x || y, hex encoded.
func KeyID(pub string) (domain.KeyID, error) {
	p, err := decodePoint(pub)
	if err != nil {
		return "", err
	}
	raw := uncompressed(p)[1:]
	packet := append([]byte{0x99, byte(len(raw) >> 8), byte(len(raw))}, raw...)
	sum := sha1.Sum(packet)
	return domain.KeyID(hex.EncodeToString(sum[len(sum)-8:])), nil
}
