package types

// Fingerprint is a short identifier for public keys presented to users.
type Fingerprint string

// String returns the string form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }

// KeyID is the 8-byte PGPv4-style identifier of a signing key, hex encoded.
type KeyID string

// String returns the string form of the key identifier.
func (id KeyID) String() string { return string(id) }
