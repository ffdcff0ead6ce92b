// Package crypto holds the P-256 primitives behind graphseal's trust layer.
//
// Contents
//
//   - Key pairs: random, seeded and additively derived (Suite.Pair)
//   - Signing and verification of JSON payloads (Suite.Sign, Suite.Verify)
//   - Authenticated encryption under a passphrase, secret or key
//     (Suite.Encrypt, Suite.Decrypt)
//   - ECDH shared secrets (Suite.Secret)
//   - Proof of work and digests (Suite.Work, Suite.Hash)
//   - Fingerprints, key IDs, BIP-39 seeds and content addresses
//
// # Keys
//
// Public keys are "<x>.<y>", private keys a single scalar, each 32 bytes of
// base64url without padding. Decoding rejects scalars outside [1, n) and
// points off the curve.
//
// # Failures
//
// Every Suite method returns an error carrying an errs.Code and records it
// as the Suite's LastError. Verification keys are imported once per public
// key through the Suite's keycache.Cache.
package crypto
