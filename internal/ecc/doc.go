// Package ecc implements affine point arithmetic over NIST P-256.
//
// It exists so that key derivation can add scalars and points directly
// (additive re-derivation of a public key needs P + k·G, which crypto/ecdh
// does not expose). Signing, verification and ECDH use the standard library.
//
// # Timing
//
// ScalarMult walks every bit of the reduced scalar and always computes the
// addition before selecting it; ModInverse does the same over the exponent.
// math/big itself is not constant time, so this evens out the per-bit work
// without claiming side-channel resistance.
package ecc
