// Package wire holds the serialization conventions shared by the crypto
// primitives, the certificate protocol and the firewall.
//
// # Marker
//
// Signed and encrypted envelopes stored as plain strings carry the literal
// prefix "SEA" before their JSON, so readers can tell a wrapped payload
// from an ordinary string without parsing every value.
//
// # Canonical form
//
// Values are signed over their JSON encoding with sorted object keys. Go
// values are normalized through a JSON round trip first, so a struct and
// the map decoded from it digest identically.
package wire
