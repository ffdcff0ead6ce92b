// Package commands defines the graphseal CLI and wires dependencies for subcommands.
//
// Commands
//
//   - init           Create the local key pair and seal it in the keystore
//   - pair           Print a new, seeded or derived key pair
//   - fingerprint    Print the fingerprint and key ID of a public key
//   - sign, verify   Produce and check signed envelopes
//   - encrypt        Seal data under a key (AES-GCM or XChaCha20-Poly1305)
//   - decrypt        Open an encrypted envelope
//   - secret         Derive the ECDH secret shared with a peer
//   - certify        Issue a write certificate
//   - work, hash     Stretch or digest data; address prints its CID
//   - check          Run one mutation through a local firewall
//   - put, get       Write to and read from a relay
//   - account        Create or log into an alias published on a relay
//
// # Implementation
//
// The root command loads the YAML config, applies flag overrides and builds
// the dependency graph (suite, firewall, keystore, services, relay client)
// before any subcommand runs. Key pairs come from the keystore (--home, -p)
// or from a --pair JSON file.
package commands
