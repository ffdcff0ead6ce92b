// Package app wires application dependencies for the CLI and the relay.
//
// Config is read from an optional YAML file, then environment overrides,
// then defaults. NewWire builds the logger, crypto suite, certificate
// verifier, firewall, graph, keystore and services from it, exposing them
// via the Wire struct for commands to use.
package app
