// Package relay provides an HTTP implementation of the domain.RelayClient
// interface used by the graphseal CLI.
//
// The relay accepts mutations, runs them through its write firewall and
// serves the resulting nodes. Supported operations:
//   - Putting one mutation (POST /put).
//   - Reading a node's stored values (GET /node/{soul}).
//
// All requests are JSON over HTTP and accept a context for cancellation and
// deadlines. A firewall rejection comes back as an *errs.Error carrying the
// relay's code and reason; other non-2xx statuses are returned with the
// method, path and status text.
package relay
