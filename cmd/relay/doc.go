// Package main runs the in-memory HTTP relay used by graphseal during
// development and tests. Every write passes through the same firewall a
// peer would run before it reaches the relay's graph.
//
// HTTP API
//
//	POST /put
//	    Check one mutation {"#", ".", ":", ">", "cert"} and store it when
//	    accepted. 200 {"id", "ok": true} on accept, 202 {"id", "ok": false}
//	    when silently dropped, 403 {"id", "err", "code"} on rejection and 429
//	    when the soul exceeds its write rate.
//
//	GET /node/{soul}
//	    Return the stored wire values of {soul} with "_" metadata carrying
//	    the soul and the state of every key. 404 when the node is empty.
//
//	GET /metrics
//	    Prometheus metrics (firewall verdicts, verify latency, key cache).
//
//	GET /healthz
//	    Liveness probe.
//
// Behaviour
//
//   - All state is held in memory and lost on process exit.
//   - The relay never holds keys: it only verifies signatures and
//     certificates, it never signs.
//   - An access log records method, path, status, bytes and duration for
//     each request.
//   - The default listen address is :8080.
package main
