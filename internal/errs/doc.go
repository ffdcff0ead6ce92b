// Package errs defines the failure taxonomy used across graphseal.
//
// Every failure carries a stable Code. Primitives return (zero, error) and
// may additionally record the failure on a shared Diagnostics value; the
// firewall reports the Reason string of the error to the writing peer.
//
//	if errs.Is(err, errs.SignatureMismatch) { ... }
//	switch errs.CodeOf(err) { ... }
package errs
