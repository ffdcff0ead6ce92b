package errs

import (
	"errors"
	"sync"
)

// Code is a stable failure category. Callers branch on Code, never on the
// human-readable reason.
type Code string

const (
	InvalidInput                  Code = "InvalidInput"
	InvalidKeyEncoding            Code = "InvalidKeyEncoding"
	InvalidPoint                  Code = "InvalidPoint"
	DerivationExhausted           Code = "DerivationExhausted"
	NoSigningKey                  Code = "NoSigningKey"
	NoEncryptionKey               Code = "NoEncryptionKey"
	NoSecretMaterial              Code = "NoSecretMaterial"
	SignatureMismatch             Code = "SignatureMismatch"
	DecryptionFailed              Code = "DecryptionFailed"
	NoCertificantFound            Code = "NoCertificantFound"
	NoPolicyFound                 Code = "NoPolicyFound"
	CertificateExpired            Code = "CertificateExpired"
	CertificateVerificationFailed Code = "CertificateVerificationFailed"
	CertificantBlocked            Code = "CertificantBlocked"
	PathConstraintViolated        Code = "PathConstraintViolated"
	AliasMismatch                 Code = "AliasMismatch"
	AccountMismatch               Code = "AccountMismatch"
	HashMismatch                  Code = "HashMismatch"
	UnverifiedData                Code = "UnverifiedData"
	SoulMissingPublicKey          Code = "SoulMissingPublicKey"
)

// Error implements error so a bare Code can be used as an errors.Is target.
func (c Code) Error() string { return string(c) }

// Error is the structured error type shared by every graphseal package.
//
// Reason is the human-readable text reported to peers. For firewall
// rejections it is one of a fixed vocabulary ("Unverified data.", ...).
type Error struct {
	Code   Code
	Reason string
	Cause  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Reason
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap exposes both the code and the cause, so errors.Is matches either.
func (e *Error) Unwrap() []error {
	if e == nil {
		return nil
	}
	if e.Cause == nil {
		return []error{e.Code}
	}
	return []error{e.Code, e.Cause}
}

// New returns an *Error with the given code and reason.
func New(code Code, reason string) *Error {
	return &Error{Code: code, Reason: reason}
}

// Wrap returns an *Error carrying cause.
func Wrap(code Code, reason string, cause error) *Error {
	return &Error{Code: code, Reason: reason, Cause: cause}
}

// Is reports whether err is (or wraps) an error with the given code.
func Is(err error, code Code) bool {
	return errors.Is(err, code)
}

// CodeOf returns the code of the outermost *Error in err's chain, or "" if
// err carries none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var c Code
	if errors.As(err, &c) {
		return c
	}
	return ""
}

// ReasonOf returns the human-readable reason of err.
func ReasonOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Reason != "" {
		return e.Reason
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// Diagnostics remembers the most recent failure seen by a component.
// The zero value is ready to use.
type Diagnostics struct {
	mu   sync.Mutex
	last error
}

// Record stores err as the most recent failure and returns it unchanged.
// A nil err is ignored.
func (d *Diagnostics) Record(err error) error {
	if err == nil || d == nil {
		return err
	}
	d.mu.Lock()
	d.last = err
	d.mu.Unlock()
	return err
}

// Last returns the most recent failure, or nil.
func (d *Diagnostics) Last() error {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

// Reset clears the recorded failure.
func (d *Diagnostics) Reset() {
	d.mu.Lock()
	d.last = nil
	d.mu.Unlock()
}
