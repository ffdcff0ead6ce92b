package crypto

import (
	"context"
	"crypto/rand"
	"io"
	"log/slog"

	"graphseal/internal/errs"
	"graphseal/internal/keycache"
)

// DefaultWorkIterations is the PBKDF2 iteration count used by Work.
const DefaultWorkIterations = 100000

// Options configures a Suite. Zero values select the defaults.
type Options struct {
	// Keys memoizes imported verification keys. A private cache is built
	// when nil.
	Keys *keycache.Cache

	Logger *slog.Logger

	// Strict logs every primitive failure at warning level instead of
	// debug. Failures are returned to the caller either way.
	Strict bool

	// Rand is the randomness source for keys, salts and nonces.
	Rand io.Reader

	WorkIterations int
}

// Suite bundles the cryptographic primitives with their shared state: the
// verification key cache and the most recent failure.
type Suite struct {
	keys   *keycache.Cache
	diag   errs.Diagnostics
	log    *slog.Logger
	strict bool
	rand   io.Reader
	iter   int
}

// New returns a Suite built from opts.
func New(opts Options) *Suite {
	s := &Suite{
		keys:   opts.Keys,
		log:    opts.Logger,
		strict: opts.Strict,
		rand:   opts.Rand,
		iter:   opts.WorkIterations,
	}
	if s.keys == nil {
		s.keys = keycache.New(ImportVerifyKey, keycache.Options{})
	}
	if s.log == nil {
		s.log = slog.New(slog.DiscardHandler)
	}
	if s.rand == nil {
		s.rand = rand.Reader
	}
	if s.iter <= 0 {
		s.iter = DefaultWorkIterations
	}
	return s
}

// Keys returns the verification key cache.
func (s *Suite) Keys() *keycache.Cache { return s.keys }

// LastError returns the most recent primitive failure, or nil.
func (s *Suite) LastError() error { return s.diag.Last() }

// fail records err and returns it.
func (s *Suite) fail(op string, err error) error {
	if err == nil {
		return nil
	}
	level := slog.LevelDebug
	if s.strict {
		level = slog.LevelWarn
	}
	s.log.Log(context.Background(), level, "crypto primitive failed", "op", op, "code", string(errs.CodeOf(err)), "err", err)
	return s.diag.Record(err)
}

func (s *Suite) random(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(s.rand, b); err != nil {
		return nil, err
	}
	return b, nil
}
