package interfaces

import (
	"context"

	domaintypes "graphseal/internal/domain/types"
)

// GraphReader looks up materialized values in the host graph. Lookups are
// read-only and never pass through the firewall.
type GraphReader interface {
	Get(ctx context.Context, soul, key string) (value any, ok bool, err error)
}

// GraphWriter applies accepted mutations to the host graph.
type GraphWriter interface {
	Put(ctx context.Context, m domaintypes.Mutation) error
}

// Clock returns the current logical time in milliseconds.
type Clock interface {
	Now() float64
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() float64

// Now calls f.
func (f ClockFunc) Now() float64 { return f() }

// CertificateVerifier checks a delegated write grant.
type CertificateVerifier interface {
	Verify(
		ctx context.Context,
		cert any,
		certificant, soul, key string,
		state float64,
		authority string,
	) (*domaintypes.CertificateBody, error)
}

// Firewall decides whether a mutation may enter local state. session is
// the locally authenticated pair, or nil.
type Firewall interface {
	Check(ctx context.Context, m domaintypes.Mutation, session *domaintypes.KeyPair) domaintypes.Verdict
}
