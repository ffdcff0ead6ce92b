package firewall

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"graphseal/internal/crypto"
	"graphseal/internal/domain"
	"graphseal/internal/errs"
)

// Options configures a Firewall.
type Options struct {
	// Secure rejects writes to souls that carry no public key.
	Secure bool
	// Faith honours mutations marked Faith, forwarding them unverified.
	Faith bool

	Logger     *slog.Logger
	Registerer prometheus.Registerer
}

// Firewall checks mutations against the graph's trust rules. It is safe for
// concurrent use.
type Firewall struct {
	suite  *crypto.Suite
	certs  domain.CertificateVerifier
	clock  domain.Clock
	secure bool
	faith  bool
	log    *slog.Logger
	m      *metrics

	mu  sync.RWMutex
	own map[string]map[string]struct{}
}

// New returns a Firewall. certs checks delegated writes; clock supplies the
// current logical time for expiring souls.
func New(suite *crypto.Suite, certs domain.CertificateVerifier, clock domain.Clock, opts Options) *Firewall {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Firewall{
		suite:  suite,
		certs:  certs,
		clock:  clock,
		secure: opts.Secure,
		faith:  opts.Faith,
		log:    opts.Logger,
		m:      newMetrics(opts.Registerer),
		own:    make(map[string]map[string]struct{}),
	}
}

// Check decides the fate of m. session is the locally authenticated pair,
// or nil.
func (f *Firewall) Check(ctx context.Context, m domain.Mutation, session *domain.KeyPair) domain.Verdict {
	started := time.Now()
	class := Classify(m.Soul)
	v := f.check(ctx, m, session, class)
	if v.Put.ID == "" {
		v.Put.ID = m.ID
	}
	f.m.observe(class.Name(), v.Action.String(), started)

	switch v.Action {
	case domain.Accept:
		f.log.Debug("mutation accepted", "id", m.ID, "soul", m.Soul, "key", m.Key, "class", class.Name())
	case domain.Reject:
		f.log.Info("mutation rejected",
			"id", m.ID, "soul", m.Soul, "key", m.Key, "class", class.Name(),
			"code", string(errs.CodeOf(v.Err)), "reason", errs.ReasonOf(v.Err))
	case domain.Drop:
		f.log.Debug("mutation dropped", "id", m.ID, "soul", m.Soul, "key", m.Key)
	}
	return v
}

// Handle runs Check and reports the verdict through callbacks: next once
// on accept, reject once with the mutation ID and error on reject, neither
// on drop.
func (f *Firewall) Handle(
	ctx context.Context,
	m domain.Mutation,
	session *domain.KeyPair,
	next func(domain.Mutation),
	reject func(id string, err error),
) {
	v := f.Check(ctx, m, session)
	switch v.Action {
	case domain.Accept:
		if next != nil {
			next(v.Put)
		}
	case domain.Reject:
		if reject != nil {
			reject(m.ID, v.Err)
		}
	}
}

func (f *Firewall) check(ctx context.Context, m domain.Mutation, session *domain.KeyPair, class Class) domain.Verdict {
	if m.Soul == "" || m.Key == "" {
		return drop()
	}
	if err := ctx.Err(); err != nil {
		return reject(err)
	}
	if m.Faith && f.faith {
		return f.checkFaith(m)
	}
	if f.expired(m) {
		return drop()
	}

	switch c := class.(type) {
	case AliasRecord:
		return checkAlias(m)
	case AliasMemberRecord:
		return checkAliasMember(m)
	case OwnerRecord:
		return f.checkOwner(ctx, m, session, c.Pub)
	case ContentAddressedRecord:
		return f.checkHash(ctx, m)
	default:
		return f.checkAny(m)
	}
}

// expired reports whether m targets a soul with a "<?seconds" lifetime that
// has passed.
func (f *Firewall) expired(m domain.Mutation) bool {
	_, rest, ok := strings.Cut(m.Soul, "<?")
	if !ok || f.clock == nil {
		return false
	}
	secs := leadingFloat(rest)
	return secs != 0 && m.State < f.clock.Now()-secs*1000
}

// leadingFloat parses the longest numeric prefix of s, or returns 0.
func leadingFloat(s string) float64 {
	s = strings.TrimLeft(s, " \t\n")
	end := 0
	dot := false
scan:
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '.' && !dot:
			dot = true
		case (r == '-' || r == '+') && i == 0:
		default:
			break scan
		}
		end = i + 1
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0
	}
	return v
}

// Owners returns the public keys recorded as owning soul through a signed
// link from their own graph.
func (f *Firewall) Owners(soul string) []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	set := f.own[soul]
	out := make([]string, 0, len(set))
	for pub := range set {
		out = append(out, pub)
	}
	return out
}

func (f *Firewall) recordOwner(soul, pub string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	set, ok := f.own[soul]
	if !ok {
		set = make(map[string]struct{})
		f.own[soul] = set
	}
	set[pub] = struct{}{}
}

func accept(m domain.Mutation) domain.Verdict {
	return domain.Verdict{Action: domain.Accept, Put: m}
}

func reject(err error) domain.Verdict {
	return domain.Verdict{Action: domain.Reject, Err: err}
}

func rejectf(code errs.Code, reason string) domain.Verdict {
	return reject(errs.New(code, reason))
}

func drop() domain.Verdict { return domain.Verdict{Action: domain.Drop} }

var _ domain.Firewall = (*Firewall)(nil)
