package certify

import (
	"context"
	"encoding/json"
	"strings"

	"graphseal/internal/crypto"
	"graphseal/internal/domain"
	"graphseal/internal/errs"
	"graphseal/internal/lex"
	"graphseal/internal/wire"
)

// Policy holds the read and write grants of a certificate.
type Policy struct {
	Read  lex.Policy
	Write lex.Policy
}

// IssueOptions carries the optional parts of a certificate.
type IssueOptions struct {
	// Expiry is the logical time in milliseconds after which the grant no
	// longer applies. Zero means no expiry.
	Expiry float64

	// ReadBlock and WriteBlock reference block lists: a soul starting with
	// "~", a key under the authority's own node, or a {"#": soul} link.
	// Other values are ignored.
	ReadBlock  any
	WriteBlock any
}

// Issuer signs certificates with a crypto suite.
type Issuer struct {
	suite *crypto.Suite
}

// NewIssuer returns an Issuer signing through suite.
func NewIssuer(suite *crypto.Suite) *Issuer { return &Issuer{suite: suite} }

// Issue builds and signs a certificate.
//
// certificants may be "*", a public key, a domain.KeyPair, a map holding
// "pub", or a slice of those; a slice containing "*" grants everyone.
// policy may be a Policy, a lex.Policy, a lex.Rule, a string or a slice of
// strings; anything but a Policy is a write policy.
func (i *Issuer) Issue(
	ctx context.Context,
	certificants any,
	policy any,
	authority domain.KeyPair,
	opts IssueOptions,
) (domain.Certificate, error) {
	c, ok := NormalizeCertificants(certificants)
	if !ok {
		return domain.Certificate{}, errs.New(errs.NoCertificantFound, "No certificant found.")
	}
	p, ok := normalizePolicy(policy)
	if !ok {
		return domain.Certificate{}, errs.New(errs.NoPolicyFound, "No policy found.")
	}

	body := domain.CertificateBody{
		C:  c,
		RB: blockRef(opts.ReadBlock),
		WB: blockRef(opts.WriteBlock),
	}
	var err error
	if body.R, err = rawPolicy(p.Read); err != nil {
		return domain.Certificate{}, errs.Wrap(errs.InvalidInput, "encode read policy", err)
	}
	if body.W, err = rawPolicy(p.Write); err != nil {
		return domain.Certificate{}, errs.Wrap(errs.InvalidInput, "encode write policy", err)
	}
	if opts.Expiry > 0 {
		e := opts.Expiry
		body.E = &e
	}
	return i.suite.Sign(ctx, body, authority, crypto.SignOptions{})
}

// IssuePacked is Issue returning the "SEA" string form.
func (i *Issuer) IssuePacked(
	ctx context.Context,
	certificants any,
	policy any,
	authority domain.KeyPair,
	opts IssueOptions,
) (string, error) {
	cert, err := i.Issue(ctx, certificants, policy, authority, opts)
	if err != nil {
		return "", err
	}
	return wire.Pack(cert)
}

// NormalizeCertificants reduces the accepted certificant shapes to a
// domain.Certificants. It reports false when nothing usable is named.
func NormalizeCertificants(v any) (domain.Certificants, bool) {
	switch t := v.(type) {
	case nil:
		return domain.Certificants{}, false
	case domain.Certificants:
		return t, !t.IsZero()
	case string:
		return fromKeys([]string{t})
	case domain.KeyPair:
		return fromKeys([]string{t.Pub})
	case *domain.KeyPair:
		if t == nil {
			return domain.Certificants{}, false
		}
		return fromKeys([]string{t.Pub})
	case map[string]any:
		pub, _ := t["pub"].(string)
		return fromKeys([]string{pub})
	case []string:
		return fromKeys(t)
	case []domain.KeyPair:
		keys := make([]string, 0, len(t))
		for _, p := range t {
			keys = append(keys, p.Pub)
		}
		return fromKeys(keys)
	case []any:
		keys := make([]string, 0, len(t))
		for _, e := range t {
			switch e := e.(type) {
			case string:
				keys = append(keys, e)
			case domain.KeyPair:
				keys = append(keys, e.Pub)
			case map[string]any:
				if pub, ok := e["pub"].(string); ok {
					keys = append(keys, pub)
				}
			}
		}
		return fromKeys(keys)
	}
	return domain.Certificants{}, false
}

func fromKeys(keys []string) (domain.Certificants, bool) {
	var out domain.Certificants
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "*" {
			return domain.Certificants{All: true}, true
		}
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out.Keys = append(out.Keys, k)
	}
	return out, !out.IsZero()
}

func normalizePolicy(v any) (Policy, bool) {
	var p Policy
	switch t := v.(type) {
	case Policy:
		p = t
	case *Policy:
		if t != nil {
			p = *t
		}
	case lex.Policy:
		p.Write = t
	case lex.Rule:
		p.Write = lex.Policy{t}
	case []lex.Rule:
		p.Write = lex.Policy(t)
	case string:
		if t != "" {
			p.Write = lex.Policy{{Text: lex.Exact(t)}}
		}
	case []string:
		for _, s := range t {
			if s != "" {
				p.Write = append(p.Write, lex.Rule{Text: lex.Exact(s)})
			}
		}
	}
	p.Read = dropEmpty(p.Read)
	p.Write = dropEmpty(p.Write)
	return p, len(p.Read) > 0 || len(p.Write) > 0
}

func dropEmpty(p lex.Policy) lex.Policy {
	var out lex.Policy
	for _, r := range p {
		if !r.IsZero() {
			out = append(out, r)
		}
	}
	return out
}

// blockRef keeps only the reference shapes Verify can resolve.
func blockRef(v any) any {
	switch t := v.(type) {
	case string:
		if t != "" {
			return t
		}
	case map[string]any:
		if soul, ok := wire.LinkOf(t); ok {
			return wire.Link(soul)
		}
	}
	return nil
}

func rawPolicy(p lex.Policy) (json.RawMessage, error) {
	if len(p) == 0 {
		return nil, nil
	}
	return json.Marshal(p)
}
