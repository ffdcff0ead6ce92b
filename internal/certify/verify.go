package certify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"graphseal/internal/crypto"
	"graphseal/internal/domain"
	"graphseal/internal/errs"
	"graphseal/internal/wire"
)

const verificationFailed = "Certificate verification fail."

// Verifier checks certificates presented with delegated writes.
type Verifier struct {
	suite *crypto.Suite
	graph domain.GraphReader
	log   *slog.Logger
}

// NewVerifier returns a Verifier that resolves block lists through graph.
// graph may be nil when no certificate references a block list.
func NewVerifier(suite *crypto.Suite, graph domain.GraphReader, logger *slog.Logger) *Verifier {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Verifier{suite: suite, graph: graph, log: logger}
}

// Verify checks that cert was issued by authority and grants certificant
// the right to write key on soul at logical time state. Steps run in order
// and the first failure is returned:
//
//  1. the certificate signature verifies under authority
//  2. state is not past the expiry
//  3. certificant is listed, or the certificate is for everyone
//  4. the first write rule matching (path, key) is selected; a forcing rule
//     also requires the certificant's key inside the path or key
//  5. the certificant is not marked in the write block list
func (v *Verifier) Verify(
	ctx context.Context,
	cert any,
	certificant, soul, key string,
	state float64,
	authority string,
) (*domain.CertificateBody, error) {
	env, ok := wire.SignedEnvelope(cert)
	if !ok || certificant == "" || authority == "" {
		return nil, errs.New(errs.CertificateVerificationFailed, verificationFailed)
	}
	m, err := v.suite.Verify(ctx, env, authority, crypto.VerifyOptions{})
	if err != nil {
		return nil, errs.Wrap(errs.CertificateVerificationFailed, verificationFailed, err)
	}
	var body domain.CertificateBody
	if err := wire.Decode(m, &body); err != nil {
		return nil, errs.Wrap(errs.CertificateVerificationFailed, verificationFailed, err)
	}

	if body.E != nil && state > *body.E {
		return nil, errs.New(errs.CertificateExpired, "Certificate expired.")
	}
	policy, err := Policies(body)
	if err != nil {
		return nil, errs.Wrap(errs.CertificateVerificationFailed, verificationFailed, err)
	}
	if !body.C.Includes(certificant) || len(policy.Write) == 0 {
		return nil, errs.New(errs.CertificateVerificationFailed, verificationFailed)
	}

	_, path, _ := strings.Cut(soul, "/")
	rule, ok := policy.Write.Match(path, key)
	if !ok {
		return nil, errs.New(errs.CertificateVerificationFailed, verificationFailed)
	}
	if rule.ForcesCertificant() && path != "" &&
		!strings.Contains(path, certificant) && !strings.Contains(key, certificant) {
		return nil, errs.New(errs.PathConstraintViolated,
			fmt.Sprintf(`Path "%s" or key "%s" must contain string "%s".`, path, key, certificant))
	}

	blocked, err := v.blocked(ctx, body.WB, authority, certificant)
	if err != nil {
		return nil, err
	}
	if blocked {
		v.log.Info("certificant blocked", "certificant", certificant, "soul", soul)
		return nil, errs.New(errs.CertificantBlocked, fmt.Sprintf("Certificant %s blocked.", certificant))
	}
	return &body, nil
}

// blocked looks up certificant in the block list referenced by ref.
func (v *Verifier) blocked(ctx context.Context, ref any, authority, certificant string) (bool, error) {
	if ref == nil || v.graph == nil {
		return false, nil
	}
	list, ok, err := v.blockSoul(ctx, ref, authority)
	if err != nil || !ok {
		return false, err
	}
	val, ok, err := v.graph.Get(ctx, list, certificant)
	if err != nil {
		return false, fmt.Errorf("read block list %s: %w", list, err)
	}
	if !ok {
		return false, nil
	}
	switch t := val.(type) {
	case bool:
		return t, nil
	case float64:
		return t == 1, nil
	case int:
		return t == 1, nil
	}
	return false, nil
}

// blockSoul resolves a block list reference to the soul of the list.
func (v *Verifier) blockSoul(ctx context.Context, ref any, authority string) (string, bool, error) {
	if soul, ok := wire.LinkOf(ref); ok {
		return soul, true, nil
	}
	s, ok := ref.(string)
	if !ok || s == "" {
		return "", false, nil
	}
	if strings.HasPrefix(s, "~") {
		return s, true, nil
	}
	val, ok, err := v.graph.Get(ctx, "~"+authority, s)
	if err != nil {
		return "", false, fmt.Errorf("resolve block list %s: %w", s, err)
	}
	if !ok {
		return "", false, nil
	}
	soul, ok := wire.LinkOf(val)
	return soul, ok, nil
}

var _ domain.CertificateVerifier = (*Verifier)(nil)

// Policies decodes the LEX rules a certificate body grants.
func Policies(body domain.CertificateBody) (Policy, error) {
	var p Policy
	if len(body.R) > 0 {
		if err := json.Unmarshal(body.R, &p.Read); err != nil {
			return Policy{}, fmt.Errorf("read policy: %w", err)
		}
	}
	if len(body.W) > 0 {
		if err := json.Unmarshal(body.W, &p.Write); err != nil {
			return Policy{}, fmt.Errorf("write policy: %w", err)
		}
	}
	return p, nil
}
