package firewall

import (
	"context"
	"math"

	"graphseal/internal/crypto"
	"graphseal/internal/domain"
	"graphseal/internal/errs"
	"graphseal/internal/wire"
)

// shuffleAttack is the logical time (2019-01-01) before which signed
// values are accepted without binding them to their soul, key and state.
const shuffleAttack = 1546329600000

const unverified = "Unverified data."

// checkOwner handles a write into the graph of pub.
func (f *Firewall) checkOwner(
	ctx context.Context,
	m domain.Mutation,
	session *domain.KeyPair,
	pub string,
) domain.Verdict {
	raw := recordOf(m.Value)

	if m.Key == "pub" && m.Soul == "~"+pub {
		if s, ok := m.Value.(string); ok && s == pub {
			out := m
			out.Plain, out.Writer = pub, pub
			return accept(out)
		}
		return rejectf(errs.AccountMismatch, "Account not same!")
	}

	if session != nil && session.CanSign() && !truthy(raw["*"]) && !truthy(raw["+"]) &&
		(session.Pub == pub || m.Cert != nil) {
		return f.signForSession(ctx, m, raw, *session, pub)
	}
	return f.verifySigned(ctx, m, raw, pub)
}

// signForSession signs m with the local session and stores the value as
// {":": value, "~": signature}. A value already signed by the session for
// this soul, key and state keeps its signature. Writes into another graph
// also carry the session's certificate ("+") and key ("*").
func (f *Firewall) signForSession(
	ctx context.Context,
	m domain.Mutation,
	raw map[string]any,
	session domain.KeyPair,
	pub string,
) domain.Verdict {
	inner := m.Value
	var plain any
	var sig string
	if env, ok := packRecord(m, raw); ok {
		inner = raw[":"]
		if _, err := f.suite.Verify(ctx, env, session.Pub, crypto.VerifyOptions{}); err == nil {
			plain, sig = inner, env.S
		}
	}
	if sig == "" {
		env, err := f.suite.Sign(ctx, putMessage(m, inner), session, crypto.SignOptions{})
		if err != nil {
			code := errs.CodeOf(err)
			if code == "" {
				code = errs.UnverifiedData
			}
			return reject(errs.Wrap(code, "Signature fail.", err))
		}
		p, _ := unpack(env.M, m)
		plain, sig = p, env.S
	}
	record := map[string]any{":": plain, "~": sig}

	if session.Pub != pub {
		cert, ok := wire.SignedEnvelope(m.Cert)
		if !ok {
			return rejectf(errs.CertificateVerificationFailed, "Certificate verification fail.")
		}
		if err := f.verifyCert(ctx, cert, session.Pub, m, pub); err != nil {
			return reject(err)
		}
		record["+"] = map[string]any{"m": cert.M, "s": cert.S}
		record["*"] = session.Pub
	}
	f.trackLink(plain, pub)
	return f.acceptRecord(m, record, plain, session.Pub)
}

// verifySigned accepts a value that already carries a signature by the
// graph owner, or by a certificant ("*") with a valid certificate ("+").
func (f *Firewall) verifySigned(ctx context.Context, m domain.Mutation, raw map[string]any, pub string) domain.Verdict {
	signer := pub
	if truthy(raw["*"]) {
		w, ok := raw["*"].(string)
		if !ok || !truthy(raw["+"]) {
			return rejectf(errs.UnverifiedData, unverified)
		}
		signer = w
	}

	env, ok := packRecord(m, raw)
	if !ok {
		env, ok = wire.SignedEnvelope(m.Value)
	}
	if !ok {
		return rejectf(errs.UnverifiedData, unverified)
	}
	data, err := f.suite.Verify(ctx, env, signer, crypto.VerifyOptions{})
	if err != nil {
		return reject(errs.Wrap(errs.UnverifiedData, unverified, err))
	}
	plain, ok := unpack(data, m)
	if !ok {
		return rejectf(errs.UnverifiedData, unverified)
	}

	if signer != pub {
		if err := f.verifyCert(ctx, raw["+"], signer, m, pub); err != nil {
			return reject(err)
		}
	}
	f.trackLink(plain, pub)

	out := m
	out.Plain, out.Writer = plain, signer
	return accept(out)
}

func (f *Firewall) verifyCert(ctx context.Context, cert any, certificant string, m domain.Mutation, pub string) error {
	if f.certs == nil {
		return errs.New(errs.CertificateVerificationFailed, "Certificate verification fail.")
	}
	_, err := f.certs.Verify(ctx, cert, certificant, m.Soul, m.Key, m.State, pub)
	return err
}

// trackLink records pub as an owner of the soul v links to, when that soul
// is rooted in pub's own graph.
func (f *Firewall) trackLink(v any, pub string) {
	link, ok := wire.LinkOf(v)
	if !ok {
		return
	}
	if owner, ok := OwnerPub(link); ok && owner == pub {
		f.recordOwner(link, pub)
	}
}

func (f *Firewall) acceptRecord(m domain.Mutation, record map[string]any, plain any, writer string) domain.Verdict {
	b, err := wire.Marshal(record)
	if err != nil {
		return reject(errs.Wrap(errs.InvalidInput, "Stringify error.", err))
	}
	out := m
	out.Value = string(b)
	out.Plain = plain
	out.Writer = writer
	out.Cert = nil
	return accept(out)
}

// recordOf returns the stored form of a value as a generic map, or an empty
// map when it is not an object.
func recordOf(v any) map[string]any {
	n, err := wire.Normalize(wire.Parse(v))
	if err != nil {
		return map[string]any{}
	}
	if raw, ok := n.(map[string]any); ok {
		return raw
	}
	return map[string]any{}
}

// putMessage is the message signed for a mutation: its soul, key, value and
// state.
func putMessage(m domain.Mutation, value any) map[string]any {
	return map[string]any{"#": m.Soul, ".": m.Key, ":": value, ">": m.State}
}

// packRecord rebuilds the signed message of a stored {":", "~"} record.
func packRecord(m domain.Mutation, raw map[string]any) (domain.SignedEnvelope, bool) {
	v, hasValue := raw[":"]
	sig, _ := raw["~"].(string)
	if !hasValue || sig == "" {
		return domain.SignedEnvelope{}, false
	}
	return domain.SignedEnvelope{M: putMessage(m, v), S: sig}, true
}

// unpack extracts the value from a verified message: the ":" field of a
// put message, or the value of a [soul, key, value, state] tuple bound to
// m. Older unbound values are taken as they are.
func unpack(data any, m domain.Mutation) (any, bool) {
	switch t := data.(type) {
	case map[string]any:
		if v, ok := t[":"]; ok {
			return v, true
		}
	case []any:
		if len(t) == 4 {
			soul, _ := t[0].(string)
			key, _ := t[1].(string)
			state, _ := t[3].(float64)
			if soul == m.Soul && key == m.Key && math.Floor(state) == math.Floor(m.State) {
				return t[2], true
			}
		}
	}
	if m.State < shuffleAttack {
		return data, true
	}
	return nil, false
}
