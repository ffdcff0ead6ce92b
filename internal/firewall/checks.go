package firewall

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"graphseal/internal/domain"
	"graphseal/internal/errs"
	"graphseal/internal/wire"
)

// checkAlias guards the alias index: "~@" / <alias> must link to "~@<alias>".
func checkAlias(m domain.Mutation) domain.Verdict {
	if !truthy(m.Value) {
		return rejectf(errs.AliasMismatch, "Data must exist!")
	}
	if link, ok := wire.LinkOf(wire.Parse(m.Value)); ok && link == "~@"+m.Key {
		return acceptPlain(m)
	}
	return rejectf(errs.AliasMismatch, "Alias not same!")
}

// checkAliasMember guards "~@<alias>": every key links to itself.
func checkAliasMember(m domain.Mutation) domain.Verdict {
	if !truthy(m.Value) {
		return rejectf(errs.AliasMismatch, "Alias must exist!")
	}
	if link, ok := wire.LinkOf(wire.Parse(m.Value)); ok && link == m.Key {
		return acceptPlain(m)
	}
	return rejectf(errs.AliasMismatch, "Alias not same!")
}

// checkHash accepts a value only under the name of its own SHA-256. The
// name is the text after the last "#" of the key, never the soul. Both
// encodings of the digest are accepted, whole or as their last 20
// characters.
func (f *Firewall) checkHash(ctx context.Context, m domain.Mutation) domain.Verdict {
	b64, err := f.suite.Hash(ctx, m.Value)
	if err != nil {
		return reject(errs.Wrap(errs.HashMismatch, "Data hash not same as hash!", err))
	}
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return reject(errs.Wrap(errs.HashMismatch, "Data hash not same as hash!", err))
	}
	hx := hex.EncodeToString(raw)
	names := []string{b64, tail(b64, 20), hx, tail(hx, 20)}

	candidate := lastSegment(m.Key)
	for _, n := range names {
		if candidate == n {
			return acceptPlain(m)
		}
	}
	return rejectf(errs.HashMismatch, "Data hash not same as hash!")
}

// checkAny handles souls with no owner and no hash.
func (f *Firewall) checkAny(m domain.Mutation) domain.Verdict {
	if f.secure {
		return rejectf(errs.SoulMissingPublicKey, fmt.Sprintf("Soul missing public key at '%s'.", m.Key))
	}
	return acceptPlain(m)
}

// checkFaith forwards a trusted internal put, unwrapping signed values
// without verifying them.
func (f *Firewall) checkFaith(m domain.Mutation) domain.Verdict {
	out := m
	out.Plain = m.Value
	env, ok := packRecord(m, recordOf(m.Value))
	if !ok {
		env, ok = wire.SignedEnvelope(m.Value)
	}
	if ok {
		if data, err := f.suite.Unwrap(env); err == nil {
			if plain, ok := unpack(data, m); ok {
				out.Plain = plain
			}
		}
	}
	return accept(out)
}

func acceptPlain(m domain.Mutation) domain.Verdict {
	m.Plain = m.Value
	return accept(m)
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case float64:
		return t != 0
	case int:
		return t != 0
	}
	return true
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

func lastSegment(key string) string {
	if i := strings.LastIndex(key, "#"); i >= 0 {
		return key[i+1:]
	}
	return key
}

