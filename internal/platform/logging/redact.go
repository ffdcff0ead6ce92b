package logging

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"graphseal/internal/crypto"
)

const redacted = "[REDACTED]"

var (
	secretKeyParts = []string{"priv", "secret", "passphrase", "password", "proof", "seed", "mnemonic"}
	publicKeyNames = map[string]struct{}{
		"pub":         {},
		"epub":        {},
		"certificant": {},
		"authority":   {},
		"writer":      {},
	}
)

// RedactingHandler rewrites attributes before passing records on: secrets
// become "[REDACTED]" and public keys their fingerprint.
type RedactingHandler struct {
	next slog.Handler
}

// WrapHandler wraps next with a RedactingHandler.
func WrapHandler(next slog.Handler) slog.Handler {
	if next == nil {
		return nil
	}
	return &RedactingHandler{next: next}
}

func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *RedactingHandler) Handle(ctx context.Context, rec slog.Record) error {
	out := slog.NewRecord(rec.Time, rec.Level, rec.Message, rec.PC)
	rec.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(RedactAttr(a))
		return true
	})
	return h.next.Handle(ctx, out)
}

func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, 0, len(attrs))
	for _, a := range attrs {
		clean = append(clean, RedactAttr(a))
	}
	return &RedactingHandler{next: h.next.WithAttrs(clean)}
}

func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{next: h.next.WithGroup(name)}
}

// RedactAttr returns a, with secrets replaced and public keys shortened.
// Groups are rewritten recursively.
func RedactAttr(a slog.Attr) slog.Attr {
	key := strings.ToLower(strings.TrimSpace(a.Key))
	if isSecret(key) {
		return slog.String(a.Key, redacted)
	}
	if _, ok := publicKeyNames[key]; ok {
		return slog.String(a.Key, ShortKey(stringValue(a.Value)))
	}
	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		clean := make([]any, 0, len(group))
		for _, g := range group {
			clean = append(clean, RedactAttr(g))
		}
		return slog.Group(a.Key, clean...)
	}
	return a
}

// ShortKey renders a public key as its fingerprint. Values that are not
// valid keys are reduced to a hash prefix.
func ShortKey(pub string) string {
	pub = strings.TrimSpace(pub)
	if pub == "" {
		return ""
	}
	if fp, err := crypto.Fingerprint(pub); err == nil {
		return fp.String()
	}
	sum := sha256.Sum256([]byte(pub))
	return "fp_" + hex.EncodeToString(sum[:8])
}

func isSecret(key string) bool {
	for _, part := range secretKeyParts {
		if strings.Contains(key, part) {
			return true
		}
	}
	return false
}

func stringValue(v slog.Value) string {
	if v.Kind() == slog.KindString {
		return v.String()
	}
	return fmt.Sprint(v.Any())
}
