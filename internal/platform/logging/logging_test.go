package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"graphseal/internal/crypto"
	"graphseal/internal/domain"
	"graphseal/internal/platform/logging"
)

func newPair(t *testing.T) domain.KeyPair {
	t.Helper()
	p, err := crypto.New(crypto.Options{}).Pair(context.Background(), crypto.PairOptions{})
	require.NoError(t, err)
	return p
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestNew_RedactsSecretsAndShortensKeys(t *testing.T) {
	var buf bytes.Buffer
	log, err := logging.New(logging.Options{Level: "debug", Format: "json", Writer: &buf})
	require.NoError(t, err)
	p := newPair(t)

	log.Info("login",
		"priv", p.Priv,
		"epriv", p.EPriv,
		"passphrase", "hunter2hunter2",
		"pub", p.Pub,
		"soul", "~x.y/profile",
	)
	rec := decode(t, &buf)

	require.Equal(t, "[REDACTED]", rec["priv"])
	require.Equal(t, "[REDACTED]", rec["epriv"])
	require.Equal(t, "[REDACTED]", rec["passphrase"])
	fp, err := crypto.Fingerprint(p.Pub)
	require.NoError(t, err)
	require.Equal(t, fp.String(), rec["pub"])
	require.Equal(t, "~x.y/profile", rec["soul"])
	require.NotContains(t, buf.String(), p.Priv)
}

func TestRedactingHandler_WithAttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(logging.WrapHandler(slog.NewJSONHandler(&buf, nil)))

	log.With("seed", "abc").Info("derive", slog.Group("pair", "priv", "k", "certificant", "not-a-key"))
	rec := decode(t, &buf)

	require.Equal(t, "[REDACTED]", rec["seed"])
	group, ok := rec["pair"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "[REDACTED]", group["priv"])
	require.Equal(t, logging.ShortKey("not-a-key"), group["certificant"])
	require.Contains(t, group["certificant"], "fp_")
}

func TestNew_RejectsUnknownSettings(t *testing.T) {
	_, err := logging.New(logging.Options{Level: "loud"})
	require.Error(t, err)
	_, err = logging.New(logging.Options{Format: "xml"})
	require.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"":      slog.LevelInfo,
		"DEBUG": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := logging.ParseLevel(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}
