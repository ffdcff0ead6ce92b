package app

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"graphseal/internal/crypto"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graphseal.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_YAML(t *testing.T) {
	path := writeConfig(t, `
home: /tmp/gs
relay_url: http://relay:9000
log:
  level: debug
  format: json
crypto:
  work_iterations: 5000
  strict: true
keycache:
  size: 16
  ttl: 30m
keystore:
  kdf: argon2id
firewall:
  secure: true
relay:
  listen: ":9999"
  rate_per_second: 2.5
  burst: 5
`)
	t.Setenv("GRAPHSEAL_HOME", "")
	t.Setenv("GRAPHSEAL_LOG_LEVEL", "")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "/tmp/gs", cfg.Home)
	require.Equal(t, "http://relay:9000", cfg.RelayURL)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "json", cfg.Log.Format)
	require.Equal(t, 5000, cfg.Crypto.WorkIterations)
	require.True(t, cfg.Crypto.Strict)
	require.Equal(t, 16, cfg.KeyCache.Size)
	require.Equal(t, 30*time.Minute, cfg.KeyCache.TTL)
	require.Equal(t, "argon2id", cfg.Keystore.KDF)
	require.True(t, cfg.Firewall.Secure)
	require.False(t, cfg.Firewall.Faith)
	require.Equal(t, ":9999", cfg.Relay.Listen)
	require.Equal(t, 2.5, cfg.Relay.RatePerSecond)
	require.Equal(t, 5, cfg.Relay.Burst)
	require.Equal(t, defaultIdleTTL, cfg.Relay.IdleTTL)
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("GRAPHSEAL_HOME", "")
	t.Setenv("GRAPHSEAL_RELAY_URL", "")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.NotEmpty(t, cfg.Home)
	require.Equal(t, defaultRelayURL, cfg.RelayURL)
	require.Equal(t, crypto.DefaultWorkIterations, cfg.Crypto.WorkIterations)
	require.Equal(t, "scrypt", cfg.Keystore.KDF)
	require.Equal(t, defaultListen, cfg.Relay.Listen)
}

func TestLoadConfig_Rejects(t *testing.T) {
	for name, body := range map[string]string{
		"unknown field": "colour: blue\n",
		"bad level":     "log:\n  level: loud\n",
		"bad format":    "log:\n  format: xml\n",
		"bad kdf":       "keystore:\n  kdf: md5\n",
		"negative rate": "relay:\n  rate_per_second: -1\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, body))
			require.Error(t, err)
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestApplyEnvOverrides(t *testing.T) {
	env := map[string]string{
		"GRAPHSEAL_HOME":            "/env/home",
		"GRAPHSEAL_RELAY_URL":       "http://env",
		"GRAPHSEAL_LOG_FORMAT":      "json",
		"GRAPHSEAL_WORK_ITERATIONS": "42",
	}
	lookup := func(k string) (string, bool) { v, ok := env[k]; return v, ok }

	cfg := Config{Home: "/file/home"}
	require.NoError(t, ApplyEnvOverrides(&cfg, lookup))
	require.Equal(t, "/env/home", cfg.Home)
	require.Equal(t, "http://env", cfg.RelayURL)
	require.Equal(t, "json", cfg.Log.Format)
	require.Equal(t, 42, cfg.Crypto.WorkIterations)

	env["GRAPHSEAL_WORK_ITERATIONS"] = "many"
	require.Error(t, ApplyEnvOverrides(&cfg, lookup))
}

func TestNewWire(t *testing.T) {
	w, err := NewWire(Config{
		Home:      t.TempDir(),
		LogWriter: io.Discard,
		Crypto:    CryptoConfig{WorkIterations: 1000},
	})
	require.NoError(t, err)
	require.NotNil(t, w.Suite)
	require.NotNil(t, w.Firewall)
	require.NotNil(t, w.Gateway)
	require.NotNil(t, w.Limiter)
	require.Equal(t, defaultRelayURL, w.Relay.Base)

	ctx := t.Context()
	pair, err := w.Accounts.Create(ctx, "alice", "correct horse")
	require.NoError(t, err)
	got, err := w.Accounts.Authenticate(ctx, "alice", "correct horse")
	require.NoError(t, err)
	require.Equal(t, pair, got)

	families, err := w.Registry.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	require.True(t, names["graphseal_firewall_mutations_total"])
}

func TestNewWire_InvalidConfig(t *testing.T) {
	_, err := NewWire(Config{Home: t.TempDir(), Log: LogConfig{Level: "loud"}})
	require.Error(t, err)
}
