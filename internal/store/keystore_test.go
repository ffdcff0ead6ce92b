// internal/store/keystore_test.go
package store_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"graphseal/internal/domain"
	"graphseal/internal/store"
)

var testPair = domain.KeyPair{
	Pub:   "pubX.pubY",
	Priv:  "priv",
	EPub:  "epubX.epubY",
	EPriv: "epriv",
}

func fastStore(t *testing.T, kdf store.KDF) *store.KeyFileStore {
	t.Helper()
	params := store.KDFParams{N: 1 << 10, R: 8, P: 1}
	if kdf == store.Argon2id {
		params = store.KDFParams{Time: 1, Memory: 1024, Threads: 1}
	}
	s, err := store.NewKeyFileStore(t.TempDir(), store.Options{KDF: kdf, Params: &params})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func readEnvelope(t *testing.T, s *store.KeyFileStore) map[string]any {
	t.Helper()
	b, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("read key file: %v", err)
	}
	var env map[string]any
	if err := json.Unmarshal(b, &env); err != nil {
		t.Fatalf("decode key file: %v", err)
	}
	return env
}

func TestKeyPair_SaveLoad_OK(t *testing.T) {
	for _, kdf := range []store.KDF{store.Scrypt, store.Argon2id} {
		t.Run(string(kdf), func(t *testing.T) {
			s := fastStore(t, kdf)
			if s.Exists() {
				t.Fatalf("fresh store reports a key pair")
			}

			if err := s.SaveKeyPair("pass", testPair); err != nil {
				t.Fatalf("save key pair: %v", err)
			}
			if !s.Exists() {
				t.Fatalf("saved key pair not found")
			}

			got, err := s.LoadKeyPair("pass")
			if err != nil {
				t.Fatalf("load key pair: %v", err)
			}
			if got != testPair {
				t.Fatalf("mismatch after load: %+v", got)
			}

			info, err := os.Stat(s.Path())
			if err != nil {
				t.Fatalf("stat: %v", err)
			}
			if perm := info.Mode().Perm(); perm != 0o600 {
				t.Fatalf("key file mode %o", perm)
			}
		})
	}
}

func TestKeyPair_EnvelopeHidesSecrets(t *testing.T) {
	s := fastStore(t, store.Scrypt)
	if err := s.SaveKeyPair("pass", testPair); err != nil {
		t.Fatalf("save key pair: %v", err)
	}

	b, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("read key file: %v", err)
	}
	if strings.Contains(string(b), "epriv") {
		t.Fatalf("key file leaks plaintext")
	}

	env := readEnvelope(t, s)
	if env["kdf"] != "scrypt" {
		t.Fatalf("kdf = %v", env["kdf"])
	}
	for _, k := range []string{"v", "salt", "params", "nonce", "cipher"} {
		if _, ok := env[k]; !ok {
			t.Fatalf("envelope missing %q", k)
		}
	}
}

func TestKeyPair_WrongPassphrase_Fails(t *testing.T) {
	s := fastStore(t, store.Argon2id)
	if err := s.SaveKeyPair("correct", testPair); err != nil {
		t.Fatalf("save key pair: %v", err)
	}

	if _, err := s.LoadKeyPair("wrong"); !errors.Is(err, store.ErrWrongPassphrase) {
		t.Fatalf("expected ErrWrongPassphrase, got %v", err)
	}
}

func TestKeyPair_TamperedHeader_Fails(t *testing.T) {
	s := fastStore(t, store.Scrypt)
	if err := s.SaveKeyPair("pass", testPair); err != nil {
		t.Fatalf("save key pair: %v", err)
	}

	env := readEnvelope(t, s)
	env["kdf"] = "argon2id"
	env["params"] = map[string]any{"time": 1, "memory_kib": 1024, "threads": 1}
	b, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := os.WriteFile(s.Path(), b, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := s.LoadKeyPair("pass"); !errors.Is(err, store.ErrWrongPassphrase) {
		t.Fatalf("expected ErrWrongPassphrase, got %v", err)
	}
}

func TestKeyPair_Missing(t *testing.T) {
	s := fastStore(t, store.Scrypt)
	if _, err := s.LoadKeyPair("pass"); !errors.Is(err, store.ErrNoKeyPair) {
		t.Fatalf("expected ErrNoKeyPair, got %v", err)
	}
}

func TestKeyPair_Rejects(t *testing.T) {
	s := fastStore(t, store.Scrypt)
	if err := s.SaveKeyPair("", testPair); err == nil {
		t.Fatalf("empty passphrase accepted")
	}
	if err := s.SaveKeyPair("pass", testPair.Public()); err == nil {
		t.Fatalf("public-only pair accepted")
	}
	if _, err := store.NewKeyFileStore(t.TempDir(), store.Options{KDF: "pbkdf2"}); err == nil {
		t.Fatalf("unknown kdf accepted")
	}
}

func TestKeyPair_Overwrite_LeavesOneFile(t *testing.T) {
	s := fastStore(t, store.Scrypt)
	if err := s.SaveKeyPair("pass", testPair); err != nil {
		t.Fatalf("save key pair: %v", err)
	}

	next := testPair
	next.Priv = "other"
	if err := s.SaveKeyPair("pass", next); err != nil {
		t.Fatalf("overwrite key pair: %v", err)
	}

	got, err := s.LoadKeyPair("pass")
	if err != nil {
		t.Fatalf("load key pair: %v", err)
	}
	if got.Priv != "other" {
		t.Fatalf("overwrite lost: %+v", got)
	}

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != store.KeyFile {
		t.Fatalf("unexpected files left behind: %v", entries)
	}
}
