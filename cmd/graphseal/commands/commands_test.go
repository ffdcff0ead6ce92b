package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"graphseal/internal/app"
	"graphseal/internal/crypto"
	"graphseal/internal/domain"
	"graphseal/internal/errs"
	"graphseal/internal/graph"
	"graphseal/internal/relay"
)

func setup(t *testing.T) {
	t.Helper()
	t.Setenv("GRAPHSEAL_WORK_ITERATIONS", "1000")
	t.Setenv("GRAPHSEAL_LOG_LEVEL", "error")
	t.Setenv("GRAPHSEAL_HOME", t.TempDir())
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, stderr bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err, "graphseal %s", strings.Join(args, " "))
	return out
}

func newPairFile(t *testing.T, args ...string) (string, domain.KeyPair) {
	t.Helper()
	out := mustRun(t, append([]string{"pair"}, args...)...)
	var p domain.KeyPair
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	path := filepath.Join(t.TempDir(), "pair.json")
	require.NoError(t, os.WriteFile(path, []byte(out), 0o600))
	return path, p
}

// testRelay serves /put and /node/{soul} over a firewall-guarded graph.
func testRelay(t *testing.T) string {
	t.Helper()
	rw, err := app.NewWire(app.Config{Home: t.TempDir(), LogWriter: io.Discard, Crypto: app.CryptoConfig{WorkIterations: 1000}})
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /put", func(rsp http.ResponseWriter, r *http.Request) {
		var m domain.Mutation
		if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
			http.Error(rsp, err.Error(), http.StatusBadRequest)
			return
		}
		v, err := rw.Gateway.Put(r.Context(), m, nil)
		if v.Action == domain.Reject {
			rsp.WriteHeader(http.StatusForbidden)
			_ = json.NewEncoder(rsp).Encode(relay.Rejection{Err: errs.ReasonOf(err), Code: string(errs.CodeOf(err))})
			return
		}
		_ = json.NewEncoder(rsp).Encode(relay.Ack{OK: v.Action == domain.Accept})
	})
	mux.HandleFunc("GET /node/{soul}", func(rsp http.ResponseWriter, r *http.Request) {
		soul := r.PathValue("soul")
		ms := rw.Graph.Mutations(soul)
		if len(ms) == 0 {
			http.NotFound(rsp, r)
			return
		}
		_ = json.NewEncoder(rsp).Encode(graph.EncodeNode(soul, ms))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestPair_Seeded(t *testing.T) {
	setup(t)
	a := mustRun(t, "pair", "--seed", "alpha")
	b := mustRun(t, "pair", "--seed", "alpha")
	c := mustRun(t, "pair", "--seed", "beta")
	require.Equal(t, a, b)
	require.NotEqual(t, a, c)

	var p domain.KeyPair
	require.NoError(t, json.Unmarshal([]byte(a), &p))
	require.True(t, p.CanSign())
	require.NotEmpty(t, p.EPriv)
}

func TestPair_DerivedPublicMatchesPrivate(t *testing.T) {
	setup(t)
	base, _ := newPairFile(t)

	var priv, pub domain.KeyPair
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, "pair", "--seed", "app", "--derive-from", base)), &priv))
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, "pair", "--seed", "app", "--derive-from", base, "--public")), &pub))

	require.Equal(t, priv.Pub, pub.Pub)
	require.Equal(t, priv.EPub, pub.EPub)
	require.Empty(t, pub.Priv)

	_, err := run(t, "pair", "--derive-from", base)
	require.Error(t, err)
}

func TestInitAndFingerprint(t *testing.T) {
	setup(t)
	out := mustRun(t, "init", "-p", "Correct-Horse-42")
	require.Contains(t, out, "Identity created.")
	fpLine := strings.Split(strings.TrimSpace(out), "\n")[1]
	require.True(t, strings.HasPrefix(fpLine, "Fingerprint: gs1"), fpLine)

	out = mustRun(t, "fingerprint", "-p", "Correct-Horse-42")
	require.Contains(t, out, fpLine)
	require.Contains(t, out, "Key ID: ")

	_, err := run(t, "fingerprint", "-p", "wrong")
	require.Error(t, err)
	_, err = run(t, "init")
	require.Error(t, err)
}

func TestSignVerify(t *testing.T) {
	setup(t)
	path, p := newPairFile(t)

	signed := strings.TrimSpace(mustRun(t, "sign", "--pair", path, "hello"))
	require.True(t, strings.HasPrefix(signed, "SEA{"), signed)

	require.Equal(t, "hello\n", mustRun(t, "verify", "--pub", p.Pub, signed))

	_, other := newPairFile(t)
	_, err := run(t, "verify", "--pub", other.Pub, signed)
	require.True(t, errs.Is(err, errs.SignatureMismatch), "%v", err)
}

func TestEncryptDecrypt(t *testing.T) {
	setup(t)
	for _, alg := range []string{"AES-GCM", "XChaCha20-Poly1305"} {
		sealed := strings.TrimSpace(mustRun(t, "encrypt", "--key", "k3y", "--alg", alg, `{"a":1}`))
		out := mustRun(t, "decrypt", "--key", "k3y", "--alg", alg, sealed)
		require.JSONEq(t, `{"a":1}`, out)

		_, err := run(t, "decrypt", "--key", "other", "--alg", alg, sealed)
		require.Error(t, err)
	}
}

func TestSecretIsShared(t *testing.T) {
	setup(t)
	aPath, a := newPairFile(t)
	bPath, b := newPairFile(t)

	ab := mustRun(t, "secret", "--pair", aPath, "--to", b.EPub)
	ba := mustRun(t, "secret", "--pair", bPath, "--to", a.EPub)
	require.Equal(t, ab, ba)
}

// dashPair returns a random pair whose chosen public key starts with "-".
func dashPair(t *testing.T, pick func(domain.KeyPair) string) (string, domain.KeyPair) {
	t.Helper()
	suite := crypto.New(crypto.Options{})
	for range 100000 {
		p, err := suite.Pair(context.Background(), crypto.PairOptions{})
		require.NoError(t, err)
		if strings.HasPrefix(pick(p), "-") {
			b, err := json.Marshal(p)
			require.NoError(t, err)
			path := filepath.Join(t.TempDir(), "pair.json")
			require.NoError(t, os.WriteFile(path, b, 0o600))
			return path, p
		}
	}
	t.Fatalf("no dash-leading key generated")
	return "", domain.KeyPair{}
}

func TestKeysStartingWithDash(t *testing.T) {
	setup(t)
	signerPath, signer := dashPair(t, func(p domain.KeyPair) string { return p.Pub })
	peerPath, peer := dashPair(t, func(p domain.KeyPair) string { return p.EPub })

	signed := strings.TrimSpace(mustRun(t, "sign", "--pair", signerPath, "hello"))
	require.Equal(t, "hello\n", mustRun(t, "verify", "--pub", signer.Pub, signed))
	require.Contains(t, mustRun(t, "fingerprint", "--pub", signer.Pub), "Fingerprint: gs1")

	ab := mustRun(t, "secret", "--pair", signerPath, "--to", peer.EPub)
	ba := mustRun(t, "secret", "--pair", peerPath, "--to", signer.EPub)
	require.Equal(t, ab, ba)

	cert := mustRun(t, "certify", "--pair", peerPath, "--to", signer.Pub, "inbox")
	require.True(t, strings.HasPrefix(cert, "SEA{"), cert)
}

func TestHashWorkAddress(t *testing.T) {
	setup(t)
	require.Equal(t, "ungWv48Bz+pBQUDeXa4iI7ADYaOWF3qctBD/YfIAFa0=\n", mustRun(t, "hash", "abc"))

	a := mustRun(t, "work", "--salt", "s", "pass")
	require.Equal(t, a, mustRun(t, "work", "--salt", "s", "pass"))
	require.NotEqual(t, a, mustRun(t, "work", "--salt", "t", "pass"))

	require.True(t, strings.HasPrefix(mustRun(t, "address", "abc"), "bafkrei"))
}

func TestCheck(t *testing.T) {
	setup(t)
	path, p := newPairFile(t)
	m := `{"#":"~` + p.Pub + `",".":"name",":":"Alice",">":1}`

	var v verdictOutput
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, "check", m)), &v))
	require.Equal(t, "reject", v.Action)
	require.Equal(t, string(errs.UnverifiedData), v.Code)

	v = verdictOutput{}
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, "check", "--session", "--pair", path, m)), &v))
	require.Equal(t, "accept", v.Action)
	require.NotNil(t, v.Put)
	require.Equal(t, p.Pub, v.Put.Writer)
}

func TestPutGet_OwnerAndDelegated(t *testing.T) {
	setup(t)
	url := testRelay(t)
	alicePath, alice := newPairFile(t)
	bobPath, bob := newPairFile(t)

	mustRun(t, "put", "--relay", url, "--pair", alicePath, "~"+alice.Pub, "name", "Alice")
	require.Equal(t, "Alice\n", mustRun(t, "get", "--relay", url, "~"+alice.Pub, "name"))

	_, err := run(t, "put", "--relay", url, "~"+alice.Pub, "name", "Mallory")
	require.True(t, errs.Is(err, errs.UnverifiedData), "%v", err)

	cert := strings.TrimSpace(mustRun(t, "certify", "--pair", alicePath, "--to", bob.Pub, `{"#":{"*":"inbox"}}`))
	inbox := "~" + alice.Pub + "/inbox"
	mustRun(t, "put", "--relay", url, "--pair", bobPath, "--cert", cert, inbox, "msg", "hi alice")
	require.Equal(t, "hi alice\n", mustRun(t, "get", "--relay", url, inbox, "msg"))

	_, err = run(t, "put", "--relay", url, "--pair", bobPath, "--cert", cert, "~"+alice.Pub+"/profile", "msg", "x")
	require.Error(t, err)

	_, err = run(t, "get", "--relay", url, "~nobody")
	require.Error(t, err)
}

func TestAccountCreateAndAuth(t *testing.T) {
	setup(t)
	url := testRelay(t)

	created := mustRun(t, "account", "create", "--relay", url, "-p", "correct horse", "alice")
	require.Contains(t, created, "Pub: ")

	authed := mustRun(t, "account", "auth", "--relay", url, "-p", "correct horse", "--save", "alice")
	require.Equal(t, created, authed)

	_, err := run(t, "account", "auth", "--relay", url, "-p", "wrong horse", "alice")
	require.Error(t, err)

	_, err = run(t, "account", "create", "--relay", url, "-p", "another horse", "alice")
	require.Error(t, err)

	fp := mustRun(t, "fingerprint", "-p", "correct horse")
	require.Contains(t, created, strings.Split(fp, "\n")[0])
}
