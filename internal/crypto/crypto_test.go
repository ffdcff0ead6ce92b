package crypto_test

import (
	"context"
	"crypto/ecdh"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"

	"graphseal/internal/crypto"
	"graphseal/internal/domain"
	"graphseal/internal/errs"
)

func newSuite(t *testing.T) *crypto.Suite {
	t.Helper()
	return crypto.New(crypto.Options{WorkIterations: 1000})
}

// makePair creates a random key pair.
func makePair(t *testing.T, s *crypto.Suite) domain.KeyPair {
	t.Helper()
	p, err := s.Pair(context.Background(), crypto.PairOptions{})
	require.NoError(t, err)
	return p
}

// stdlibPub computes the public key of an encoded scalar with crypto/ecdh.
func stdlibPub(t *testing.T, priv string) string {
	t.Helper()
	d, err := base64.RawURLEncoding.DecodeString(priv)
	require.NoError(t, err)
	k, err := ecdh.P256().NewPrivateKey(d)
	require.NoError(t, err)
	raw := k.PublicKey().Bytes()
	return base64.RawURLEncoding.EncodeToString(raw[1:33]) + "." + base64.RawURLEncoding.EncodeToString(raw[33:])
}

func TestPair_Random(t *testing.T) {
	s := newSuite(t)
	p := makePair(t, s)

	require.True(t, p.CanSign())
	require.True(t, p.CanExchange())
	require.Len(t, p.Priv, 43)
	require.Len(t, p.Pub, 87)
	require.NoError(t, s.CheckPair(p))
	require.NotEqual(t, p.Pub, makePair(t, s).Pub)
}

func TestPair_SeedIsDeterministic(t *testing.T) {
	s := newSuite(t)
	ctx := context.Background()

	a, err := s.Pair(ctx, crypto.PairOptions{Seed: []byte("correct horse")})
	require.NoError(t, err)
	b, err := s.Pair(ctx, crypto.PairOptions{Seed: []byte("correct horse")})
	require.NoError(t, err)
	c, err := s.Pair(ctx, crypto.PairOptions{Seed: []byte("battery staple")})
	require.NoError(t, err)

	require.Equal(t, a, b)
	require.NotEqual(t, a.Pub, c.Pub)
	require.NotEqual(t, a.Pub, a.EPub)
	require.Equal(t, stdlibPub(t, a.Priv), a.Pub)
	require.Equal(t, stdlibPub(t, a.EPriv), a.EPub)
}

func TestPair_AdditiveDerivationAgreesOnBothSides(t *testing.T) {
	s := newSuite(t)
	ctx := context.Background()
	base := makePair(t, s)
	seed := []byte("folder/photos")

	fromPriv, err := s.Pair(ctx, crypto.PairOptions{Seed: seed, Priv: base.Priv, EPriv: base.EPriv})
	require.NoError(t, err)
	fromPub, err := s.Pair(ctx, crypto.PairOptions{Seed: seed, Pub: base.Pub, EPub: base.EPub})
	require.NoError(t, err)

	require.Equal(t, fromPriv.Pub, fromPub.Pub)
	require.Equal(t, fromPriv.EPub, fromPub.EPub)
	require.Empty(t, fromPub.Priv)
	require.NotEqual(t, base.Pub, fromPriv.Pub)
	require.Equal(t, stdlibPub(t, fromPriv.Priv), fromPriv.Pub)

	other, err := s.Pair(ctx, crypto.PairOptions{Seed: []byte("other"), Pub: base.Pub})
	require.NoError(t, err)
	require.NotEqual(t, fromPub.Pub, other.Pub)
	require.Empty(t, other.EPub)
}

func TestPair_CompletesFromPrivate(t *testing.T) {
	s := newSuite(t)
	ctx := context.Background()
	base := makePair(t, s)

	p, err := s.Pair(ctx, crypto.PairOptions{Priv: base.Priv})
	require.NoError(t, err)
	require.Equal(t, base.Pub, p.Pub)
	require.True(t, p.CanExchange())
	require.NotEqual(t, base.EPriv, p.EPriv)

	p, err = s.Pair(ctx, crypto.PairOptions{Priv: base.Priv, EPriv: base.EPriv})
	require.NoError(t, err)
	require.Equal(t, base, p)

	p, err = s.Pair(ctx, crypto.PairOptions{EPriv: base.EPriv})
	require.NoError(t, err)
	require.Equal(t, base.EPub, p.EPub)
	require.True(t, p.CanSign())
}

func TestPair_RejectsMalformedKeys(t *testing.T) {
	s := newSuite(t)
	ctx := context.Background()

	_, err := s.Pair(ctx, crypto.PairOptions{Priv: "not base64!"})
	require.True(t, errs.Is(err, errs.InvalidKeyEncoding))

	// n itself is out of range.
	order := "_____wAAAAD__________7zm-q2nF56E87nKwvxjJVE"
	_, err = s.Pair(ctx, crypto.PairOptions{Priv: order})
	require.True(t, errs.Is(err, errs.InvalidKeyEncoding))

	offCurve := "AQ.AQ"
	_, err = s.Pair(ctx, crypto.PairOptions{Seed: []byte("x"), Pub: offCurve})
	require.True(t, errs.Is(err, errs.InvalidKeyEncoding))
	require.Equal(t, err, s.LastError())
}

func TestSignVerify_RoundTrip(t *testing.T) {
	s := newSuite(t)
	ctx := context.Background()
	p := makePair(t, s)

	for _, msg := range []any{
		"hello world",
		map[string]any{"b": 2.0, "a": "x"},
		struct {
			Name string `json:"name"`
			Age  int    `json:"age"`
		}{"alice", 30},
	} {
		env, err := s.Sign(ctx, msg, p, crypto.SignOptions{})
		require.NoError(t, err)
		got, err := s.Verify(ctx, env, p.Pub, crypto.VerifyOptions{})
		require.NoError(t, err)
		require.NotNil(t, got)
	}

	packed, err := s.SignPacked(ctx, "hi", p, crypto.SignOptions{})
	require.NoError(t, err)
	require.Equal(t, "SEA{", packed[:4])
	got, err := s.Verify(ctx, packed, p.Pub, crypto.VerifyOptions{})
	require.NoError(t, err)
	require.Equal(t, "hi", got)
}

func TestVerify_RejectsTamperingAndWrongKey(t *testing.T) {
	s := newSuite(t)
	ctx := context.Background()
	p, q := makePair(t, s), makePair(t, s)

	env, err := s.Sign(ctx, map[string]any{"amount": 1.0}, p, crypto.SignOptions{})
	require.NoError(t, err)

	_, err = s.Verify(ctx, env, q.Pub, crypto.VerifyOptions{})
	require.True(t, errs.Is(err, errs.SignatureMismatch))

	env.M = map[string]any{"amount": 1000.0}
	_, err = s.Verify(ctx, env, p.Pub, crypto.VerifyOptions{})
	require.True(t, errs.Is(err, errs.SignatureMismatch))

	_, err = s.Verify(ctx, "not signed", p.Pub, crypto.VerifyOptions{})
	require.True(t, errs.Is(err, errs.SignatureMismatch))
}

func TestSign_Idempotent(t *testing.T) {
	s := newSuite(t)
	ctx := context.Background()
	p := makePair(t, s)

	env, err := s.Sign(ctx, "once", p, crypto.SignOptions{})
	require.NoError(t, err)
	again, err := s.Sign(ctx, env, p, crypto.SignOptions{})
	require.NoError(t, err)
	require.Equal(t, env.S, again.S)
	require.Equal(t, env.M, again.M)

	// A different key wraps the envelope instead.
	q := makePair(t, s)
	wrapped, err := s.Sign(ctx, env, q, crypto.SignOptions{})
	require.NoError(t, err)
	require.NotEqual(t, env.S, wrapped.S)
}

func TestSign_NoKey(t *testing.T) {
	s := newSuite(t)
	_, err := s.Sign(context.Background(), "x", domain.KeyPair{Pub: "a.b"}, crypto.SignOptions{})
	require.True(t, errs.Is(err, errs.NoSigningKey))
}

func TestVerify_EncodingsAndLegacyFallback(t *testing.T) {
	s := newSuite(t)
	ctx := context.Background()
	p := makePair(t, s)

	hexEnv, err := s.Sign(ctx, "hex please", p, crypto.SignOptions{Encoding: crypto.Hex})
	require.NoError(t, err)
	_, err = s.Verify(ctx, hexEnv, p.Pub, crypto.VerifyOptions{Encoding: crypto.Hex})
	require.NoError(t, err)

	env, err := s.Sign(ctx, "legacy", p, crypto.SignOptions{})
	require.NoError(t, err)
	raw, err := base64.StdEncoding.DecodeString(env.S)
	require.NoError(t, err)
	legacy := domain.SignedEnvelope{M: env.M, S: string(raw)}

	got, err := s.Verify(ctx, legacy, p.Pub, crypto.VerifyOptions{})
	require.NoError(t, err)
	require.Equal(t, "legacy", got)
}

func TestUnwrap_SkipsVerification(t *testing.T) {
	s := newSuite(t)
	got, err := s.Unwrap(domain.SignedEnvelope{M: `{"a":1}`, S: "bogus"})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"a": 1.0}, got)

	_, err = s.Unwrap("plain")
	require.Error(t, err)
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	s := newSuite(t)
	ctx := context.Background()
	p := makePair(t, s)
	key := crypto.EncryptionKey(p)

	for _, alg := range []crypto.Algorithm{crypto.AESGCM, crypto.XChaCha20Poly1305} {
		env, err := s.Encrypt(ctx, map[string]any{"secret": "value"}, key, crypto.EncryptOptions{Algorithm: alg})
		require.NoError(t, err)
		got, err := s.Decrypt(ctx, env, key, crypto.DecryptOptions{Algorithm: alg})
		require.NoError(t, err)
		require.Equal(t, map[string]any{"secret": "value"}, got)
	}

	packed, err := s.EncryptPacked(ctx, "plain text", key, crypto.EncryptOptions{})
	require.NoError(t, err)
	got, err := s.Decrypt(ctx, packed, key, crypto.DecryptOptions{})
	require.NoError(t, err)
	require.Equal(t, "plain text", got)
}

func TestEncrypt_FreshSaltAndNonce(t *testing.T) {
	s := newSuite(t)
	ctx := context.Background()

	a, err := s.Encrypt(ctx, "same", "k", crypto.EncryptOptions{})
	require.NoError(t, err)
	b, err := s.Encrypt(ctx, "same", "k", crypto.EncryptOptions{})
	require.NoError(t, err)
	require.NotEqual(t, a.IV, b.IV)
	require.NotEqual(t, a.S, b.S)
	require.NotEqual(t, a.CT, b.CT)

	iv, err := base64.StdEncoding.DecodeString(a.IV)
	require.NoError(t, err)
	require.Len(t, iv, 15)
}

func TestDecrypt_Failures(t *testing.T) {
	s := newSuite(t)
	ctx := context.Background()

	env, err := s.Encrypt(ctx, "top secret", "right", crypto.EncryptOptions{})
	require.NoError(t, err)

	_, err = s.Decrypt(ctx, env, "wrong", crypto.DecryptOptions{})
	require.True(t, errs.Is(err, errs.DecryptionFailed))

	_, err = s.Encrypt(ctx, "x", "", crypto.EncryptOptions{})
	require.True(t, errs.Is(err, errs.NoEncryptionKey))
}

func TestDecrypt_LegacyUTF8Fields(t *testing.T) {
	s := newSuite(t)
	ctx := context.Background()

	env, err := s.Encrypt(ctx, "old format", "k", crypto.EncryptOptions{Encoding: crypto.UTF8})
	require.NoError(t, err)

	got, err := s.Decrypt(ctx, env, "k", crypto.DecryptOptions{})
	require.NoError(t, err)
	require.Equal(t, "old format", got)
}

func TestSecret_Symmetric(t *testing.T) {
	s := newSuite(t)
	ctx := context.Background()
	alice, bob := makePair(t, s), makePair(t, s)

	ab, err := s.Secret(ctx, bob.EPub, alice, crypto.SecretOptions{})
	require.NoError(t, err)
	ba, err := s.Secret(ctx, alice.EPub, bob, crypto.SecretOptions{})
	require.NoError(t, err)
	require.Equal(t, ab, ba)
	require.Len(t, ab, 43)

	env, err := s.Encrypt(ctx, "for bob", ab, crypto.EncryptOptions{})
	require.NoError(t, err)
	got, err := s.Decrypt(ctx, env, ba, crypto.DecryptOptions{})
	require.NoError(t, err)
	require.Equal(t, "for bob", got)

	ih, err := s.Secret(ctx, bob.EPub, alice, crypto.SecretOptions{Info: "graphseal/chat"})
	require.NoError(t, err)
	hi, err := s.Secret(ctx, alice.EPub, bob, crypto.SecretOptions{Info: "graphseal/chat"})
	require.NoError(t, err)
	require.Equal(t, ih, hi)
	require.NotEqual(t, ab, ih)

	_, err = s.Secret(ctx, bob.EPub, alice.Public(), crypto.SecretOptions{})
	require.True(t, errs.Is(err, errs.NoSecretMaterial))
	_, err = s.Secret(ctx, "", alice, crypto.SecretOptions{})
	require.True(t, errs.Is(err, errs.NoSecretMaterial))
}

func TestWork(t *testing.T) {
	s := newSuite(t)
	ctx := context.Background()

	a, err := s.Work(ctx, "password", "salt", crypto.WorkOptions{})
	require.NoError(t, err)
	b, err := s.Work(ctx, "password", "salt", crypto.WorkOptions{})
	require.NoError(t, err)
	c, err := s.Work(ctx, "password", "pepper", crypto.WorkOptions{})
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.NotEqual(t, a, c)

	raw, err := base64.StdEncoding.DecodeString(a)
	require.NoError(t, err)
	require.Len(t, raw, 64)

	// SHA-256("abc")
	h, err := s.Work(ctx, "abc", "", crypto.WorkOptions{Name: "SHA-256", Encoding: crypto.Hex})
	require.NoError(t, err)
	require.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", h)

	_, err = s.Work(ctx, "x", "", crypto.WorkOptions{Name: "scrypt"})
	require.True(t, errs.Is(err, errs.InvalidInput))
}

func TestWork_HonoursCancellation(t *testing.T) {
	s := newSuite(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Work(ctx, "x", "salt", crypto.WorkOptions{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestFingerprintAndKeyID(t *testing.T) {
	s := newSuite(t)
	p := makePair(t, s)

	fp, err := crypto.Fingerprint(p.Pub)
	require.NoError(t, err)
	require.Equal(t, "gs1", fp.String()[:3])
	again, err := crypto.Fingerprint(p.Pub)
	require.NoError(t, err)
	require.Equal(t, fp, again)

	id, err := crypto.KeyID(p.Pub)
	require.NoError(t, err)
	require.Len(t, id.String(), 16)

	_, err = crypto.KeyID("garbage")
	require.True(t, errs.Is(err, errs.InvalidKeyEncoding))
}

func TestMnemonicSeed_DrivesDeterministicPair(t *testing.T) {
	s := newSuite(t)
	ctx := context.Background()

	phrase, err := crypto.NewMnemonic()
	require.NoError(t, err)
	seed, err := crypto.MnemonicSeed(phrase, "")
	require.NoError(t, err)
	require.Len(t, seed, 64)

	a, err := s.Pair(ctx, crypto.PairOptions{Seed: seed})
	require.NoError(t, err)
	b, err := s.Pair(ctx, crypto.PairOptions{Seed: seed})
	require.NoError(t, err)
	require.Equal(t, a, b)

	_, err = crypto.MnemonicSeed("not a real phrase", "")
	require.Error(t, err)
}

func TestContentAddress(t *testing.T) {
	id, err := crypto.ContentAddress("hello")
	require.NoError(t, err)
	require.Equal(t, "bafkrei", id[:7])

	other, err := crypto.ContentAddress(map[string]any{"x": 1})
	require.NoError(t, err)
	require.NotEqual(t, id, other)
}
