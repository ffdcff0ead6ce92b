package identity_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"graphseal/internal/crypto"
	"graphseal/internal/services/identity"
	"graphseal/internal/store"
)

const strongPass = "Correct-Horse-42"

func newService(t *testing.T) (*identity.Service, *store.KeyFileStore) {
	t.Helper()
	params := store.KDFParams{N: 1 << 10, R: 8, P: 1}
	ks, err := store.NewKeyFileStore(t.TempDir(), store.Options{Params: &params})
	require.NoError(t, err)
	return identity.New(crypto.New(crypto.Options{}), ks), ks
}

func TestGenerateIdentity_SavesAndLoads(t *testing.T) {
	svc, ks := newService(t)

	pair, fp, err := svc.GenerateIdentity(context.Background(), strongPass, nil)
	require.NoError(t, err)
	require.True(t, pair.CanSign())
	require.True(t, ks.Exists())

	want, err := crypto.Fingerprint(pair.Pub)
	require.NoError(t, err)
	require.Equal(t, want, fp)

	loaded, err := svc.LoadIdentity(strongPass)
	require.NoError(t, err)
	require.Equal(t, pair, loaded)

	got, err := svc.FingerprintIdentity(strongPass)
	require.NoError(t, err)
	require.Equal(t, fp, got)
}

func TestGenerateIdentity_SeedIsDeterministic(t *testing.T) {
	a, _ := newService(t)
	b, _ := newService(t)
	seed := []byte("the same seed")

	pa, _, err := a.GenerateIdentity(context.Background(), strongPass, seed)
	require.NoError(t, err)
	pb, _, err := b.GenerateIdentity(context.Background(), strongPass, seed)
	require.NoError(t, err)
	require.Equal(t, pa, pb)
}

func TestGenerateIdentity_WeakPassphrase(t *testing.T) {
	svc, ks := newService(t)
	for _, p := range []string{"short", "alllowercase1!", "NoDigitsHere!!", "NoSymbols12345"} {
		_, _, err := svc.GenerateIdentity(context.Background(), p, nil)
		require.ErrorIs(t, err, identity.ErrWeakPassphrase, p)
	}
	require.False(t, ks.Exists())
}

func TestLoadIdentity_WrongPassphrase(t *testing.T) {
	svc, _ := newService(t)
	_, _, err := svc.GenerateIdentity(context.Background(), strongPass, nil)
	require.NoError(t, err)

	_, err = svc.LoadIdentity("Wrong-Horse-42")
	require.ErrorIs(t, err, store.ErrWrongPassphrase)
}
