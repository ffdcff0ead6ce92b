package account

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"slices"

	"graphseal/internal/crypto"
	"graphseal/internal/domain"
	"graphseal/internal/wire"
)

const (
	minPassphraseLength = 8
	saltLength          = 64
	saltAlphabet        = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXZabcdefghijklmnopqrstuvwxyz"
)

var (
	ErrNoAlias        = errors.New("No user.")
	ErrShortPass      = errors.New("Password too short!")
	ErrAliasTaken     = errors.New("User already created!")
	ErrWrongPassword  = errors.New("Wrong user or password.")
	errNoAuthMaterial = errors.New("no auth record")
)

// Graph is the read side the service needs: point lookups and whole-node
// snapshots of plain values.
type Graph interface {
	domain.GraphReader
	Values(soul string) map[string]any
}

// Writer sends a node through the firewall on behalf of a session.
type Writer interface {
	PutNode(ctx context.Context, soul string, values map[string]any, session *domain.KeyPair) error
}

// Service implements domain.AccountService over a graph.
type Service struct {
	suite *crypto.Suite
	graph Graph
	out   Writer
	log   *slog.Logger
}

// New returns an account service.
func New(suite *crypto.Suite, g Graph, out Writer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{suite: suite, graph: g, out: out, log: logger}
}

// Create registers alias with a fresh pair and returns the pair.
func (s *Service) Create(ctx context.Context, alias, passphrase string) (domain.KeyPair, error) {
	if alias == "" {
		return domain.KeyPair{}, ErrNoAlias
	}
	if len(passphrase) < minPassphraseLength {
		return domain.KeyPair{}, ErrShortPass
	}
	if len(s.graph.Values("~@"+alias)) > 0 {
		return domain.KeyPair{}, ErrAliasTaken
	}

	salt, err := randomString(saltLength)
	if err != nil {
		return domain.KeyPair{}, err
	}
	proof, err := s.suite.Work(ctx, passphrase, salt, crypto.WorkOptions{})
	if err != nil {
		return domain.KeyPair{}, fmt.Errorf("work: %w", err)
	}
	pair, err := s.suite.Pair(ctx, crypto.PairOptions{})
	if err != nil {
		return domain.KeyPair{}, fmt.Errorf("pair: %w", err)
	}
	ek, err := s.suite.Encrypt(ctx, map[string]any{"priv": pair.Priv, "epriv": pair.EPriv}, proof, crypto.EncryptOptions{})
	if err != nil {
		return domain.KeyPair{}, fmt.Errorf("seal auth: %w", err)
	}
	auth, err := wire.Marshal(map[string]any{"ek": ek, "s": salt})
	if err != nil {
		return domain.KeyPair{}, err
	}

	soul := "~" + pair.Pub
	node := map[string]any{
		"pub":   pair.Pub,
		"alias": alias,
		"epub":  pair.EPub,
		"auth":  string(auth),
	}
	if err := s.out.PutNode(ctx, soul, node, &pair); err != nil {
		return domain.KeyPair{}, fmt.Errorf("put %s: %w", soul, err)
	}
	if err := s.out.PutNode(ctx, "~@"+alias, map[string]any{soul: wire.Link(soul)}, nil); err != nil {
		return domain.KeyPair{}, fmt.Errorf("link alias: %w", err)
	}
	s.log.Info("account created", "alias", alias, "pub", pair.Pub)
	return pair, nil
}

// Authenticate recovers the pair registered under alias. Every node linked
// from the alias index is tried in order until one opens with passphrase.
func (s *Service) Authenticate(ctx context.Context, alias, passphrase string) (domain.KeyPair, error) {
	if alias == "" {
		return domain.KeyPair{}, ErrNoAlias
	}
	index := s.graph.Values("~@" + alias)
	keys := make([]string, 0, len(index))
	for k := range index {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		if err := ctx.Err(); err != nil {
			return domain.KeyPair{}, err
		}
		soul, ok := wire.LinkOf(index[k])
		if !ok {
			continue
		}
		pair, err := s.open(ctx, soul, passphrase)
		if err != nil {
			s.log.Debug("account candidate rejected", "soul", soul, "err", err)
			continue
		}
		return pair, nil
	}
	return domain.KeyPair{}, ErrWrongPassword
}

func (s *Service) open(ctx context.Context, soul, passphrase string) (domain.KeyPair, error) {
	pub, _ := s.lookup(ctx, soul, "pub")
	epub, _ := s.lookup(ctx, soul, "epub")
	raw, ok := s.lookup(ctx, soul, "auth")
	if !ok {
		return domain.KeyPair{}, errNoAuthMaterial
	}
	auth, ok := wire.Parse(raw).(map[string]any)
	if !ok {
		return domain.KeyPair{}, errNoAuthMaterial
	}
	salt, _ := auth["s"].(string)
	if salt == "" || auth["ek"] == nil {
		return domain.KeyPair{}, errNoAuthMaterial
	}

	var last error
	// Older accounts stretched and sealed with raw UTF-8 proofs.
	for _, enc := range []crypto.Encoding{crypto.Base64, crypto.UTF8} {
		proof, err := s.suite.Work(ctx, passphrase, salt, crypto.WorkOptions{Encoding: enc})
		if err != nil {
			return domain.KeyPair{}, err
		}
		half, err := s.suite.Decrypt(ctx, auth["ek"], proof, crypto.DecryptOptions{Encoding: enc})
		if err != nil {
			last = err
			continue
		}
		m, _ := half.(map[string]any)
		pair := domain.KeyPair{Pub: str(pub), EPub: str(epub), Priv: str(m["priv"]), EPriv: str(m["epriv"])}
		if pair.Pub == "" || pair.EPub == "" {
			return domain.KeyPair{}, errNoAuthMaterial
		}
		if err := s.suite.CheckPair(pair); err != nil {
			return domain.KeyPair{}, err
		}
		return pair, nil
	}
	return domain.KeyPair{}, last
}

func (s *Service) lookup(ctx context.Context, soul, key string) (any, bool) {
	v, ok, err := s.graph.Get(ctx, soul, key)
	if err != nil || !ok {
		return nil, false
	}
	return v, true
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func randomString(n int) (string, error) {
	out := make([]byte, n)
	limit := big.NewInt(int64(len(saltAlphabet)))
	for i := range out {
		j, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		out[i] = saltAlphabet[j.Int64()]
	}
	return string(out), nil
}

// Compile-time assertion that Service implements domain.AccountService.
var _ domain.AccountService = (*Service)(nil)
