package app

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"graphseal/internal/certify"
	"graphseal/internal/crypto"
	"graphseal/internal/firewall"
	"graphseal/internal/graph"
	"graphseal/internal/keycache"
	"graphseal/internal/platform/logging"
	"graphseal/internal/platform/ratelimit"
	"graphseal/internal/relay"
	"graphseal/internal/services/account"
	"graphseal/internal/services/identity"
	"graphseal/internal/store"
)

// Wire bundles the primitives, stores, services and clients for the CLI
// and the relay.
type Wire struct {
	Config   Config
	Logger   *slog.Logger
	Registry *prometheus.Registry

	Keys     *keycache.Cache
	Suite    *crypto.Suite
	Issuer   *certify.Issuer
	Verifier *certify.Verifier

	Clock    *graph.StateClock
	Graph    *graph.Memory
	Firewall *firewall.Firewall
	Gateway  *graph.Gateway
	Limiter  *ratelimit.KeyLimiter

	KeyStore *store.KeyFileStore
	Identity *identity.Service
	Accounts *account.Service
	Relay    *relay.HTTP
	HTTP     *http.Client
}

// NewWire constructs the dependency graph from cfg. cfg should come from
// LoadConfig; unset fields fall back to defaults.
func NewWire(cfg Config) (*Wire, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Writer: cfg.LogWriter,
	})
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	keys := keycache.New(crypto.ImportVerifyKey, keycache.Options{
		Size:       cfg.KeyCache.Size,
		TTL:        cfg.KeyCache.TTL,
		Registerer: reg,
	})
	suite := crypto.New(crypto.Options{
		Keys:           keys,
		Logger:         logger.With("component", "crypto"),
		Strict:         cfg.Crypto.Strict,
		WorkIterations: cfg.Crypto.WorkIterations,
	})

	// In-memory graph, with the firewall in front of every write.
	mem := graph.NewMemory()
	clock := graph.NewStateClock()
	verifier := certify.NewVerifier(suite, mem, logger.With("component", "certify"))
	fw := firewall.New(suite, verifier, clock, firewall.Options{
		Secure:     cfg.Firewall.Secure,
		Faith:      cfg.Firewall.Faith,
		Logger:     logger.With("component", "firewall"),
		Registerer: reg,
	})
	gw := graph.NewGateway(fw, mem, clock, logger.With("component", "gateway"))

	ks, err := store.NewKeyFileStore(cfg.Home, store.Options{KDF: store.KDF(cfg.Keystore.KDF)})
	if err != nil {
		return nil, err
	}

	httpClient := cfg.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Wire{
		Config:   cfg,
		Logger:   logger,
		Registry: reg,
		Keys:     keys,
		Suite:    suite,
		Issuer:   certify.NewIssuer(suite),
		Verifier: verifier,
		Clock:    clock,
		Graph:    mem,
		Firewall: fw,
		Gateway:  gw,
		Limiter:  ratelimit.New(cfg.Relay.RatePerSecond, cfg.Relay.Burst, cfg.Relay.IdleTTL),
		KeyStore: ks,
		Identity: identity.New(suite, ks),
		Accounts: account.New(suite, mem, gw, logger.With("component", "account")),
		Relay:    relay.NewHTTP(cfg.RelayURL, httpClient),
		HTTP:     httpClient,
	}, nil
}
