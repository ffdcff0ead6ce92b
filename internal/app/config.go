package app

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"graphseal/internal/crypto"
	"graphseal/internal/keycache"
	"graphseal/internal/platform/logging"
	"graphseal/internal/store"
)

// Config holds runtime wiring options for building the app.
type Config struct {
	Home     string `yaml:"home"`      // keystore directory, e.g. $HOME/.graphseal
	RelayURL string `yaml:"relay_url"` // relay base URL, e.g. http://127.0.0.1:8080

	Log      LogConfig      `yaml:"log"`
	Crypto   CryptoConfig   `yaml:"crypto"`
	KeyCache KeyCacheConfig `yaml:"keycache"`
	Keystore KeystoreConfig `yaml:"keystore"`
	Firewall FirewallConfig `yaml:"firewall"`
	Relay    RelayConfig    `yaml:"relay"`

	HTTP      *http.Client `yaml:"-"` // optional; defaults to http.DefaultClient
	LogWriter io.Writer    `yaml:"-"` // optional; defaults to stderr
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type CryptoConfig struct {
	WorkIterations int  `yaml:"work_iterations"`
	Strict         bool `yaml:"strict"`
}

type KeyCacheConfig struct {
	Size int           `yaml:"size"`
	TTL  time.Duration `yaml:"ttl"`
}

type KeystoreConfig struct {
	KDF string `yaml:"kdf"`
}

type FirewallConfig struct {
	Secure bool `yaml:"secure"`
	Faith  bool `yaml:"faith"`
}

type RelayConfig struct {
	Listen        string        `yaml:"listen"`
	RatePerSecond float64       `yaml:"rate_per_second"`
	Burst         int           `yaml:"burst"`
	IdleTTL       time.Duration `yaml:"idle_ttl"`
}

const (
	defaultRelayURL = "http://127.0.0.1:8080"
	defaultListen   = ":8080"
	defaultRate     = 20
	defaultBurst    = 40
	defaultIdleTTL  = 10 * time.Minute
)

// LoadConfig reads path (when non-empty), applies GRAPHSEAL_* environment
// overrides and fills defaults.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		dec := yaml.NewDecoder(strings.NewReader(string(data)))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := ApplyEnvOverrides(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnvOverrides copies GRAPHSEAL_* variables found by lookup into cfg.
func ApplyEnvOverrides(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup("GRAPHSEAL_HOME"); ok && v != "" {
		cfg.Home = v
	}
	if v, ok := lookup("GRAPHSEAL_RELAY_URL"); ok && v != "" {
		cfg.RelayURL = v
	}
	if v, ok := lookup("GRAPHSEAL_LOG_LEVEL"); ok && v != "" {
		cfg.Log.Level = v
	}
	if v, ok := lookup("GRAPHSEAL_LOG_FORMAT"); ok && v != "" {
		cfg.Log.Format = v
	}
	if v, ok := lookup("GRAPHSEAL_RELAY_LISTEN"); ok && v != "" {
		cfg.Relay.Listen = v
	}
	if v, ok := lookup("GRAPHSEAL_WORK_ITERATIONS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("GRAPHSEAL_WORK_ITERATIONS: %w", err)
		}
		cfg.Crypto.WorkIterations = n
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.Home == "" {
		if h, err := os.UserHomeDir(); err == nil {
			c.Home = filepath.Join(h, ".graphseal")
		} else {
			c.Home = ".graphseal"
		}
	}
	if c.RelayURL == "" {
		c.RelayURL = defaultRelayURL
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Crypto.WorkIterations <= 0 {
		c.Crypto.WorkIterations = crypto.DefaultWorkIterations
	}
	if c.KeyCache.Size <= 0 {
		c.KeyCache.Size = keycache.DefaultSize
	}
	if c.KeyCache.TTL <= 0 {
		c.KeyCache.TTL = keycache.DefaultTTL
	}
	if c.Keystore.KDF == "" {
		c.Keystore.KDF = string(store.Scrypt)
	}
	if c.Relay.Listen == "" {
		c.Relay.Listen = defaultListen
	}
	if c.Relay.RatePerSecond == 0 {
		c.Relay.RatePerSecond = defaultRate
	}
	if c.Relay.Burst == 0 {
		c.Relay.Burst = defaultBurst
	}
	if c.Relay.IdleTTL <= 0 {
		c.Relay.IdleTTL = defaultIdleTTL
	}
	return c
}

func (c Config) validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	switch store.KDF(c.Keystore.KDF) {
	case store.Scrypt, store.Argon2id:
	default:
		return fmt.Errorf("unknown keystore kdf %q", c.Keystore.KDF)
	}
	if c.Relay.RatePerSecond < 0 || c.Relay.Burst < 0 {
		return errors.New("relay rate and burst must not be negative")
	}
	return nil
}
