package keycache

import (
	"crypto/ecdsa"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultSize = 1024
	DefaultTTL  = time.Hour
)

// ImportFunc turns an encoded public key ("x.y") into a verification key.
type ImportFunc func(pub string) (*ecdsa.PublicKey, error)

// Options configures a Cache. Zero values select the defaults.
type Options struct {
	Size       int
	TTL        time.Duration
	Registerer prometheus.Registerer
}

// Cache memoizes imported verification keys by their encoded form.
//
// It is bounded (least recently used keys go first) and entries expire after
// TTL. Concurrent misses for the same key share a single import. A Cache is
// safe for concurrent use.
type Cache struct {
	importFn ImportFunc
	lru      *expirable.LRU[string, *ecdsa.PublicKey]
	group    singleflight.Group

	hits   prometheus.Counter
	misses prometheus.Counter
}

// New returns a cache that imports missing keys with importFn.
func New(importFn ImportFunc, opts Options) *Cache {
	if opts.Size <= 0 {
		opts.Size = DefaultSize
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	c := &Cache{
		importFn: importFn,
		lru:      expirable.NewLRU[string, *ecdsa.PublicKey](opts.Size, nil, opts.TTL),
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "graphseal",
			Subsystem: "keycache",
			Name:      "hits_total",
			Help:      "Verification key lookups served from the cache.",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "graphseal",
			Subsystem: "keycache",
			Name:      "misses_total",
			Help:      "Verification key lookups that required an import.",
		}),
	}
	if opts.Registerer != nil {
		opts.Registerer.MustRegister(c.hits, c.misses)
	}
	return c
}

// Get returns the verification key for pub, importing it on a miss.
// Failed imports are not cached.
func (c *Cache) Get(pub string) (*ecdsa.PublicKey, error) {
	if key, ok := c.lru.Get(pub); ok {
		c.hits.Inc()
		return key, nil
	}
	v, err, _ := c.group.Do(pub, func() (any, error) {
		if key, ok := c.lru.Get(pub); ok {
			return key, nil
		}
		c.misses.Inc()
		key, err := c.importFn(pub)
		if err != nil {
			return nil, err
		}
		if key == nil {
			return nil, errors.New("keycache: import returned nil key")
		}
		c.lru.Add(pub, key)
		return key, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*ecdsa.PublicKey), nil
}

// Len returns the number of cached keys.
func (c *Cache) Len() int { return c.lru.Len() }

// Purge drops every cached key.
func (c *Cache) Purge() { c.lru.Purge() }
