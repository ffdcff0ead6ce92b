package graph

import (
	"bytes"
	"context"
	"slices"
	"strings"
	"sync"

	"graphseal/internal/domain"
	"graphseal/internal/wire"
)

type record struct {
	wire   any
	plain  any
	state  float64
	writer string
}

// Memory is a concurrency-safe in-memory graph. It implements
// domain.GraphReader and domain.GraphWriter.
type Memory struct {
	mu    sync.RWMutex
	nodes map[string]map[string]record
}

// NewMemory returns an empty graph.
func NewMemory() *Memory {
	return &Memory{nodes: make(map[string]map[string]record)}
}

// Get returns the plain value stored at soul/key.
func (g *Memory) Get(ctx context.Context, soul, key string) (any, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	r, ok := g.nodes[soul][key]
	if !ok {
		return nil, false, nil
	}
	return r.plain, true, nil
}

// Put stores an accepted mutation. A write older than the stored state is
// ignored; equal states keep the lexically greater wire value so every
// replica converges on the same one.
func (g *Memory) Put(ctx context.Context, m domain.Mutation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	plain := m.Plain
	if plain == nil {
		plain = m.Value
	}
	next := record{wire: m.Value, plain: plain, state: m.State, writer: m.Writer}

	g.mu.Lock()
	defer g.mu.Unlock()
	node, ok := g.nodes[m.Soul]
	if !ok {
		node = make(map[string]record)
		g.nodes[m.Soul] = node
	}
	if cur, ok := node[m.Key]; ok && !wins(next, cur) {
		return nil
	}
	node[m.Key] = next
	return nil
}

func wins(next, cur record) bool {
	if next.state != cur.state {
		return next.state > cur.state
	}
	a, errA := wire.Marshal(next.wire)
	b, errB := wire.Marshal(cur.wire)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Compare(a, b) > 0
}

// Node returns a copy of the wire values of soul.
func (g *Memory) Node(ctx context.Context, soul string) (map[string]any, bool) {
	if ctx.Err() != nil {
		return nil, false
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	node, ok := g.nodes[soul]
	if !ok {
		return nil, false
	}
	out := make(map[string]any, len(node))
	for k, r := range node {
		out[k] = r.wire
	}
	return out, true
}

// Values returns a copy of the plain values of soul.
func (g *Memory) Values(soul string) map[string]any {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make(map[string]any, len(g.nodes[soul]))
	for k, r := range g.nodes[soul] {
		out[k] = r.plain
	}
	return out
}

// Writer returns the key that signed the value at soul/key, if any.
func (g *Memory) Writer(soul, key string) string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.nodes[soul][key].writer
}

// Mutations returns the stored wire form of soul as mutations, sorted by
// key.
func (g *Memory) Mutations(soul string) []domain.Mutation {
	g.mu.RLock()
	defer g.mu.RUnlock()
	node := g.nodes[soul]
	out := make([]domain.Mutation, 0, len(node))
	for k, r := range node {
		out = append(out, domain.Mutation{Soul: soul, Key: k, Value: r.wire, State: r.state})
	}
	slices.SortFunc(out, func(a, b domain.Mutation) int { return strings.Compare(a.Key, b.Key) })
	return out
}

// Souls returns the souls currently stored.
func (g *Memory) Souls() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, 0, len(g.nodes))
	for s := range g.nodes {
		out = append(out, s)
	}
	return out
}

var (
	_ domain.GraphReader = (*Memory)(nil)
	_ domain.GraphWriter = (*Memory)(nil)
)
