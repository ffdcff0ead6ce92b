package graph_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"graphseal/internal/domain"
	"graphseal/internal/errs"
	"graphseal/internal/graph"
)

func TestMemory_PutGet(t *testing.T) {
	ctx := context.Background()
	g := graph.NewMemory()

	require.NoError(t, g.Put(ctx, domain.Mutation{
		Soul: "s", Key: "k", Value: `{":":"v","~":"sig"}`, Plain: "v", State: 1, Writer: "w.x",
	}))

	v, ok, err := g.Get(ctx, "s", "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v", v)
	require.Equal(t, "w.x", g.Writer("s", "k"))

	node, ok := g.Node(ctx, "s")
	require.True(t, ok)
	require.Equal(t, map[string]any{"k": `{":":"v","~":"sig"}`}, node)
	require.Equal(t, map[string]any{"k": "v"}, g.Values("s"))

	_, ok, err = g.Get(ctx, "s", "missing")
	require.NoError(t, err)
	require.False(t, ok)
	_, ok = g.Node(ctx, "nope")
	require.False(t, ok)
	require.ElementsMatch(t, []string{"s"}, g.Souls())
}

func TestMemory_ConflictResolution(t *testing.T) {
	ctx := context.Background()
	g := graph.NewMemory()
	put := func(v string, state float64) {
		require.NoError(t, g.Put(ctx, domain.Mutation{Soul: "s", Key: "k", Value: v, State: state}))
	}
	get := func() any {
		v, _, err := g.Get(ctx, "s", "k")
		require.NoError(t, err)
		return v
	}

	put("b", 2)
	put("a", 1)
	require.Equal(t, "b", get())

	put("c", 3)
	require.Equal(t, "c", get())

	put("a", 3)
	require.Equal(t, "c", get())
	put("d", 3)
	require.Equal(t, "d", get())
}

func TestMemory_NodeIsACopy(t *testing.T) {
	ctx := context.Background()
	g := graph.NewMemory()
	require.NoError(t, g.Put(ctx, domain.Mutation{Soul: "s", Key: "k", Value: "v", State: 1}))

	node, _ := g.Node(ctx, "s")
	node["k"] = "changed"

	v, _, err := g.Get(ctx, "s", "k")
	require.NoError(t, err)
	require.Equal(t, "v", v)
}

func TestStateClock_StrictlyIncreasing(t *testing.T) {
	c := graph.NewStateClock()
	var mu sync.Mutex
	seen := make(map[float64]bool)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				n := c.Now()
				mu.Lock()
				seen[n] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Len(t, seen, 800)
}

type stubFirewall struct {
	verdict domain.Verdict
	got     []domain.Mutation
}

func (s *stubFirewall) Check(_ context.Context, m domain.Mutation, _ *domain.KeyPair) domain.Verdict {
	s.got = append(s.got, m)
	v := s.verdict
	if v.Action == domain.Accept {
		v.Put = m
		v.Put.Plain = "plain"
	}
	return v
}

func TestGateway_Accept(t *testing.T) {
	ctx := context.Background()
	g := graph.NewMemory()
	fw := &stubFirewall{verdict: domain.Verdict{Action: domain.Accept}}
	gw := graph.NewGateway(fw, g, domain.ClockFunc(func() float64 { return 42 }), nil)

	v, err := gw.Put(ctx, domain.Mutation{Soul: "s", Key: "k", Value: "v"}, nil)
	require.NoError(t, err)
	require.Equal(t, domain.Accept, v.Action)
	require.Len(t, fw.got, 1)
	require.NotEmpty(t, fw.got[0].ID)
	require.Equal(t, 42.0, fw.got[0].State)

	got, ok, err := g.Get(ctx, "s", "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "plain", got)
}

func TestGateway_RejectAndDrop(t *testing.T) {
	ctx := context.Background()
	g := graph.NewMemory()

	fw := &stubFirewall{verdict: domain.Verdict{
		Action: domain.Reject, Err: errs.New(errs.UnverifiedData, "Unverified data."),
	}}
	gw := graph.NewGateway(fw, g, nil, nil)
	_, err := gw.Put(ctx, domain.Mutation{Soul: "s", Key: "k", Value: "v"}, nil)
	require.True(t, errs.Is(err, errs.UnverifiedData))

	fw.verdict = domain.Verdict{Action: domain.Drop}
	v, err := gw.Put(ctx, domain.Mutation{Soul: "s", Key: "k", Value: "v"}, nil)
	require.NoError(t, err)
	require.Equal(t, domain.Drop, v.Action)

	_, ok, err := g.Get(ctx, "s", "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestGateway_PutNode(t *testing.T) {
	ctx := context.Background()
	g := graph.NewMemory()
	fw := &stubFirewall{verdict: domain.Verdict{Action: domain.Accept}}
	gw := graph.NewGateway(fw, g, nil, nil)

	require.NoError(t, gw.PutNode(ctx, "s", map[string]any{"a": 1.0, "b": 2.0}, nil))
	require.Len(t, fw.got, 2)
	require.Equal(t, fw.got[0].State, fw.got[1].State)
	require.Len(t, g.Values("s"), 2)
}

func TestMemory_MutationsAndNodeEncoding(t *testing.T) {
	ctx := context.Background()
	g := graph.NewMemory()
	require.NoError(t, g.Put(ctx, domain.Mutation{Soul: "s", Key: "b", Value: "2", State: 20}))
	require.NoError(t, g.Put(ctx, domain.Mutation{Soul: "s", Key: "a", Value: `{":":1}`, Plain: 1.0, State: 10}))

	ms := g.Mutations("s")
	require.Equal(t, []domain.Mutation{
		{Soul: "s", Key: "a", Value: `{":":1}`, State: 10},
		{Soul: "s", Key: "b", Value: "2", State: 20},
	}, ms)

	b, err := json.Marshal(graph.EncodeNode("s", ms))
	require.NoError(t, err)
	var node map[string]any
	require.NoError(t, json.Unmarshal(b, &node))

	got, err := graph.DecodeNode(node)
	require.NoError(t, err)
	require.Equal(t, ms, got)
	require.Empty(t, g.Mutations("none"))
}

func TestDecodeNode_Errors(t *testing.T) {
	_, err := graph.DecodeNode(map[string]any{"k": "v"})
	require.Error(t, err)

	_, err = graph.DecodeNode(map[string]any{
		"k": "v",
		"_": map[string]any{"#": "s", ">": map[string]any{}},
	})
	require.ErrorContains(t, err, `"k"`)
}
