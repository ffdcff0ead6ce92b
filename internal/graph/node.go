package graph

import (
	"fmt"
	"slices"
	"strings"

	"graphseal/internal/domain"
)

// MetaKey holds a node's metadata in its JSON form: the soul under "#" and
// the state of every key under ">".
const MetaKey = "_"

// EncodeNode renders mutations of one soul as a node object.
func EncodeNode(soul string, ms []domain.Mutation) map[string]any {
	states := make(map[string]any, len(ms))
	out := make(map[string]any, len(ms)+1)
	for _, m := range ms {
		out[m.Key] = m.Value
		states[m.Key] = m.State
	}
	out[MetaKey] = map[string]any{"#": soul, ">": states}
	return out
}

// DecodeNode splits a node object back into mutations, sorted by key. Keys
// without a state are an error.
func DecodeNode(node map[string]any) ([]domain.Mutation, error) {
	meta, _ := node[MetaKey].(map[string]any)
	soul, _ := meta["#"].(string)
	if soul == "" {
		return nil, fmt.Errorf("node has no soul")
	}
	states, _ := meta[">"].(map[string]any)

	out := make([]domain.Mutation, 0, len(node))
	for k, v := range node {
		if k == MetaKey {
			continue
		}
		state, ok := states[k].(float64)
		if !ok {
			return nil, fmt.Errorf("node %s: no state for key %q", soul, k)
		}
		out = append(out, domain.Mutation{Soul: soul, Key: k, Value: v, State: state})
	}
	slices.SortFunc(out, func(a, b domain.Mutation) int { return strings.Compare(a.Key, b.Key) })
	return out, nil
}
