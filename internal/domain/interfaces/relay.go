package interfaces

import (
	"context"

	domaintypes "graphseal/internal/domain/types"
)

// RelayClient talks to a graphseal relay.
type RelayClient interface {
	Put(ctx context.Context, m domaintypes.Mutation) error
	Node(ctx context.Context, soul string) (map[string]any, error)
}
