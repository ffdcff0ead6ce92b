package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"graphseal/internal/domain"
	"graphseal/internal/errs"
	"graphseal/internal/graph"
	"graphseal/internal/wire"
)

type verdictOutput struct {
	Action string          `json:"action"`
	Code   string          `json:"code,omitempty"`
	Reason string          `json:"reason,omitempty"`
	Put    *domain.Mutation `json:"put,omitempty"`
}

func checkCmd() *cobra.Command {
	var session bool
	cmd := &cobra.Command{
		Use:   "check <mutation-json|->",
		Short: "Run one mutation through a local firewall and print the verdict",
		Long: `Run one mutation {"#": soul, ".": key, ":": value, ">": state, "cert": ...}
through a firewall with an empty graph and print the verdict. With --session
your pair acts as the logged-in user, so writes into your own graph are
signed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := input(cmd, args[0])
			if err != nil {
				return err
			}
			var m domain.Mutation
			if err := wire.Decode(raw, &m); err != nil {
				return fmt.Errorf("parse mutation: %w", err)
			}
			m.Plain, m.Writer = nil, ""
			if m.State == 0 {
				m.State = w.Clock.Now()
			}
			var sp *domain.KeyPair
			if session {
				pair, err := loadPair()
				if err != nil {
					return err
				}
				sp = &pair
			}

			v := w.Firewall.Check(cmd.Context(), m, sp)
			out := verdictOutput{Action: v.Action.String()}
			switch v.Action {
			case domain.Accept:
				out.Put = &v.Put
			case domain.Reject:
				out.Code, out.Reason = string(errs.CodeOf(v.Err)), errs.ReasonOf(v.Err)
			}
			return printJSON(cmd, out)
		},
	}
	cmd.Flags().BoolVar(&session, "session", false, "check as the logged-in owner of your pair")
	return cmd
}

func putCmd() *cobra.Command {
	var cert string
	cmd := &cobra.Command{
		Use:   "put <soul> <key> <value|->",
		Short: "Sign a value locally and write it to the relay",
		Long: `Write one value to the relay. When a pair is available (-p or --pair) the
value is signed by your local firewall first; --cert attaches a certificate
for writes into another user's graph.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := input(cmd, args[2])
			if err != nil {
				return err
			}
			m := domain.Mutation{Soul: args[0], Key: args[1], Value: value, State: w.Clock.Now()}
			if cert != "" {
				m.Cert = cert
			}

			var session *domain.KeyPair
			if haveSession() {
				pair, err := loadPair()
				if err != nil {
					return err
				}
				session = &pair
			}
			v := w.Firewall.Check(cmd.Context(), m, session)
			switch v.Action {
			case domain.Reject:
				return v.Err
			case domain.Drop:
				return fmt.Errorf("mutation dropped")
			}
			out := v.Put
			out.Plain, out.Writer = nil, ""
			if err := w.Relay.Put(cmd.Context(), out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok %s.%s\n", m.Soul, m.Key)
			return nil
		},
	}
	cmd.Flags().StringVar(&cert, "cert", "", "packed certificate for writing into another graph")
	return cmd
}

func getCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <soul> [key]",
		Short: "Read a node from the relay, verifying every value locally",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			soul := args[0]
			n, err := pull(cmd.Context(), soul)
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("node %s not found", soul)
			}
			values := w.Graph.Values(soul)
			if len(args) == 2 {
				v, ok := values[args[1]]
				if !ok {
					return fmt.Errorf("key %s not found on %s", args[1], soul)
				}
				return printValue(cmd, v)
			}
			return printJSON(cmd, values)
		},
	}
	return cmd
}

// pull copies soul from the relay into the local graph through the local
// firewall. Values that fail verification are logged and skipped. It
// returns the number of values accepted.
func pull(ctx context.Context, soul string) (int, error) {
	node, err := w.Relay.Node(ctx, soul)
	if err != nil {
		return 0, err
	}
	if len(node) == 0 {
		return 0, nil
	}
	ms, err := graph.DecodeNode(node)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, m := range ms {
		v, err := w.Gateway.Put(ctx, m, nil)
		if err != nil {
			w.Logger.Warn("relay value rejected", "soul", m.Soul, "key", m.Key, "err", err)
			continue
		}
		if v.Action == domain.Accept {
			n++
		}
	}
	return n, nil
}

// push sends every stored value of soul to the relay.
func push(ctx context.Context, soul string) error {
	for _, m := range w.Graph.Mutations(soul) {
		if err := w.Relay.Put(ctx, m); err != nil {
			return fmt.Errorf("push %s.%s: %w", m.Soul, m.Key, err)
		}
	}
	return nil
}
