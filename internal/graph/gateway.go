package graph

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"graphseal/internal/domain"
	"graphseal/internal/errs"
)

// Gateway is the put pipeline: every mutation is checked by the firewall
// and only accepted ones reach the writer.
type Gateway struct {
	fw    domain.Firewall
	out   domain.GraphWriter
	clock domain.Clock
	log   *slog.Logger
}

// NewGateway wires a firewall in front of out. clock stamps mutations that
// arrive without a state.
func NewGateway(fw domain.Firewall, out domain.GraphWriter, clock domain.Clock, logger *slog.Logger) *Gateway {
	if clock == nil {
		clock = NewStateClock()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Gateway{fw: fw, out: out, clock: clock, log: logger}
}

// Put checks m and writes it when accepted. A rejection is returned as an
// error carrying the firewall's code and reason; a dropped mutation is not
// an error.
func (g *Gateway) Put(ctx context.Context, m domain.Mutation, session *domain.KeyPair) (domain.Verdict, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.State == 0 {
		m.State = g.clock.Now()
	}
	v := g.fw.Check(ctx, m, session)
	switch v.Action {
	case domain.Accept:
		if err := g.out.Put(ctx, v.Put); err != nil {
			return v, err
		}
		return v, nil
	case domain.Reject:
		if v.Err == nil {
			v.Err = errs.New(errs.UnverifiedData, "rejected")
		}
		return v, v.Err
	}
	g.log.Debug("mutation dropped", "id", m.ID, "soul", m.Soul, "key", m.Key)
	return v, nil
}

// PutNode writes every key of values onto soul with one shared state. It
// stops at the first rejection.
func (g *Gateway) PutNode(
	ctx context.Context,
	soul string,
	values map[string]any,
	session *domain.KeyPair,
) error {
	state := g.clock.Now()
	for k, val := range values {
		m := domain.Mutation{Soul: soul, Key: k, Value: val, State: state}
		if _, err := g.Put(ctx, m, session); err != nil {
			return err
		}
	}
	return nil
}
