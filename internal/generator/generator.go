package generator

import (
	"context"

	"github.com/netlure/decoy/internal/extract"
	"github.com/netlure/decoy/internal/session"
	"github.com/netlure/decoy/internal/signals"
)

// Snapshot is the read-only view of a session a generator works from.
type Snapshot struct {
	Phase        session.Phase
	TurnCount    int
	Persona      string
	Language     string
	LastInbound  string
	MissingKinds []extract.Kind
	Signals      signals.Bundle
	Transcript   []session.Message
}

// Generator produces one candidate reply for the turn, or "" when it has
// nothing to offer. Every configured generator runs each turn; all non-empty
// outputs feed the ranker.
type Generator interface {
	Generate(ctx context.Context, snap Snapshot) (string, error)
}
