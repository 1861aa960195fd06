package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/netlure/decoy/internal/extract"
	"github.com/netlure/decoy/internal/generator"
	"github.com/netlure/decoy/internal/ranker"
	"github.com/netlure/decoy/internal/safety"
	"github.com/netlure/decoy/internal/session"
	"github.com/netlure/decoy/internal/signals"
)

// Config bounds the engine's two blocking points. Both calls fall back to a
// deterministic templated reply on timeout so a slow dependency cannot stall
// a session.
type Config struct {
	SafetyTimeout    time.Duration
	GeneratorTimeout time.Duration
	PersonaHints     []string
}

// Engine is the per-session engagement state machine. It owns no locks and
// no shared state: every AdvanceTurn works on a cloned session value and
// returns the updated session. At-most-one-turn-in-flight per session id is
// a caller-enforced invariant (the store's version check).
type Engine struct {
	extractor  *extract.Engine
	screen     safety.Screen
	generators []generator.Generator
	providers  []signals.Provider
	cfg        Config
	logger     *slog.Logger
}

func New(ext *extract.Engine, screen safety.Screen, gens []generator.Generator, provs []signals.Provider, cfg Config, logger *slog.Logger) *Engine {
	if cfg.SafetyTimeout <= 0 {
		cfg.SafetyTimeout = 5 * time.Second
	}
	if cfg.GeneratorTimeout <= 0 {
		cfg.GeneratorTimeout = 10 * time.Second
	}
	return &Engine{
		extractor:  ext,
		screen:     screen,
		generators: gens,
		providers:  provs,
		cfg:        cfg,
		logger:     logger,
	}
}

// AdvanceTurn processes one accepted counterpart message and returns the
// updated session. Advancing an already-terminated session is a no-op
// returning the session unchanged. A nil session is a caller programming
// error and panics.
func (e *Engine) AdvanceTurn(ctx context.Context, sess *session.Session, inbound string, now time.Time) (*session.Session, error) {
	if sess == nil {
		panic("engine: AdvanceTurn on nil session")
	}
	if sess.Terminated {
		return sess, nil
	}

	s := sess.Clone()

	// Hard cap holds even across crash recovery of persisted sessions: a
	// session restored at the cap terminates before accepting more input.
	if s.TurnCount >= session.MaxTurns {
		s.Terminate(session.ReasonMaxTurns, now)
		return s, nil
	}

	s.Append(session.SenderCounterpart, inbound, now)

	// Safety screen is fail-closed: an unreachable dependency is treated as
	// an unsafe verdict and routed to the deflect path.
	verdict := e.checkSafety(ctx, inbound, sess.Transcript)

	if verdict.Safe {
		s.Phase = session.PhaseForTurn(s.TurnCount)
	}

	// Re-extract over the entire transcript. An extraction fault must not
	// fail the turn: prior identifiers and confidence are retained.
	if ids, ok := e.safeExtract(s.TranscriptText()); ok {
		s.Identifiers = s.Identifiers.Union(ids)
		if conf := extract.Confidence(s.Identifiers); conf > s.Confidence {
			s.Confidence = conf
		}
	}

	if !verdict.Safe {
		deflection := verdict.DeflectionText
		if deflection == "" {
			deflection = safety.DefaultDeflection
		}
		s.Append(session.SenderAgent, deflection, now)
		s.Terminate(session.ReasonSafetyAbort, now)
		e.logger.Warn("session closed by safety screen", "session_id", s.ID, "turn", s.TurnCount)
		return s, nil
	}

	bundle := e.collectSignals(inbound, s)
	reply := e.composeReply(ctx, s, bundle)
	s.Append(session.SenderAgent, reply, now)

	switch {
	case s.Confidence >= session.ConfidenceThreshold:
		s.Terminate(session.ReasonConfidenceMet, now)
	case s.TurnCount >= session.MaxTurns:
		s.Terminate(session.ReasonMaxTurns, now)
	}

	e.logger.Info("turn advanced",
		"session_id", s.ID,
		"turn", s.TurnCount,
		"phase", string(s.Phase),
		"identifiers", s.Identifiers.Len(),
		"confidence", s.Confidence,
		"terminated", s.Terminated,
	)
	return s, nil
}

func (e *Engine) checkSafety(ctx context.Context, inbound string, prior []session.Message) safety.Result {
	if e.screen == nil {
		return safety.Result{Safe: true}
	}
	checkCtx, cancel := context.WithTimeout(ctx, e.cfg.SafetyTimeout)
	defer cancel()

	verdict, err := e.screen.Check(checkCtx, inbound, prior)
	if err != nil {
		e.logger.Error("safety screen unavailable, failing closed", "error", err)
		return safety.Result{Safe: false, DeflectionText: safety.DefaultDeflection}
	}
	return verdict
}

// safeExtract shields the turn from extraction faults.
func (e *Engine) safeExtract(transcript string) (ids extract.Set, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("extraction failed, retaining prior state", "panic", fmt.Sprint(r))
			ok = false
		}
	}()
	ids, _ = e.extractor.Extract(transcript)
	return ids, true
}

func (e *Engine) collectSignals(inbound string, s *session.Session) signals.Bundle {
	bundles := make([]signals.Bundle, 0, len(e.providers))
	for _, p := range e.providers {
		bundles = append(bundles, p.Score(inbound, s.TurnCount, s.Transcript))
	}
	return signals.Combine(bundles)
}

// composeReply gathers candidates from every configured generator and ranks
// them. Generator failures and timeouts are recoverable: the counterpart
// always gets a reply, worst case the per-phase fallback template.
func (e *Engine) composeReply(ctx context.Context, s *session.Session, bundle signals.Bundle) string {
	snap := generator.Snapshot{
		Phase:        s.Phase,
		TurnCount:    s.TurnCount,
		Persona:      s.Persona,
		Language:     s.Language,
		LastInbound:  s.LastCounterpartText(),
		MissingKinds: e.missingKinds(s.Identifiers),
		Signals:      bundle,
		Transcript:   s.Transcript,
	}

	var candidates []string
	degraded := false
	for _, g := range e.generators {
		genCtx, cancel := context.WithTimeout(ctx, e.cfg.GeneratorTimeout)
		text, err := g.Generate(genCtx, snap)
		cancel()
		if err != nil {
			degraded = true
			if errors.Is(err, context.DeadlineExceeded) {
				e.logger.Warn("generator timed out", "session_id", s.ID)
			} else {
				e.logger.Warn("generator failed", "session_id", s.ID, "error", err)
			}
			continue
		}
		if text != "" {
			candidates = append(candidates, text)
		}
	}

	if len(candidates) == 0 {
		degraded = degraded || len(e.generators) > 0
		candidates = append(candidates, generator.Fallback(s.Phase))
	}
	if degraded {
		s.UnreliableTurns++
	}

	best := ranker.Rank(candidates, ranker.Context{
		LastInbound:  snap.LastInbound,
		MissingKinds: snap.MissingKinds,
		PersonaHints: e.cfg.PersonaHints,
		Signals:      bundle,
	})
	return best.Text
}

func (e *Engine) missingKinds(have extract.Set) []extract.Kind {
	var missing []extract.Kind
	for _, kind := range extract.Kinds {
		if !have.HasKind(kind) {
			missing = append(missing, kind)
		}
	}
	return missing
}
