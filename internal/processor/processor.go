package processor

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/netlure/decoy/internal/bus"
	"github.com/netlure/decoy/internal/engine"
	"github.com/netlure/decoy/internal/notify"
	"github.com/netlure/decoy/internal/session"
	"github.com/netlure/decoy/internal/store"
)

// InboundMessage is the channel-adapter event payload for a counterpart
// message.
type InboundMessage struct {
	SessionID string `json:"session_id"`
	Persona   string `json:"persona,omitempty"`
	Language  string `json:"language,omitempty"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp,omitempty"`
}

// AbortEvent externally terminates a session.
type AbortEvent struct {
	SessionID string `json:"session_id"`
	Reason    string `json:"reason,omitempty"`
}

// Processor glues the bus, the store, and the engagement engine together.
// One inbound event drives exactly one turn; the store's version check
// rejects overlapping turns for the same session id.
type Processor struct {
	store  *store.Store
	engine *engine.Engine
	bus    *bus.Client
	notify *notify.Poster
	logger *slog.Logger
}

func New(s *store.Store, e *engine.Engine, b *bus.Client, n *notify.Poster, logger *slog.Logger) *Processor {
	return &Processor{store: s, engine: e, bus: b, notify: n, logger: logger}
}

// HandleMessageReceived is the NATS handler for decoy.channel.message.received.
func (p *Processor) HandleMessageReceived(subject string, data []byte) {
	ctx := context.Background()

	var evt InboundMessage
	if err := json.Unmarshal(data, &evt); err != nil {
		p.logger.Error("failed to parse inbound message event", "error", err)
		return
	}

	sessionID, err := uuid.Parse(evt.SessionID)
	if err != nil {
		p.logger.Error("invalid session id", "session_id", evt.SessionID, "error", err)
		return
	}

	now := time.Now().UTC()
	if ts, parseErr := time.Parse(time.RFC3339, evt.Timestamp); parseErr == nil {
		now = ts
	}

	sess, err := p.store.LoadSession(ctx, sessionID)
	if errors.Is(err, store.ErrSessionNotFound) {
		sess = session.New(sessionID, evt.Persona, evt.Language, now)
		p.logger.Info("new engagement session", "session_id", sessionID, "persona", evt.Persona)
	} else if err != nil {
		p.logger.Error("failed to load session", "session_id", sessionID, "error", err)
		return
	}

	if sess.Terminated {
		p.logger.Info("message for terminated session ignored", "session_id", sessionID)
		return
	}

	updated, err := p.engine.AdvanceTurn(ctx, sess, evt.Text, now)
	if err != nil {
		p.logger.Error("turn failed", "session_id", sessionID, "error", err)
		return
	}

	if err := p.store.SaveSession(ctx, updated); err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			// Concurrent turns for one session id break the caller contract;
			// drop this turn rather than corrupt state.
			p.logger.Error("concurrent turn detected, dropping", "session_id", sessionID)
			return
		}
		p.logger.Error("failed to save session", "session_id", sessionID, "error", err)
		return
	}

	p.publishReply(updated)
	if updated.Terminated {
		p.publishClosed(ctx, updated)
	}
}

// HandleAbort is the NATS handler for decoy.session.abort.
func (p *Processor) HandleAbort(subject string, data []byte) {
	ctx := context.Background()

	var evt AbortEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		p.logger.Error("failed to parse abort event", "error", err)
		return
	}

	sessionID, err := uuid.Parse(evt.SessionID)
	if err != nil {
		p.logger.Error("invalid session id", "session_id", evt.SessionID, "error", err)
		return
	}

	sess, err := p.store.LoadSession(ctx, sessionID)
	if err != nil {
		p.logger.Error("failed to load session for abort", "session_id", sessionID, "error", err)
		return
	}
	if sess.Terminated {
		return
	}

	sess.Terminate(session.ReasonExternalAbort, time.Now().UTC())
	if err := p.store.SaveSession(ctx, sess); err != nil {
		p.logger.Error("failed to save aborted session", "session_id", sessionID, "error", err)
		return
	}

	p.logger.Info("session externally aborted", "session_id", sessionID, "reason", evt.Reason)
	p.publishClosed(ctx, sess)
}

func (p *Processor) publishReply(sess *session.Session) {
	if sess.Terminated && sess.TerminalReason == session.ReasonExternalAbort {
		return
	}
	for i := len(sess.Transcript) - 1; i >= 0; i-- {
		if sess.Transcript[i].Sender == session.SenderAgent {
			if err := p.bus.Publish(bus.SubjectSessionReply, map[string]any{
				"session_id": sess.ID.String(),
				"turn":       sess.Transcript[i].Turn,
				"text":       sess.Transcript[i].Text,
			}); err != nil {
				p.logger.Error("failed to publish reply", "session_id", sess.ID, "error", err)
			}
			return
		}
	}
}

func (p *Processor) publishClosed(ctx context.Context, sess *session.Session) {
	result := sess.ResultPayload()

	if err := p.bus.Publish(bus.SubjectSessionClosed, result); err != nil {
		p.logger.Error("failed to publish session closed", "session_id", sess.ID, "error", err)
	}

	if p.notify != nil && len(result.Identifiers) > 0 {
		if err := p.notify.PostIntelReport(ctx, result); err != nil {
			p.logger.Error("failed to post intel report", "session_id", sess.ID, "error", err)
		}
	}
}
