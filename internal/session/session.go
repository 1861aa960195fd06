package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/netlure/decoy/internal/extract"
)

// Sender identifies which side of the engagement produced a message.
type Sender string

const (
	SenderCounterpart Sender = "counterpart"
	SenderAgent       Sender = "agent"
)

// Reason is the terminal reason recorded when a session ends.
type Reason string

const (
	ReasonMaxTurns      Reason = "max_turns"
	ReasonConfidenceMet Reason = "confidence_met"
	ReasonSafetyAbort   Reason = "safety_abort"
	ReasonExternalAbort Reason = "external_abort"
)

// Message is one entry in a session's append-only transcript.
type Message struct {
	Turn      int       `json:"turn"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is the complete per-engagement state. It is treated as a value:
// the engine never mutates a session in place, it returns an updated copy.
// Callers must enforce at-most-one-turn-in-flight per session id; the store's
// version column exists for that check.
type Session struct {
	ID              uuid.UUID   `json:"id"`
	Persona         string      `json:"persona"`
	Language        string      `json:"language"`
	TurnCount       int         `json:"turn_count"`
	Phase           Phase       `json:"phase"`
	Terminated      bool        `json:"terminated"`
	TerminalReason  Reason      `json:"terminal_reason,omitempty"`
	Transcript      []Message   `json:"transcript"`
	Identifiers     extract.Set `json:"identifiers"`
	Confidence      float64     `json:"confidence"`
	UnreliableTurns int         `json:"unreliable_turns"`
	Version         int64       `json:"version"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// New creates a fresh session in OPENING at turn zero.
func New(id uuid.UUID, persona, language string, now time.Time) *Session {
	return &Session{
		ID:          id,
		Persona:     persona,
		Language:    language,
		Phase:       PhaseOpening,
		Identifiers: extract.NewSet(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Clone returns a deep copy suitable for functional updates.
func (s *Session) Clone() *Session {
	out := *s
	out.Transcript = make([]Message, len(s.Transcript))
	copy(out.Transcript, s.Transcript)
	out.Identifiers = s.Identifiers.Clone()
	return &out
}

// Append adds a message to the transcript. Counterpart messages advance the
// turn counter by exactly one; agent messages are recorded against the
// current turn.
func (s *Session) Append(sender Sender, text string, at time.Time) {
	if sender == SenderCounterpart {
		s.TurnCount++
	}
	s.Transcript = append(s.Transcript, Message{
		Turn:      s.TurnCount,
		Sender:    sender,
		Text:      text,
		Timestamp: at,
	})
	s.UpdatedAt = at
}

// TranscriptText renders the full transcript as plain text, one message per
// line. The extraction engine always runs over this whole rendering.
func (s *Session) TranscriptText() string {
	var b []byte
	for _, m := range s.Transcript {
		b = append(b, m.Text...)
		b = append(b, '\n')
	}
	return string(b)
}

// LastCounterpartText returns the most recent counterpart message, or "".
func (s *Session) LastCounterpartText() string {
	for i := len(s.Transcript) - 1; i >= 0; i-- {
		if s.Transcript[i].Sender == SenderCounterpart {
			return s.Transcript[i].Text
		}
	}
	return ""
}

// Terminate marks the session terminated. Termination is monotone: once set,
// the reason never changes.
func (s *Session) Terminate(reason Reason, at time.Time) {
	if s.Terminated {
		return
	}
	s.Terminated = true
	s.TerminalReason = reason
	s.Phase = PhaseTerminated
	s.UpdatedAt = at
}

// Result is the payload exposed upward when a session is read out.
type Result struct {
	SessionID   uuid.UUID            `json:"session_id"`
	Identifiers []extract.Identifier `json:"identifiers"`
	Confidence  float64              `json:"confidence"`
	Transcript  []Message            `json:"transcript"`
	Terminated  bool                 `json:"terminated"`
	Reason      Reason               `json:"terminal_reason,omitempty"`
}

// ResultPayload builds the upward-facing result for this session.
func (s *Session) ResultPayload() Result {
	return Result{
		SessionID:   s.ID,
		Identifiers: s.Identifiers.Sorted(),
		Confidence:  s.Confidence,
		Transcript:  s.Transcript,
		Terminated:  s.Terminated,
		Reason:      s.TerminalReason,
	}
}
