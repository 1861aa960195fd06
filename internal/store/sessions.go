package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/netlure/decoy/internal/extract"
	"github.com/netlure/decoy/internal/session"
)

// LoadSession fetches a session by id. Returns ErrSessionNotFound when no
// row exists.
func (s *Store) LoadSession(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, persona, language, turn_count, phase, terminated, terminal_reason,
		       transcript, identifiers, confidence, unreliable_turns, version,
		       created_at, updated_at
		FROM sessions
		WHERE id = $1`,
		id,
	)

	var sess session.Session
	var reason string
	var transcript, identifiers []byte
	err := row.Scan(
		&sess.ID, &sess.Persona, &sess.Language, &sess.TurnCount, &sess.Phase,
		&sess.Terminated, &reason, &transcript, &identifiers, &sess.Confidence,
		&sess.UnreliableTurns, &sess.Version, &sess.CreatedAt, &sess.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}

	sess.TerminalReason = session.Reason(reason)
	if err := json.Unmarshal(transcript, &sess.Transcript); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}
	sess.Identifiers = extract.NewSet()
	if err := json.Unmarshal(identifiers, &sess.Identifiers); err != nil {
		return nil, fmt.Errorf("decode identifiers: %w", err)
	}
	return &sess, nil
}

// SaveSession persists a session with an optimistic-concurrency check: the
// row is only written if its stored version still matches the version the
// session was loaded at. A mismatch returns ErrVersionConflict, surfacing a
// violated at-most-one-turn contract instead of silently corrupting state.
// Extracted identifiers are also flattened into session_identifiers rows for
// cross-session correlation.
func (s *Store) SaveSession(ctx context.Context, sess *session.Session) error {
	transcript, err := json.Marshal(sess.Transcript)
	if err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}
	identifiers, err := json.Marshal(sess.Identifiers)
	if err != nil {
		return fmt.Errorf("encode identifiers: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		INSERT INTO sessions (id, persona, language, turn_count, phase, terminated, terminal_reason,
		                      transcript, identifiers, confidence, unreliable_turns, version,
		                      created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12 + 1, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			turn_count = $4,
			phase = $5,
			terminated = $6,
			terminal_reason = $7,
			transcript = $8,
			identifiers = $9,
			confidence = $10,
			unreliable_turns = $11,
			version = $12 + 1,
			updated_at = $14
		WHERE sessions.version = $12`,
		sess.ID, sess.Persona, sess.Language, sess.TurnCount, string(sess.Phase),
		sess.Terminated, string(sess.TerminalReason), transcript, identifiers,
		sess.Confidence, sess.UnreliableTurns, sess.Version,
		sess.CreatedAt, sess.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}

	for _, id := range sess.Identifiers.Sorted() {
		_, err := tx.Exec(ctx, `
			INSERT INTO session_identifiers (id, session_id, kind, raw, normalized, created_at)
			VALUES ($1, $2, $3, $4, $5, now())
			ON CONFLICT (session_id, kind, normalized) DO NOTHING`,
			uuid.New(), sess.ID, string(id.Kind), id.Raw, id.Normalized,
		)
		if err != nil {
			return fmt.Errorf("upsert identifier: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	sess.Version++
	return nil
}
