package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/netlure/decoy/internal/extract"
)

// SaveIdentifiers writes identifier rows for a session without touching the
// session row itself. Used by offline replay, where only the intel matters.
func (s *Store) SaveIdentifiers(ctx context.Context, sessionID uuid.UUID, ids extract.Set) error {
	for _, id := range ids.Sorted() {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO session_identifiers (id, session_id, kind, raw, normalized, created_at)
			VALUES ($1, $2, $3, $4, $5, now())
			ON CONFLICT (session_id, kind, normalized) DO NOTHING`,
			uuid.New(), sessionID, string(id.Kind), id.Raw, id.Normalized,
		)
		if err != nil {
			return fmt.Errorf("upsert identifier: %w", err)
		}
	}
	return nil
}
