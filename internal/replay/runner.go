package replay

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/netlure/decoy/internal/extract"
	"github.com/netlure/decoy/internal/session"
	"github.com/netlure/decoy/internal/store"
)

// Runner re-extracts identifiers from exported conversations offline. Useful
// after validator table changes: historical transcripts yield intel the old
// rules missed.
type Runner struct {
	extractor *extract.Engine
	store     *store.Store
	logger    *slog.Logger
}

func NewRunner(ext *extract.Engine, st *store.Store, logger *slog.Logger) *Runner {
	return &Runner{extractor: ext, store: st, logger: logger}
}

// Run processes every unprocessed .jsonl export under dir, writing extracted
// identifiers through the store. Progress is resumable via the state file.
func (r *Runner) Run(ctx context.Context, dir, statePath string) error {
	state, err := LoadState(statePath)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.jsonl"))
	if err != nil {
		return fmt.Errorf("glob exports: %w", err)
	}

	for _, path := range files {
		if state.IsProcessed(path) {
			continue
		}

		msgs, err := ParseExportFile(path)
		if err != nil {
			state.AddError(fmt.Sprintf("%s: %v", path, err))
			r.logger.Error("failed to parse export", "path", path, "error", err)
			continue
		}
		if len(msgs) == 0 {
			state.MarkProcessed(path)
			continue
		}

		ids, confidence := r.extractor.Extract(transcriptText(msgs))

		// Deterministic session id per export file, so re-runs upsert
		// instead of duplicating.
		sessionID := uuid.NewSHA1(uuid.NameSpaceOID, []byte(filepath.Base(path)))
		if err := r.store.SaveIdentifiers(ctx, sessionID, ids); err != nil {
			state.AddError(fmt.Sprintf("%s: %v", path, err))
			r.logger.Error("failed to save identifiers", "path", path, "error", err)
			continue
		}

		state.MarkProcessed(path)
		state.IdentifiersFound += ids.Len()
		r.logger.Info("replayed export",
			"path", path,
			"messages", len(msgs),
			"identifiers", ids.Len(),
			"confidence", confidence,
		)

		if err := state.Save(); err != nil {
			return fmt.Errorf("save state: %w", err)
		}
	}

	return state.Save()
}

func transcriptText(msgs []session.Message) string {
	var b []byte
	for _, m := range msgs {
		b = append(b, m.Text...)
		b = append(b, '\n')
	}
	return string(b)
}
