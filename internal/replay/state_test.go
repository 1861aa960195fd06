package replay

import (
	"path/filepath"
	"testing"
)

func TestState_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "state.json")

	s, err := LoadState(path)
	if err != nil {
		t.Fatalf("load fresh state: %v", err)
	}
	if s.StartedAt.IsZero() {
		t.Error("fresh state should record a start time")
	}

	s.MarkProcessed("a.jsonl")
	s.MarkProcessed("b.jsonl")
	s.IdentifiersFound = 7
	s.AddError("c.jsonl: bad encoding")

	if err := s.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := LoadState(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !loaded.IsProcessed("a.jsonl") || !loaded.IsProcessed("b.jsonl") {
		t.Error("processed files lost across reload")
	}
	if loaded.IsProcessed("c.jsonl") {
		t.Error("unprocessed file reported processed")
	}
	if loaded.IdentifiersFound != 7 {
		t.Errorf("identifiers found = %d, want 7", loaded.IdentifiersFound)
	}
	if len(loaded.Errors) != 1 {
		t.Errorf("errors lost across reload: %v", loaded.Errors)
	}
	if loaded.LastProcessedAt.IsZero() {
		t.Error("save should stamp last processed time")
	}
}

func TestState_ResumeIsIncremental(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	s, err := LoadState(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	s.MarkProcessed("done.jsonl")
	if err := s.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	resumed, err := LoadState(path)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	resumed.MarkProcessed("new.jsonl")
	if err := resumed.Save(); err != nil {
		t.Fatalf("second save: %v", err)
	}

	final, err := LoadState(path)
	if err != nil {
		t.Fatalf("final load: %v", err)
	}
	if len(final.FilesProcessed) != 2 {
		t.Errorf("expected both runs' files recorded, got %v", final.FilesProcessed)
	}
}
