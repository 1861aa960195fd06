package replay

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/netlure/decoy/internal/session"
)

// exportLine is a single line of an exported chat JSONL file.
type exportLine struct {
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// ParseExportFile reads an exported conversation into transcript messages.
// Malformed lines are skipped; empty files yield nil.
func ParseExportFile(path string) ([]session.Message, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	var msgs []session.Message
	turn := 0

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var line exportLine
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			continue // skip malformed lines
		}
		if line.Text == "" {
			continue
		}

		sender := normalizeSender(line.Sender)
		if sender == session.SenderCounterpart {
			turn++
		}

		ts, _ := time.Parse(time.RFC3339, line.Timestamp)
		msgs = append(msgs, session.Message{
			Turn:      turn,
			Sender:    sender,
			Text:      line.Text,
			Timestamp: ts,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	return msgs, nil
}

// normalizeSender folds the sender labels different channel exports use.
func normalizeSender(raw string) session.Sender {
	switch raw {
	case "agent", "me", "assistant", "decoy":
		return session.SenderAgent
	default:
		return session.SenderCounterpart
	}
}
