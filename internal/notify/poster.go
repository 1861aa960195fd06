package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/netlure/decoy/internal/session"
)

const defaultPostMessageURL = "https://slack.com/api/chat.postMessage"

// Poster posts terminal intel reports to a Slack channel for analysts.
type Poster struct {
	token   string
	channel string
	client  *http.Client
	logger  *slog.Logger
	apiURL  string
}

func NewPoster(token, channel string, logger *slog.Logger) *Poster {
	return &Poster{
		token:   token,
		channel: channel,
		client:  &http.Client{Timeout: 10 * time.Second},
		apiURL:  defaultPostMessageURL,
		logger:  logger,
	}
}

// SetTestURL points the poster at a test server.
func (p *Poster) SetTestURL(url string) {
	p.apiURL = url
}

// PostIntelReport posts a closed session's result payload.
func (p *Poster) PostIntelReport(ctx context.Context, result session.Result) error {
	text := formatIntelReport(result)

	body, err := json.Marshal(map[string]any{
		"channel": p.channel,
		"text":    text,
		"blocks": []map[string]any{
			{
				"type": "section",
				"text": map[string]any{
					"type": "mrkdwn",
					"text": text,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("slack post: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var slackResp struct {
		OK    bool   `json:"ok"`
		TS    string `json:"ts"`
		Error string `json:"error,omitempty"`
	}
	if err := json.Unmarshal(respBody, &slackResp); err != nil {
		return fmt.Errorf("parse slack response: %w", err)
	}
	if !slackResp.OK {
		return fmt.Errorf("slack error: %s", slackResp.Error)
	}

	p.logger.Info("posted intel report", "ts", slackResp.TS, "session_id", result.SessionID)
	return nil
}

func formatIntelReport(result session.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "*Engagement closed* — session `%s`\n", result.SessionID)
	fmt.Fprintf(&sb, "Reason: `%s` | Confidence: %.2f | Turns: %d\n",
		result.Reason, result.Confidence, len(result.Transcript))

	if len(result.Identifiers) == 0 {
		sb.WriteString("No identifiers extracted.")
		return sb.String()
	}

	sb.WriteString("Extracted identifiers:\n")
	for _, id := range result.Identifiers {
		fmt.Fprintf(&sb, "• `%s` %s (seen as %q)\n", id.Kind, id.Normalized, id.Raw)
	}
	return sb.String()
}
