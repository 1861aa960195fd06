package safety

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/netlure/decoy/internal/session"
)

// Result is the authoritative verdict from a safety screen. A non-safe
// result short-circuits response generation for the turn.
type Result struct {
	Safe           bool   `json:"safe"`
	DeflectionText string `json:"deflection_text,omitempty"`
}

// Screen checks an incoming message for probes that could expose the
// engagement. Implementations returning an error are treated as unsafe by
// the caller: the screen is fail-closed.
type Screen interface {
	Check(ctx context.Context, text string, prior []session.Message) (Result, error)
}

// DefaultDeflection is the scripted reply used to survive a detected probe
// without breaking character.
const DefaultDeflection = "Sorry, my network is acting up. Can you send that again in a bit?"

// HTTPScreen calls an external safety service.
type HTTPScreen struct {
	endpoint string
	client   *http.Client
}

// NewHTTPScreen builds a screen against the given endpoint.
func NewHTTPScreen(endpoint string, timeout time.Duration) *HTTPScreen {
	return &HTTPScreen{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type checkRequest struct {
	Text  string            `json:"text"`
	Prior []session.Message `json:"prior_transcript"`
}

// Check posts the message and prior transcript to the safety service. Any
// transport or decode failure is returned as an error for the caller's
// fail-closed handling.
func (s *HTTPScreen) Check(ctx context.Context, text string, prior []session.Message) (Result, error) {
	body, err := json.Marshal(checkRequest{Text: text, Prior: prior})
	if err != nil {
		return Result{}, fmt.Errorf("marshal check request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("safety check: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("safety service returned %d", resp.StatusCode)
	}

	var result Result
	if err := json.Unmarshal(respBody, &result); err != nil {
		return Result{}, fmt.Errorf("parse safety response: %w", err)
	}
	return result, nil
}
