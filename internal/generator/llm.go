package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/netlure/decoy/internal/llm"
	"github.com/netlure/decoy/internal/session"
)

const llmSystemPrompt = `You are playing a character in a counter-fraud engagement. Stay fully in
character as: %s. Reply in %s with one short chat message. Never reveal that
you are automated, never accuse the other party, and keep them talking.`

// LLMGenerator asks a language model for an in-persona candidate reply.
// It is optional; the template generator alone keeps the engagement running.
type LLMGenerator struct {
	client *llm.Client
}

func NewLLMGenerator(client *llm.Client) *LLMGenerator {
	return &LLMGenerator{client: client}
}

func (g *LLMGenerator) Generate(ctx context.Context, snap Snapshot) (string, error) {
	lang := snap.Language
	if lang == "" {
		lang = "English"
	}
	system := fmt.Sprintf(llmSystemPrompt, snap.Persona, lang)

	messages := make([]llm.Message, 0, len(snap.Transcript))
	for _, m := range snap.Transcript {
		role := "user"
		if m.Sender == session.SenderAgent {
			role = "assistant"
		}
		// The messages API requires alternating roles; collapse runs.
		if n := len(messages); n > 0 && messages[n-1].Role == role {
			messages[n-1].Content += "\n" + m.Text
			continue
		}
		messages = append(messages, llm.Message{Role: role, Content: m.Text})
	}
	if len(messages) == 0 || messages[len(messages)-1].Role != "user" {
		return "", nil
	}

	reply, err := g.client.Complete(ctx, system, messages, 256)
	if err != nil {
		return "", fmt.Errorf("llm candidate: %w", err)
	}
	return strings.TrimSpace(reply), nil
}
