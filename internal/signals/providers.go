package signals

import (
	"strings"

	"github.com/netlure/decoy/internal/session"
)

// Strategy tags recommended by the built-in providers.
const (
	StrategyStall   = "stall"
	StrategySoothe  = "soothe"
	StrategyComply  = "comply"
	StrategyNeutral = "neutral"
)

var urgencyMarkers = []string{
	"urgent", "immediately", "right now", "hurry", "last chance",
	"expires", "within 24 hours", "final warning", "act now", "asap",
}

var aggressionMarkers = []string{
	"police", "arrest", "legal action", "lawyer", "blocked",
	"suspended", "or else", "consequences", "warning", "penalty",
	"you will regret", "fir", "court",
}

var trustMarkers = []string{
	"please", "sir", "madam", "dear", "trust me", "don't worry",
	"guarantee", "100% safe", "verified", "official",
}

// UrgencyProvider scores time-pressure language. High urgency recommends
// stalling: a rushed mark extracts nothing.
type UrgencyProvider struct{}

func (UrgencyProvider) Score(text string, turn int, prior []session.Message) Bundle {
	score := markerScore(text, urgencyMarkers, 0.35)
	b := Bundle{Urgency: score}
	if score >= 0.7 {
		b.Strategy = StrategyStall
	}
	return b
}

// AggressionProvider scores threat language. High aggression recommends
// soothing before any extraction attempt.
type AggressionProvider struct{}

func (AggressionProvider) Score(text string, turn int, prior []session.Message) Bundle {
	score := markerScore(text, aggressionMarkers, 0.4)
	b := Bundle{Aggression: score}
	if score >= 0.4 {
		b.Strategy = StrategySoothe
	}
	return b
}

// RapportProvider estimates how much the counterpart is investing in the
// relationship. Reassurance language plus sustained engagement over turns
// both read as trust being extended.
type RapportProvider struct{}

func (RapportProvider) Score(text string, turn int, prior []session.Message) Bundle {
	score := markerScore(text, trustMarkers, 0.25)
	if turn > 5 {
		score += 0.2 // still talking after the opening phase
	}
	if score > 1.0 {
		score = 1.0
	}
	b := Bundle{Trust: score}
	if score >= 0.6 {
		b.Strategy = StrategyComply
	}
	return b
}

// Defaults returns the built-in provider set.
func Defaults() []Provider {
	return []Provider{UrgencyProvider{}, AggressionProvider{}, RapportProvider{}}
}

func markerScore(text string, markers []string, perHit float64) float64 {
	lower := strings.ToLower(text)
	var score float64
	for _, m := range markers {
		if strings.Contains(lower, m) {
			score += perHit
		}
	}
	if score > 1.0 {
		return 1.0
	}
	return score
}
