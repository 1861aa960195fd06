package ranker

import (
	"strings"

	"github.com/netlure/decoy/internal/extract"
	"github.com/netlure/decoy/internal/signals"
)

// Criterion weights. They sum to 1.0 before the red-flag penalty.
const (
	weightExtraction   = 0.30
	weightPlausibility = 0.25
	weightCoherence    = 0.20
	weightContinuation = 0.15
	weightPersona      = 0.10
)

// Red-flag penalty: per matched phrase, capped so a single bad phrase cannot
// zero out an otherwise strong candidate.
const (
	redFlagPenalty    = 0.10
	redFlagPenaltyCap = 0.25
)

// Criteria holds the per-axis subscores for one candidate.
type Criteria struct {
	ExtractionUtility float64 `json:"extraction_utility"`
	Plausibility      float64 `json:"plausibility"`
	Coherence         float64 `json:"coherence"`
	Continuation      float64 `json:"continuation"`
	PersonaAlignment  float64 `json:"persona_alignment"`
}

// Scored is a candidate with its subscores and penalty-adjusted total.
// Candidates are ephemeral: produced, ranked, and discarded within one turn.
type Scored struct {
	Text     string   `json:"text"`
	Criteria Criteria `json:"criteria"`
	Penalty  float64  `json:"penalty"`
	Total    float64  `json:"total"`
}

// Context is what the ranker knows about the turn being answered.
type Context struct {
	LastInbound  string
	MissingKinds []extract.Kind
	PersonaHints []string
	Signals      signals.Bundle
}

// Rank scores every candidate and returns the best. Ties break to the first
// candidate in input order; there is no randomness anywhere in the scoring.
// An empty candidate list is a caller contract violation and panics.
func Rank(candidates []string, rctx Context) Scored {
	if len(candidates) == 0 {
		panic("ranker: empty candidate list")
	}

	best := Score(candidates[0], rctx)
	for _, c := range candidates[1:] {
		if s := Score(c, rctx); s.Total > best.Total {
			best = s
		}
	}
	return best
}

// Score computes the weighted subscores for a single candidate.
func Score(text string, rctx Context) Scored {
	crit := Criteria{
		ExtractionUtility: extractionUtility(text, rctx.MissingKinds),
		Plausibility:      plausibility(text),
		Coherence:         coherence(text, rctx),
		Continuation:      continuation(text),
		PersonaAlignment:  personaAlignment(text, rctx.PersonaHints),
	}
	penalty := redFlags(text)

	total := weightExtraction*crit.ExtractionUtility +
		weightPlausibility*crit.Plausibility +
		weightCoherence*crit.Coherence +
		weightContinuation*crit.Continuation +
		weightPersona*crit.PersonaAlignment -
		penalty

	return Scored{Text: text, Criteria: crit, Penalty: penalty, Total: total}
}

// kindProbes maps each identifier kind to phrasing that solicits it.
var kindProbes = map[extract.Kind][]string{
	extract.KindPaymentHandle: {"upi", "gpay", "google pay", "phonepe", "paytm", "payment id", "where do i send"},
	extract.KindBankAccount:   {"account number", "bank account", "a/c", "account details"},
	extract.KindRoutingCode:   {"ifsc", "routing", "swift", "branch code", "sort code"},
	extract.KindPhone:         {"phone", "whatsapp", "call you", "your number", "mobile"},
	extract.KindURL:           {"link", "website", "url", "the site"},
}

// extractionUtility rewards candidates that solicit an identifier kind not
// yet in the session's set.
func extractionUtility(text string, missing []extract.Kind) float64 {
	lower := strings.ToLower(text)
	for _, kind := range missing {
		for _, probe := range kindProbes[kind] {
			if strings.Contains(lower, probe) {
				return 1.0
			}
		}
	}
	if strings.Contains(lower, "?") {
		return 0.2 // asks something, just not for missing intel
	}
	return 0.0
}

var giveawayPhrases = []string{
	"as an ai", "language model", "i am a bot", "i'm a bot",
	"honeypot", "i cannot assist", "i can't assist", "simulated",
}

// plausibility penalizes give-away phrasing that would break character.
func plausibility(text string) float64 {
	lower := strings.ToLower(text)
	score := 1.0
	for _, p := range giveawayPhrases {
		if strings.Contains(lower, p) {
			score -= 0.5
		}
	}
	if score < 0.0 {
		return 0.0
	}
	return score
}

var excitementMarkers = []string{"great!", "awesome", "amazing", "wonderful", "fantastic", "so excited"}

// coherence measures topical overlap with the counterpart's last message and
// heavily penalizes tonal mismatch, e.g. excitement in reply to a threat.
func coherence(text string, rctx Context) float64 {
	score := 0.3 + 0.7*wordOverlap(text, rctx.LastInbound)

	if rctx.Signals.Aggression >= 0.4 {
		lower := strings.ToLower(text)
		for _, m := range excitementMarkers {
			if strings.Contains(lower, m) {
				score -= 0.8
				break
			}
		}
	}

	if score < 0.0 {
		return 0.0
	}
	if score > 1.0 {
		return 1.0
	}
	return score
}

var commitmentPhrases = []string{"i will ", "i'll ", "let me ", "give me a moment", "i can do that"}

// continuation rewards replies that keep the counterpart talking: an open
// question, or a commitment that invites follow-up.
func continuation(text string) float64 {
	trimmed := strings.TrimSpace(text)
	if strings.HasSuffix(trimmed, "?") {
		return 1.0
	}
	lower := strings.ToLower(trimmed)
	for _, p := range commitmentPhrases {
		if strings.Contains(lower, p) {
			return 0.7
		}
	}
	return 0.2
}

// personaAlignment scores the fraction of persona hint phrases present.
// With no hints configured every candidate gets the same neutral score.
func personaAlignment(text string, hints []string) float64 {
	if len(hints) == 0 {
		return 0.5
	}
	lower := strings.ToLower(text)
	matched := 0
	for _, h := range hints {
		if strings.Contains(lower, strings.ToLower(h)) {
			matched++
		}
	}
	return float64(matched) / float64(len(hints))
}

var redFlagPhrases = []string{
	"this is a scam", "you are a scammer", "i'm reporting you",
	"reported to the police", "cyber cell", "fraud department",
	"i know what you're doing", "stop scamming",
}

// redFlags returns the capped penalty for explicit engagement-ending phrases.
func redFlags(text string) float64 {
	lower := strings.ToLower(text)
	var penalty float64
	for _, p := range redFlagPhrases {
		if strings.Contains(lower, p) {
			penalty += redFlagPenalty
		}
	}
	if penalty > redFlagPenaltyCap {
		return redFlagPenaltyCap
	}
	return penalty
}

// wordOverlap is a symmetric token overlap in [0,1] over words longer than
// three characters.
func wordOverlap(a, b string) float64 {
	aw := significantWords(a)
	bw := significantWords(b)
	if len(aw) == 0 || len(bw) == 0 {
		return 0.0
	}
	shared := 0
	for w := range aw {
		if bw[w] {
			shared++
		}
	}
	smaller := len(aw)
	if len(bw) < smaller {
		smaller = len(bw)
	}
	return float64(shared) / float64(smaller)
}

func significantWords(s string) map[string]bool {
	out := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(s)) {
		w = strings.Trim(w, ".,!?;:\"'()")
		if len(w) > 3 {
			out[w] = true
		}
	}
	return out
}
