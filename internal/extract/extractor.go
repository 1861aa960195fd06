package extract

import "strings"

// confidenceWeights are presence-indicator weights: each kind credits its
// weight once if at least one identifier of that kind was accepted, so one
// payment handle counts the same as ten.
var confidenceWeights = map[Kind]float64{
	KindPaymentHandle: 0.30,
	KindBankAccount:   0.30,
	KindRoutingCode:   0.20,
	KindPhone:         0.10,
	KindURL:           0.10,
}

// Engine runs the deterministic extraction pipeline: fold digit scripts,
// scan per-kind patterns, validate and normalize, de-duplicate, apply
// cross-kind suppression, and score confidence. Extract is pure: the same
// transcript always yields the same result, and it is re-run over the whole
// transcript every turn rather than incrementally.
type Engine struct {
	registry *Registry
}

// NewEngine builds an engine over the default validator registry.
func NewEngine(defaultRegion string) *Engine {
	return &Engine{registry: NewRegistry(defaultRegion)}
}

// Registry exposes the validator table, for callers that need to validate a
// single token outside a full scan.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Extract scans the full transcript text and returns the accepted identifier
// set plus a confidence score in [0,1].
func (e *Engine) Extract(text string) (Set, float64) {
	folded := FoldDigits(text)
	set := NewSet()

	// Digit signatures of accepted identifiers, used by suppression rules.
	signatures := make(map[Kind]map[string]bool)
	record := func(kind Kind, values ...string) {
		if signatures[kind] == nil {
			signatures[kind] = make(map[string]bool)
		}
		for _, v := range values {
			if d := digitsOnly(v); d != "" {
				signatures[kind][d] = true
			}
		}
	}

	for _, rule := range e.registry.Rules() {
		for _, match := range rule.Pattern.FindAllString(folded, -1) {
			normalized, ok := rule.Normalize(match)
			if !ok {
				continue // ValidationError: malformed candidate, silently discarded
			}
			if rule.SuppressedBy != "" && suppressed(signatures[rule.SuppressedBy], normalized) {
				continue
			}
			set.Add(Identifier{Kind: rule.Kind, Raw: match, Normalized: normalized})
			record(rule.Kind, match, normalized)
		}
	}

	return set, Confidence(set)
}

// Confidence computes the presence-indicator weighted sum for a set.
func Confidence(set Set) float64 {
	var score float64
	for kind, weight := range confidenceWeights {
		if set.HasKind(kind) {
			score += weight
		}
	}
	return score
}

// suppressed reports whether a digit value was already accepted under the
// suppressing kind, either exactly or as the national tail of a number that
// gained a country prefix during normalization.
func suppressed(sigs map[string]bool, normalized string) bool {
	digits := digitsOnly(normalized)
	if digits == "" {
		return false
	}
	if sigs[digits] {
		return true
	}
	for sig := range sigs {
		if strings.HasSuffix(sig, digits) && len(sig)-len(digits) <= 3 {
			return true
		}
	}
	return false
}
