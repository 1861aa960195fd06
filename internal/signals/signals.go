package signals

import (
	"math"

	"github.com/netlure/decoy/internal/session"
)

// Bundle is the fixed numeric signal surface the engagement core reads from
// its scorer collaborators. The core never sees how a provider derived its
// numbers; it consumes the bundle as strongly typed data.
type Bundle struct {
	Urgency    float64 `json:"urgency"`
	Aggression float64 `json:"aggression"`
	Trust      float64 `json:"trust"`
	Strategy   string  `json:"strategy,omitempty"`
}

// Provider scores a counterpart message in the context of the conversation
// so far. Implementations must be pure: no I/O, no retained state.
type Provider interface {
	Score(text string, turn int, prior []session.Message) Bundle
}

// Validate clamps a bundle into its contract at the boundary: every field in
// [0,1], NaN and infinities treated as zero. Called once per provider result;
// everything downstream can assume a well-formed bundle.
func Validate(b Bundle) Bundle {
	b.Urgency = clamp(b.Urgency)
	b.Aggression = clamp(b.Aggression)
	b.Trust = clamp(b.Trust)
	return b
}

// Combine merges validated bundles from every configured provider. Urgency
// and aggression take the maximum seen (one alarmed provider is enough);
// trust averages; the first non-empty strategy tag wins.
func Combine(bundles []Bundle) Bundle {
	if len(bundles) == 0 {
		return Bundle{Trust: 0.5}
	}

	var out Bundle
	var trustSum float64
	for _, b := range bundles {
		b = Validate(b)
		out.Urgency = math.Max(out.Urgency, b.Urgency)
		out.Aggression = math.Max(out.Aggression, b.Aggression)
		trustSum += b.Trust
		if out.Strategy == "" {
			out.Strategy = b.Strategy
		}
	}
	out.Trust = trustSum / float64(len(bundles))
	return out
}

func clamp(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0.0
	}
	if v < 0.0 {
		return 0.0
	}
	if v > 1.0 {
		return 1.0
	}
	return v
}
