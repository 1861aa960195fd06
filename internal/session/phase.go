package session

// Phase names an interval of the engagement, keyed by turn count. Phases only
// move forward; TERMINATED is the sole terminal phase.
type Phase string

const (
	PhaseOpening        Phase = "opening"
	PhasePressureTest   Phase = "pressure_test"
	PhaseExtractionPush Phase = "extraction_push"
	PhaseTerminated     Phase = "terminated"
)

const (
	// MaxTurns is the hard engagement cap. No session exceeds it, including
	// across crash recovery of persisted sessions.
	MaxTurns = 20

	// ConfidenceThreshold ends the engagement once extraction confidence
	// reaches it. See DESIGN.md for why 0.85 is the canonical value.
	ConfidenceThreshold = 0.85

	openingLastTurn  = 5
	pressureLastTurn = 12
)

// PhaseForTurn maps a turn count to its phase. It is pure and
// order-preserving: higher turns never map to earlier phases.
func PhaseForTurn(turn int) Phase {
	switch {
	case turn <= openingLastTurn:
		return PhaseOpening
	case turn <= pressureLastTurn:
		return PhasePressureTest
	default:
		return PhaseExtractionPush
	}
}

// Order returns the progression rank of a phase, for forward-only checks.
func (p Phase) Order() int {
	switch p {
	case PhaseOpening:
		return 0
	case PhasePressureTest:
		return 1
	case PhaseExtractionPush:
		return 2
	case PhaseTerminated:
		return 3
	default:
		return -1
	}
}
