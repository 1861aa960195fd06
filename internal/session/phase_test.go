package session

import "testing"

func TestPhaseForTurn(t *testing.T) {
	tests := []struct {
		name string
		turn int
		want Phase
	}{
		{"turn 1 opens", 1, PhaseOpening},
		{"turn 5 still opening", 5, PhaseOpening},
		{"turn 6 pressure test", 6, PhasePressureTest},
		{"turn 12 still pressure test", 12, PhasePressureTest},
		{"turn 13 extraction push", 13, PhaseExtractionPush},
		{"turn 20 extraction push", 20, PhaseExtractionPush},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PhaseForTurn(tt.turn); got != tt.want {
				t.Errorf("PhaseForTurn(%d) = %q, want %q", tt.turn, got, tt.want)
			}
		})
	}
}

func TestPhaseForTurn_OrderPreserving(t *testing.T) {
	// Phases only ever move forward as turns increase.
	prev := PhaseForTurn(1)
	for turn := 2; turn <= MaxTurns; turn++ {
		cur := PhaseForTurn(turn)
		if cur.Order() < prev.Order() {
			t.Fatalf("phase moved backward at turn %d: %q -> %q", turn, prev, cur)
		}
		prev = cur
	}
}

func TestPhaseOrder(t *testing.T) {
	phases := []Phase{PhaseOpening, PhasePressureTest, PhaseExtractionPush, PhaseTerminated}
	for i := 1; i < len(phases); i++ {
		if phases[i].Order() <= phases[i-1].Order() {
			t.Errorf("expected %q > %q in progression order", phases[i], phases[i-1])
		}
	}
	if Phase("banana").Order() != -1 {
		t.Error("unknown phase should rank below everything")
	}
}
