package signals

import (
	"math"
	"testing"
)

func TestUrgencyProvider(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantUrgency  float64
		wantStrategy string
	}{
		{"calm text", "hello, how are you today", 0.0, ""},
		{"single marker", "this is urgent", 0.35, ""},
		{"two markers recommend stall", "urgent! act now before it expires", 1.0, StrategyStall},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := UrgencyProvider{}.Score(tt.text, 1, nil)
			if math.Abs(b.Urgency-tt.wantUrgency) > 0.001 {
				t.Errorf("urgency = %f, want %f", b.Urgency, tt.wantUrgency)
			}
			if b.Strategy != tt.wantStrategy {
				t.Errorf("strategy = %q, want %q", b.Strategy, tt.wantStrategy)
			}
		})
	}
}

func TestAggressionProvider(t *testing.T) {
	b := AggressionProvider{}.Score("pay now or the police will arrest you", 3, nil)
	if math.Abs(b.Aggression-0.8) > 0.001 {
		t.Errorf("two threat markers should score 0.8, got %f", b.Aggression)
	}
	if b.Strategy != StrategySoothe {
		t.Errorf("threats should recommend soothing, got %q", b.Strategy)
	}

	calm := AggressionProvider{}.Score("thank you for your patience", 3, nil)
	if calm.Aggression != 0 || calm.Strategy != "" {
		t.Errorf("calm text should not register aggression: %+v", calm)
	}
}

func TestRapportProvider(t *testing.T) {
	early := RapportProvider{}.Score("please sir, trust me", 2, nil)
	if math.Abs(early.Trust-0.75) > 0.001 {
		t.Errorf("three trust markers = 0.75, got %f", early.Trust)
	}
	if early.Strategy != StrategyComply {
		t.Errorf("high rapport should recommend comply, got %q", early.Strategy)
	}

	// Sustained engagement past the opening turns adds to the score.
	late := RapportProvider{}.Score("please", 8, nil)
	if math.Abs(late.Trust-0.45) > 0.001 {
		t.Errorf("marker plus turn bonus = 0.45, got %f", late.Trust)
	}

	capped := RapportProvider{}.Score("please sir madam dear, trust me, don't worry", 10, nil)
	if capped.Trust != 1.0 {
		t.Errorf("trust must cap at 1.0, got %f", capped.Trust)
	}
}

func TestMarkerScoreCaps(t *testing.T) {
	text := "urgent immediately hurry asap act now expires"
	if got := markerScore(text, urgencyMarkers, 0.35); got != 1.0 {
		t.Errorf("marker score must cap at 1.0, got %f", got)
	}
}
