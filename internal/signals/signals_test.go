package signals

import (
	"math"
	"testing"
)

func TestValidate_Clamps(t *testing.T) {
	tests := []struct {
		name string
		in   Bundle
		want Bundle
	}{
		{"in range untouched", Bundle{Urgency: 0.3, Aggression: 0.7, Trust: 1.0}, Bundle{Urgency: 0.3, Aggression: 0.7, Trust: 1.0}},
		{"negative clamped", Bundle{Urgency: -0.5, Trust: -1}, Bundle{}},
		{"above one clamped", Bundle{Aggression: 3.2}, Bundle{Aggression: 1.0}},
		{"nan zeroed", Bundle{Urgency: math.NaN()}, Bundle{}},
		{"inf zeroed", Bundle{Trust: math.Inf(1), Aggression: math.Inf(-1)}, Bundle{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.in)
			if got.Urgency != tt.want.Urgency || got.Aggression != tt.want.Aggression || got.Trust != tt.want.Trust {
				t.Errorf("Validate(%+v) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestCombine(t *testing.T) {
	bundles := []Bundle{
		{Urgency: 0.2, Aggression: 0.8, Trust: 0.4},
		{Urgency: 0.9, Aggression: 0.1, Trust: 0.6, Strategy: StrategyStall},
		{Urgency: 0.5, Trust: 0.2, Strategy: StrategyComply},
	}

	got := Combine(bundles)
	if got.Urgency != 0.9 {
		t.Errorf("urgency should take the max, got %f", got.Urgency)
	}
	if got.Aggression != 0.8 {
		t.Errorf("aggression should take the max, got %f", got.Aggression)
	}
	if math.Abs(got.Trust-0.4) > 0.001 {
		t.Errorf("trust should average, got %f", got.Trust)
	}
	if got.Strategy != StrategyStall {
		t.Errorf("first non-empty strategy should win, got %q", got.Strategy)
	}
}

func TestCombine_Empty(t *testing.T) {
	got := Combine(nil)
	if got.Trust != 0.5 {
		t.Errorf("no providers should yield neutral trust 0.5, got %f", got.Trust)
	}
	if got.Urgency != 0 || got.Aggression != 0 || got.Strategy != "" {
		t.Errorf("no providers should yield zero signals, got %+v", got)
	}
}

func TestCombine_ValidatesInputs(t *testing.T) {
	got := Combine([]Bundle{{Urgency: math.NaN(), Trust: 5.0}})
	if got.Urgency != 0 {
		t.Errorf("NaN input must not survive combination, got %f", got.Urgency)
	}
	if got.Trust != 1.0 {
		t.Errorf("out-of-range trust must be clamped before averaging, got %f", got.Trust)
	}
}
