package extract

import (
	"encoding/json"
	"testing"
)

func TestSet_AddKeepsFirstRawForm(t *testing.T) {
	set := NewSet()
	set.Add(Identifier{Kind: KindPaymentHandle, Raw: "AGENT@UPI", Normalized: "agent@upi"})
	set.Add(Identifier{Kind: KindPaymentHandle, Raw: "agent@upi", Normalized: "agent@upi"})

	if set.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", set.Len())
	}
	if got := set.Sorted()[0].Raw; got != "AGENT@UPI" {
		t.Errorf("expected first raw form kept, got %q", got)
	}
}

func TestSet_SameValueDifferentKinds(t *testing.T) {
	set := NewSet()
	set.Add(Identifier{Kind: KindPhone, Raw: "987654321", Normalized: "987654321"})
	set.Add(Identifier{Kind: KindBankAccount, Raw: "987654321", Normalized: "987654321"})

	if set.Len() != 2 {
		t.Errorf("set is keyed by (kind, normalized); expected 2 entries, got %d", set.Len())
	}
}

func TestSet_Union(t *testing.T) {
	a := NewSet()
	a.Add(Identifier{Kind: KindPhone, Raw: "9876543210", Normalized: "+919876543210"})
	b := NewSet()
	b.Add(Identifier{Kind: KindURL, Raw: "http://x.io", Normalized: "http://x.io"})
	b.Add(Identifier{Kind: KindPhone, Raw: "9876543210", Normalized: "+919876543210"})

	u := a.Union(b)
	if u.Len() != 2 {
		t.Errorf("expected union of 2, got %d", u.Len())
	}
	if !u.Contains(a) || !u.Contains(b) {
		t.Error("union must contain both inputs")
	}
	// Inputs unchanged.
	if a.Len() != 1 || b.Len() != 2 {
		t.Error("union must not mutate its inputs")
	}
}

func TestSet_JSONRoundTrip(t *testing.T) {
	set := NewSet()
	set.Add(Identifier{Kind: KindPaymentHandle, Raw: "a@upi", Normalized: "a@upi"})
	set.Add(Identifier{Kind: KindPhone, Raw: "9876543210", Normalized: "+919876543210"})

	data, err := json.Marshal(set)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back Set
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Contains(set) || !set.Contains(back) {
		t.Errorf("round trip changed the set: %+v vs %+v", set.Sorted(), back.Sorted())
	}
}
