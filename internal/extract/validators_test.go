package extract

import "testing"

func TestNormalizePaymentHandle(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{"known suffix", "agent@upi", "agent@upi", true},
		{"known bank suffix", "Merchant.01@okhdfcbank", "merchant.01@okhdfcbank", true},
		{"uppercase folded", "AGENT@UPI", "agent@upi", true},
		{"unknown but plausible suffix", "someone@newbank", "someone@newbank", true},
		{"email-style dotted domain rejected", "john@gmail.com", "", false},
		{"missing suffix", "agent@", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := normalizePaymentHandle(tt.raw)
			if ok != tt.ok {
				t.Fatalf("normalizePaymentHandle(%q) ok = %v, want %v", tt.raw, ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("normalizePaymentHandle(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeBankAccount(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{"typical account", "123456789012", "123456789012", true},
		{"minimum length", "123456789", "123456789", true},
		{"maximum length", "123456789012345678", "123456789012345678", true},
		{"too short", "12345678", "", false},
		{"too long", "1234567890123456789", "", false},
		// Sequential accounts are kept on purpose, scammers hand them out.
		{"sequential test-like account kept", "111111111111", "111111111111", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := normalizeBankAccount(tt.raw)
			if ok != tt.ok {
				t.Fatalf("normalizeBankAccount(%q) ok = %v, want %v", tt.raw, ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("normalizeBankAccount(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeIFSC(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{"valid", "SBIN0001234", "SBIN0001234", true},
		{"lowercase folded", "sbin0001234", "SBIN0001234", true},
		{"fifth char not zero", "SBIN1001234", "", false},
		{"wrong length", "SBIN000123", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := normalizeIFSC(tt.raw)
			if ok != tt.ok {
				t.Fatalf("normalizeIFSC(%q) ok = %v, want %v", tt.raw, ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("normalizeIFSC(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeABARouting(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		ok   bool
	}{
		// 021000021 is JPMorgan Chase's well-known routing number.
		{"valid checksum", "021000021", true},
		{"invalid checksum", "021000022", false},
		{"all zeros", "000000000", false},
		{"wrong length", "02100002", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := normalizeABARouting(tt.raw)
			if ok != tt.ok {
				t.Errorf("normalizeABARouting(%q) ok = %v, want %v", tt.raw, ok, tt.ok)
			}
		})
	}
}

func TestNormalizePhone(t *testing.T) {
	r := NewRegistry("IN")

	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{"bare national number", "9876543210", "+919876543210", true},
		{"already international", "+919876543210", "+919876543210", true},
		{"spaced", "+91 98765 43210", "+919876543210", true},
		{"too few digits", "1234567", "", false},
		{"too many digits", "1234567890123456", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.normalizePhone(tt.raw)
			if ok != tt.ok {
				t.Fatalf("normalizePhone(%q) ok = %v, want %v", tt.raw, ok, tt.ok)
			}
			if tt.ok && got != tt.want {
				t.Errorf("normalizePhone(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{"plain http", "http://bit.ly/x", "http://bit.ly/x", true},
		{"https with path", "https://Example.com/Pay", "https://example.com/Pay", true},
		{"www without scheme", "www.example.com/claim", "http://www.example.com/claim", true},
		{"trailing punctuation stripped", "http://bit.ly/x.", "http://bit.ly/x", true},
		{"no host", "http://", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := normalizeURL(tt.raw)
			if ok != tt.ok {
				t.Fatalf("normalizeURL(%q) ok = %v, want %v", tt.raw, ok, tt.ok)
			}
			if tt.ok && got != tt.want {
				t.Errorf("normalizeURL(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestRegistryValidate_TriesAllRulesForKind(t *testing.T) {
	r := NewRegistry("IN")

	// IFSC rule rejects a 9-digit string; the ABA rule should still accept.
	got, ok := r.Validate(KindRoutingCode, "021000021")
	if !ok || got != "021000021" {
		t.Errorf("Validate(routing, ABA) = %q, %v; want 021000021, true", got, ok)
	}
}
