package extract

import (
	"encoding/json"
	"sort"
)

// Kind is an identifier class the engine knows how to extract.
type Kind string

const (
	KindPaymentHandle Kind = "payment_handle"
	KindBankAccount   Kind = "bank_account"
	KindRoutingCode   Kind = "routing_code"
	KindPhone         Kind = "phone"
	KindURL           Kind = "url"
)

// Kinds lists every identifier class in confidence-weight order.
var Kinds = []Kind{KindPaymentHandle, KindBankAccount, KindRoutingCode, KindPhone, KindURL}

// Identifier is one extracted token of interest. Normalized is the canonical
// form; Raw preserves the first surface form the value was seen in.
type Identifier struct {
	Kind       Kind   `json:"kind"`
	Raw        string `json:"raw"`
	Normalized string `json:"normalized"`
}

type setKey struct {
	kind       Kind
	normalized string
}

// Set is a collection of identifiers with set semantics keyed by
// (kind, normalized value). Once accepted, a value is never removed.
type Set struct {
	items map[setKey]Identifier
}

// NewSet returns an empty identifier set.
func NewSet() Set {
	return Set{items: make(map[setKey]Identifier)}
}

// Add inserts an identifier. The first raw form seen for a normalized value
// wins; later duplicates are ignored.
func (s Set) Add(id Identifier) {
	k := setKey{kind: id.Kind, normalized: id.Normalized}
	if _, ok := s.items[k]; ok {
		return
	}
	s.items[k] = id
}

// Has reports whether the set contains a normalized value under a kind.
func (s Set) Has(kind Kind, normalized string) bool {
	_, ok := s.items[setKey{kind: kind, normalized: normalized}]
	return ok
}

// HasKind reports whether any identifier of the given kind is present.
func (s Set) HasKind(kind Kind) bool {
	for k := range s.items {
		if k.kind == kind {
			return true
		}
	}
	return false
}

// Len returns the number of identifiers in the set.
func (s Set) Len() int {
	return len(s.items)
}

// Union returns a new set containing everything in s plus everything in
// other. Entries already in s keep their raw form.
func (s Set) Union(other Set) Set {
	out := NewSet()
	for _, id := range s.items {
		out.Add(id)
	}
	for _, id := range other.items {
		out.Add(id)
	}
	return out
}

// Contains reports whether every identifier in other is also in s.
func (s Set) Contains(other Set) bool {
	for k := range other.items {
		if _, ok := s.items[k]; !ok {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the set.
func (s Set) Clone() Set {
	out := NewSet()
	for _, id := range s.items {
		out.Add(id)
	}
	return out
}

// Sorted returns the identifiers ordered by kind then normalized value,
// giving a stable rendering for payloads and logs.
func (s Set) Sorted() []Identifier {
	out := make([]Identifier, 0, len(s.items))
	for _, id := range s.items {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Normalized < out[j].Normalized
	})
	return out
}

// MarshalJSON encodes the set as a sorted identifier array.
func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes an identifier array back into set form.
func (s *Set) UnmarshalJSON(data []byte) error {
	var ids []Identifier
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewSet()
	for _, id := range ids {
		s.Add(id)
	}
	return nil
}
