package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// NormalizeFunc validates a raw regex match and returns its canonical form.
// Validators are deterministic, total, and do no I/O. They are deliberately
// permissive: a plausible-but-unverifiable token is worth more to an analyst
// than a discarded one.
type NormalizeFunc func(raw string) (string, bool)

// Rule binds an identifier kind to its scan pattern, its normalizer, and an
// optional cross-suppression source: a digit value already accepted under
// SuppressedBy is dropped from this kind to avoid double counting.
type Rule struct {
	Kind         Kind
	Pattern      *regexp.Regexp
	Normalize    NormalizeFunc
	SuppressedBy Kind
}

// Registry is the table of validation rules, keyed by identifier kind.
// Adding a kind or a locale touches only this table, never the state machine.
type Registry struct {
	rules  []Rule
	region string
}

var (
	paymentHandleRe = regexp.MustCompile(`[0-9A-Za-z][0-9A-Za-z._-]{1,255}@[A-Za-z][A-Za-z0-9]{1,63}(?:\.[0-9A-Za-z.-]+)?`)
	bankAccountRe   = regexp.MustCompile(`\b[0-9]{9,18}\b`)
	ifscRe          = regexp.MustCompile(`\b[A-Za-z]{4}0[A-Za-z0-9]{6}\b`)
	abaRoutingRe    = regexp.MustCompile(`\b[0-9]{9}\b`)
	phoneRe         = regexp.MustCompile(`\+?[0-9][0-9 .()-]{6,18}[0-9]`)
	urlRe           = regexp.MustCompile(`(?:https?://|www\.)[^\s<>"']+`)
)

// knownHandleSuffixes is the allow-list of payment-handle providers. The
// normalizer keeps an open fallback: an unknown dot-free suffix is accepted
// as a plausible provider rather than rejected.
var knownHandleSuffixes = map[string]bool{
	"upi": true, "ybl": true, "ibl": true, "axl": true, "apl": true,
	"paytm": true, "oksbi": true, "okaxis": true, "okhdfcbank": true,
	"okicici": true, "sbi": true, "hdfcbank": true, "icici": true,
	"axisbank": true, "kotak": true, "yesbank": true, "freecharge": true,
	"airtel": true, "jio": true, "barodampay": true, "fbl": true,
	"idfcbank": true,
}

// NewRegistry builds the default rule table. defaultRegion is the ISO country
// code assumed for phone numbers written without a country prefix.
func NewRegistry(defaultRegion string) *Registry {
	r := &Registry{region: defaultRegion}
	r.rules = []Rule{
		{Kind: KindPaymentHandle, Pattern: paymentHandleRe, Normalize: normalizePaymentHandle},
		{Kind: KindRoutingCode, Pattern: ifscRe, Normalize: normalizeIFSC},
		{Kind: KindRoutingCode, Pattern: abaRoutingRe, Normalize: normalizeABARouting},
		{Kind: KindPhone, Pattern: phoneRe, Normalize: r.normalizePhone},
		// A digit run that already validated as a phone number is a phone
		// number, not a short bank account.
		{Kind: KindBankAccount, Pattern: bankAccountRe, Normalize: normalizeBankAccount, SuppressedBy: KindPhone},
		{Kind: KindURL, Pattern: urlRe, Normalize: normalizeURL},
	}
	return r
}

// Rules returns the rule table in scan order.
func (r *Registry) Rules() []Rule {
	return r.rules
}

// Validate tries every rule registered for a kind and returns the first
// accepted normalization.
func (r *Registry) Validate(kind Kind, raw string) (string, bool) {
	for _, rule := range r.rules {
		if rule.Kind != kind {
			continue
		}
		if normalized, ok := rule.Normalize(raw); ok {
			return normalized, true
		}
	}
	return "", false
}

func normalizePaymentHandle(raw string) (string, bool) {
	handle := strings.ToLower(strings.TrimSpace(raw))
	at := strings.LastIndexByte(handle, '@')
	if at <= 0 || at == len(handle)-1 {
		return "", false
	}
	suffix := handle[at+1:]
	// A dotted suffix is a domain, meaning an email address or URL fragment,
	// not a payment handle.
	if strings.ContainsRune(suffix, '.') {
		return "", false
	}
	if knownHandleSuffixes[suffix] {
		return handle, true
	}
	// Open fallback for plausible-but-unknown providers.
	if len(suffix) >= 2 && len(suffix) <= 16 {
		return handle, true
	}
	return "", false
}

func normalizeBankAccount(raw string) (string, bool) {
	digits := digitsOnly(raw)
	if len(digits) < 9 || len(digits) > 18 {
		return "", false
	}
	// Sequential/test-looking accounts are kept on purpose: scammers hand
	// those out, and they are still actionable leads.
	return digits, true
}

func normalizeIFSC(raw string) (string, bool) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if len(code) != 11 || code[4] != '0' {
		return "", false
	}
	return code, true
}

// normalizeABARouting accepts 9-digit US routing numbers that pass the ABA
// checksum. Anything failing the checksum is left for the bank-account rule.
func normalizeABARouting(raw string) (string, bool) {
	digits := digitsOnly(raw)
	if len(digits) != 9 || digits == "000000000" {
		return "", false
	}
	sum := 0
	for i := 0; i < 9; i += 3 {
		sum += 3 * int(digits[i]-'0')
		sum += 7 * int(digits[i+1]-'0')
		sum += 1 * int(digits[i+2]-'0')
	}
	if sum%10 != 0 {
		return "", false
	}
	return digits, true
}

func (r *Registry) normalizePhone(raw string) (string, bool) {
	candidate := strings.TrimSpace(raw)
	if n := len(digitsOnly(candidate)); n < 8 || n > 15 {
		return "", false
	}
	num, err := phonenumbers.Parse(candidate, r.region)
	if err != nil {
		return "", false
	}
	if !phonenumbers.IsValidNumber(num) && !phonenumbers.IsPossibleNumber(num) {
		return "", false
	}
	return phonenumbers.Format(num, phonenumbers.E164), true
}

func normalizeURL(raw string) (string, bool) {
	candidate := strings.TrimRight(raw, ".,;:!?)]}'\"")
	if strings.HasPrefix(strings.ToLower(candidate), "www.") {
		candidate = "http://" + candidate
	}
	u, err := url.Parse(candidate)
	if err != nil || u.Host == "" {
		return "", false
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	return u.String(), true
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
