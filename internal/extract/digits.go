package extract

import "strings"

// digitZeros lists the zero rune of each decimal-digit block the folder
// understands. Every block is a contiguous run of ten code points.
var digitZeros = []rune{
	0x0660, // Arabic-Indic
	0x06F0, // Extended Arabic-Indic
	0x07C0, // NKo
	0x0966, // Devanagari
	0x09E6, // Bengali
	0x0A66, // Gurmukhi
	0x0AE6, // Gujarati
	0x0B66, // Oriya
	0x0BE6, // Tamil
	0x0C66, // Telugu
	0x0CE6, // Kannada
	0x0D66, // Malayalam
	0x0DE6, // Sinhala Lith
	0x0E50, // Thai
	0x0ED0, // Lao
	0x0F20, // Tibetan
	0x1040, // Myanmar
	0x17E0, // Khmer
	0x1810, // Mongolian
	0xFF10, // Fullwidth
}

// FoldDigits rewrites every known non-ASCII decimal digit to its ASCII
// equivalent, leaving all other runes untouched. Numeric patterns must only
// ever run over folded text so that cross-script digits are never missed.
func FoldDigits(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		b.WriteRune(foldDigit(r))
	}
	return b.String()
}

func foldDigit(r rune) rune {
	if r < 0x80 {
		return r
	}
	for _, zero := range digitZeros {
		if r >= zero && r <= zero+9 {
			return '0' + (r - zero)
		}
	}
	return r
}
