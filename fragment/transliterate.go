package fragment

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks strips Unicode combining marks after NFKD decomposition,
// the standard x/text idiom for ASCII-folding (e.g. "é" -> "e").
var stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Transliterate reduces s to 7-bit ASCII: diacritics are folded away
// via NFKD decomposition, and any remaining non-ASCII codepoint (one
// with no accent to strip, e.g. CJK or emoji) becomes "?". This is
// the force_unicode=false pass from spec.md §4.6.
func Transliterate(s string) string {
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}

	var sb strings.Builder
	sb.Grow(len(folded))
	for _, r := range folded {
		if r > unicode.MaxASCII {
			sb.WriteByte('?')
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
