package place

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const minKeywordLen = 2

// Keywords derives lower-cased, accent-folded search tokens from parts.
// Tokens shorter than two characters are dropped; order is first-seen.
func Keywords(parts ...string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, 8)
	for _, part := range parts {
		for _, tok := range strings.FieldsFunc(fold(part), isSeparator) {
			if len([]rune(tok)) < minKeywordLen {
				continue
			}
			if _, dup := seen[tok]; dup {
				continue
			}
			seen[tok] = struct{}{}
			out = append(out, tok)
		}
	}
	return out
}

func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
