package index

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases s and strips combining marks ("Rwandé" -> "rwande").
func Fold(s string) string {
	// transform.Chain keeps state, so a fresh chain is built per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// Tokenize splits text on whitespace, folds each token and trims leading and
// trailing punctuation. Tokens that become empty are dropped.
func Tokenize(text string) []string {
	fields := strings.Fields(Fold(text))
	out := fields[:0]
	for _, f := range fields {
		f = strings.TrimFunc(f, func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r)
		})
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Prefixes returns every rune prefix of token up to maxRunes, plus the full
// token when it is longer.
func Prefixes(token string, maxRunes int) []string {
	if token == "" {
		return nil
	}
	var out []string
	k := 0
	for pos := range token {
		if maxRunes > 0 && k > maxRunes {
			break
		}
		if k > 0 {
			out = append(out, token[:pos])
		}
		k++
	}
	return append(out, token)
}

// truncate cuts token to at most maxRunes runes.
func truncate(token string, maxRunes int) string {
	if maxRunes <= 0 {
		return token
	}
	i := 0
	for pos := range token {
		if i == maxRunes {
			return token[:pos]
		}
		i++
	}
	return token
}
