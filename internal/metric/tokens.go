package metric

import (
	"strings"
	"unicode"
)

// tokenize lower-cases name and splits it into word tokens at separators
// and camelCase boundaries. A percent sign is kept as its own token.
//
//	"Units Sold"  -> [units sold]
//	"UnitPrice"   -> [unit price]
//	"margin_%"    -> [margin %]
func tokenize(name string) []string {
	var (
		tokens []string
		cur    strings.Builder
		prev   rune
	)
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range name {
		switch {
		case r == '%':
			flush()
			tokens = append(tokens, "%")
		case unicode.IsUpper(r):
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				flush()
			}
			cur.WriteRune(unicode.ToLower(r))
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			cur.WriteRune(r)
		default:
			flush()
		}
		prev = r
	}
	flush()
	return tokens
}

// containsRun reports whether run appears as consecutive tokens.
func containsRun(tokens, run []string) bool {
	if len(run) == 0 || len(run) > len(tokens) {
		return false
	}
outer:
	for i := 0; i+len(run) <= len(tokens); i++ {
		for j, w := range run {
			if !tokenMatches(tokens[i+j], w) {
				continue outer
			}
		}
		return true
	}
	return false
}

// tokenMatches accepts a simple plural of the keyword.
func tokenMatches(token, keyword string) bool {
	return token == keyword || token == keyword+"s"
}
