package quiz

import "strings"

// QuestionWidth is the column width questions are wrapped to for display.
const QuestionWidth = 55

// NormalizeAnswer reduces a canonical corpus answer to its comparable
// form: everything after the first period is dropped (trailing explanation
// sentences), then everything after the first open parenthesis (alternate
// phrasings), then the remainder is trimmed and lower-cased. The order of
// the cuts matters and is relied on by the answer check.
func NormalizeAnswer(raw string) string {
	s, _, _ := strings.Cut(raw, ".")
	s, _, _ = strings.Cut(s, "(")
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeGuess prepares a user's free-text guess for comparison. Guesses
// are plain text, so only trimming and lower-casing apply.
func NormalizeGuess(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Fill word-wraps s to at most width columns, collapsing whitespace runs.
// Words longer than width are kept on their own line unbroken.
func Fill(s string, width int) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}
	var b strings.Builder
	lineLen := 0
	for i, w := range words {
		if i == 0 {
			b.WriteString(w)
			lineLen = len([]rune(w))
			continue
		}
		wl := len([]rune(w))
		if lineLen+1+wl > width {
			b.WriteByte('\n')
			b.WriteString(w)
			lineLen = wl
		} else {
			b.WriteByte(' ')
			b.WriteString(w)
			lineLen += 1 + wl
		}
	}
	return b.String()
}
