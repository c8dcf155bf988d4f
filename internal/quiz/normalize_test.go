package quiz

import (
	"strings"
	"testing"
)

func TestNormalizeAnswer(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Paris (capital).", "paris"},
		{"42", "42"},
		{"  Answer (alt) . extra", "answer"},
		{"Pushkin. The poet everyone names first.", "pushkin"},
		{"A (B (C", "a"},
		{"", ""},
		{"   ", ""},
	}
	for _, c := range cases {
		if got := NormalizeAnswer(c.in); got != c.want {
			t.Errorf("NormalizeAnswer(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeAnswer_PeriodCutRunsFirst(t *testing.T) {
	// The period cut happens before the parenthesis cut, so a paren after
	// the first period never matters.
	if got := NormalizeAnswer("Yes. (No)"); got != "yes" {
		t.Fatalf("got %q, want %q", got, "yes")
	}
}

func TestNormalizeGuess(t *testing.T) {
	if got := NormalizeGuess("  PARIS  "); got != "paris" {
		t.Fatalf("got %q, want %q", got, "paris")
	}
	// Guesses are not split: punctuation stays.
	if got := NormalizeGuess("Paris (capital)."); got != "paris (capital)." {
		t.Fatalf("got %q, want %q", got, "paris (capital).")
	}
}

func TestFill(t *testing.T) {
	if got := Fill("short question", 55); got != "short question" {
		t.Fatalf("got %q", got)
	}

	long := strings.Repeat("word ", 20)
	wrapped := Fill(long, 55)
	for i, line := range strings.Split(wrapped, "\n") {
		if n := len([]rune(line)); n > 55 {
			t.Fatalf("line %d exceeds width: %d columns", i, n)
		}
	}
	if strings.Join(strings.Fields(wrapped), " ") != strings.TrimSpace(long) {
		t.Fatal("wrapping changed the word sequence")
	}
}

func TestFill_CollapsesWhitespace(t *testing.T) {
	if got := Fill("a\n b\t\tc", 55); got != "a b c" {
		t.Fatalf("got %q", got)
	}
	if got := Fill("   ", 55); got != "" {
		t.Fatalf("got %q", got)
	}
}
