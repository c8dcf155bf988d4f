package quiz

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"quiz-bot/pkg/store"
)

func testEngine(t *testing.T, pairs map[string]string) (*Engine, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	e, err := NewEngine(NewCorpus(pairs), st)
	if err != nil {
		t.Fatalf("NewEngine error: %v", err)
	}
	return e, st
}

// withRandQueue makes successive corpus picks return the given indices.
func withRandQueue(t *testing.T, indices ...int) {
	t.Helper()
	i := 0
	withRandIntn(t, func(n int) int {
		if i >= len(indices) {
			t.Fatalf("unexpected extra corpus pick (already served %d)", i)
		}
		idx := indices[i]
		i++
		return idx
	})
}

func handleOne(t *testing.T, e *Engine, ev Event) (Reply, State) {
	t.Helper()
	replies, state, err := e.Handle(context.Background(), ev)
	if err != nil {
		t.Fatalf("Handle error: %v", err)
	}
	if len(replies) != 1 {
		t.Fatalf("expected 1 reply, got %d", len(replies))
	}
	return replies[0], state
}

func TestHandleStart(t *testing.T) {
	e, st := testEngine(t, map[string]string{"Q": "A"})

	r, state := handleOne(t, e, Event{UserID: "1", Intent: IntentStart})
	if !strings.Contains(r.Text, "quiz") {
		t.Fatalf("unexpected greeting: %q", r.Text)
	}
	if len(r.SuggestedReplies) != 3 || r.SuggestedReplies[0] != ButtonNewQuestion {
		t.Fatalf("unexpected keyboard: %v", r.SuggestedReplies)
	}
	if state != StateIdle {
		t.Fatalf("state = %v, want StateIdle", state)
	}

	// Greeting creates no session entry.
	if _, ok, _ := st.Get(context.Background(), "1-answer"); ok {
		t.Fatal("start must not write session state")
	}
}

func TestNewQuestionStoresPair(t *testing.T) {
	e, st := testEngine(t, map[string]string{"Q1": "A1", "Q2": "A2"})
	withRandQueue(t, 0)

	r, state := handleOne(t, e, Event{UserID: "7", Intent: IntentNewQuestion})
	if r.Text != "Question:\nQ1" {
		t.Fatalf("unexpected reply: %q", r.Text)
	}
	if state != StateAwaitingAnswer {
		t.Fatalf("state = %v, want StateAwaitingAnswer", state)
	}

	ctx := context.Background()
	if q, ok, _ := st.Get(ctx, "7-question"); !ok || q != "Q1" {
		t.Fatalf("stored question = %q ok=%v", q, ok)
	}
	if a, ok, _ := st.Get(ctx, "7-answer"); !ok || a != "A1" {
		t.Fatalf("stored answer = %q ok=%v", a, ok)
	}
}

func TestNewQuestionWrapsLongQuestions(t *testing.T) {
	long := strings.Repeat("why ", 30)
	e, _ := testEngine(t, map[string]string{long: "because"})
	withRandQueue(t, 0)

	r, _ := handleOne(t, e, Event{UserID: "1", Intent: IntentNewQuestion})
	for _, line := range strings.Split(strings.TrimPrefix(r.Text, "Question:\n"), "\n") {
		if len([]rune(line)) > QuestionWidth {
			t.Fatalf("question line exceeds %d columns: %q", QuestionWidth, line)
		}
	}
}

func TestRoundTripEveryCorpusEntry(t *testing.T) {
	pairs := map[string]string{
		"Q capital": "Paris (capital).",
		"Q number":  "42",
		"Q poet":    "Pushkin. Who else.",
	}
	e, _ := testEngine(t, pairs)

	questions := make([]string, 0, len(pairs))
	for q := range pairs {
		questions = append(questions, q)
	}
	sort.Strings(questions)

	for i, q := range questions {
		withRandQueue(t, i)
		handleOne(t, e, Event{UserID: "u", Intent: IntentNewQuestion})

		guess := NormalizeAnswer(pairs[q])
		r, state := handleOne(t, e, Event{UserID: "u", Intent: IntentFreeText, Text: guess})
		if !strings.HasPrefix(r.Text, "Correct!") {
			t.Fatalf("entry %q: guess %q judged wrong: %q", q, guess, r.Text)
		}
		if state != StateAwaitingAnswer {
			t.Fatalf("state = %v, want StateAwaitingAnswer", state)
		}
	}
}

func TestAnswerCheckIgnoresCaseAndWhitespace(t *testing.T) {
	e, _ := testEngine(t, map[string]string{"Q": "Paris (capital)."})
	withRandQueue(t, 0)
	handleOne(t, e, Event{UserID: "u", Intent: IntentNewQuestion})

	r, _ := handleOne(t, e, Event{UserID: "u", Intent: IntentFreeText, Text: "  PARIS  "})
	if !strings.HasPrefix(r.Text, "Correct!") {
		t.Fatalf("expected correct, got %q", r.Text)
	}
	if len(r.SuggestedReplies) != 2 || r.SuggestedReplies[0] != ButtonNewQuestion {
		t.Fatalf("unexpected keyboard after correct answer: %v", r.SuggestedReplies)
	}
}

func TestWrongAnswerKeepsQuestionPending(t *testing.T) {
	e, _ := testEngine(t, map[string]string{"Q": "Paris"})
	withRandQueue(t, 0)
	handleOne(t, e, Event{UserID: "u", Intent: IntentNewQuestion})

	r, state := handleOne(t, e, Event{UserID: "u", Intent: IntentFreeText, Text: "London"})
	if !strings.HasPrefix(r.Text, "Wrong") {
		t.Fatalf("expected wrong, got %q", r.Text)
	}
	if state != StateAwaitingAnswer {
		t.Fatalf("state = %v, want StateAwaitingAnswer", state)
	}
	if len(r.SuggestedReplies) != 2 || r.SuggestedReplies[0] != ButtonGiveUp {
		t.Fatalf("unexpected keyboard after wrong answer: %v", r.SuggestedReplies)
	}

	// The same question stays pending: a second attempt is judged against
	// the same stored answer.
	r, _ = handleOne(t, e, Event{UserID: "u", Intent: IntentFreeText, Text: "Berlin"})
	if !strings.HasPrefix(r.Text, "Wrong") {
		t.Fatalf("expected wrong, got %q", r.Text)
	}
	r, _ = handleOne(t, e, Event{UserID: "u", Intent: IntentFreeText, Text: "paris"})
	if !strings.HasPrefix(r.Text, "Correct!") {
		t.Fatalf("expected correct, got %q", r.Text)
	}
}

func TestGiveUpRevealsAndReassigns(t *testing.T) {
	e, st := testEngine(t, map[string]string{"Q1": "A1 (first).", "Q2": "A2"})
	withRandQueue(t, 0, 1)
	handleOne(t, e, Event{UserID: "u", Intent: IntentNewQuestion})

	replies, state, err := e.Handle(context.Background(), Event{UserID: "u", Intent: IntentGiveUp})
	if err != nil {
		t.Fatalf("Handle error: %v", err)
	}
	if len(replies) != 2 {
		t.Fatalf("expected reveal + new question, got %d replies", len(replies))
	}
	// The reveal shows the raw stored answer, not the normalized form.
	if replies[0].Text != "The right answer:\nA1 (first)." {
		t.Fatalf("unexpected reveal: %q", replies[0].Text)
	}
	if replies[1].Text != "Question:\nQ2" {
		t.Fatalf("unexpected follow-up question: %q", replies[1].Text)
	}
	if state != StateAwaitingAnswer {
		t.Fatalf("state = %v, want StateAwaitingAnswer", state)
	}

	if a, ok, _ := st.Get(context.Background(), "u-answer"); !ok || a != "A2" {
		t.Fatalf("stored answer after give-up = %q ok=%v", a, ok)
	}

	// Old answer no longer matches, new one does.
	r, _ := handleOne(t, e, Event{UserID: "u", Intent: IntentFreeText, Text: "a1"})
	if !strings.HasPrefix(r.Text, "Wrong") {
		t.Fatalf("stale answer accepted: %q", r.Text)
	}
	r, _ = handleOne(t, e, Event{UserID: "u", Intent: IntentFreeText, Text: "a2"})
	if !strings.HasPrefix(r.Text, "Correct!") {
		t.Fatalf("new answer rejected: %q", r.Text)
	}
}

func TestNoActiveQuestion(t *testing.T) {
	e, _ := testEngine(t, map[string]string{"Q": "A"})

	_, _, err := e.Handle(context.Background(), Event{UserID: "u", Intent: IntentFreeText, Text: "guess"})
	if !errors.Is(err, ErrNoActiveQuestion) {
		t.Fatalf("err = %v, want ErrNoActiveQuestion", err)
	}

	_, _, err = e.Handle(context.Background(), Event{UserID: "u", Intent: IntentGiveUp})
	if !errors.Is(err, ErrNoActiveQuestion) {
		t.Fatalf("err = %v, want ErrNoActiveQuestion", err)
	}
}

func TestNewEngineRejectsEmptyCorpus(t *testing.T) {
	_, err := NewEngine(NewCorpus(nil), store.NewMemoryStore())
	if !errors.Is(err, ErrEmptyCorpus) {
		t.Fatalf("err = %v, want ErrEmptyCorpus", err)
	}
}

func TestUsersAreIsolated(t *testing.T) {
	e, st := testEngine(t, map[string]string{"Q1": "A1", "Q2": "A2"})

	withRandQueue(t, 0, 1)
	handleOne(t, e, Event{UserID: "u1", Intent: IntentNewQuestion})
	handleOne(t, e, Event{UserID: "u2", Intent: IntentNewQuestion})

	ctx := context.Background()
	if a, _, _ := st.Get(ctx, "u1-answer"); a != "A1" {
		t.Fatalf("u1 answer = %q", a)
	}
	if a, _, _ := st.Get(ctx, "u2-answer"); a != "A2" {
		t.Fatalf("u2 answer = %q", a)
	}

	// u2's correct answer must not satisfy u1's question.
	r, _ := handleOne(t, e, Event{UserID: "u1", Intent: IntentFreeText, Text: "a2"})
	if !strings.HasPrefix(r.Text, "Wrong") {
		t.Fatalf("cross-user answer accepted: %q", r.Text)
	}
	r, _ = handleOne(t, e, Event{UserID: "u2", Intent: IntentFreeText, Text: "a2"})
	if !strings.HasPrefix(r.Text, "Correct!") {
		t.Fatalf("u2 answer rejected: %q", r.Text)
	}
}

type failingStore struct {
	err error
}

func (f *failingStore) Set(ctx context.Context, key, value string) error { return f.err }
func (f *failingStore) Get(ctx context.Context, key string) (string, bool, error) {
	return "", false, f.err
}

func TestStoreFailurePropagates(t *testing.T) {
	boom := errors.New("connection refused")
	e, err := NewEngine(NewCorpus(map[string]string{"Q": "A"}), &failingStore{err: boom})
	if err != nil {
		t.Fatalf("NewEngine error: %v", err)
	}
	withRandQueue(t, 0)

	_, _, err = e.Handle(context.Background(), Event{UserID: "u", Intent: IntentNewQuestion})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped store error", err)
	}

	_, _, err = e.Handle(context.Background(), Event{UserID: "u", Intent: IntentFreeText, Text: "x"})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped store error", err)
	}
}
