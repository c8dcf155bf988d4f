package quiz

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"quiz-bot/pkg/store"
)

// Intent classifies an inbound chat event. Adapters map platform messages
// to intents; the engine never sees platform types.
type Intent int

const (
	IntentStart Intent = iota
	IntentNewQuestion
	IntentGiveUp
	IntentFreeText
)

// State is the per-user conversation state after handling an event.
type State int

const (
	StateIdle State = iota
	StateAwaitingAnswer
)

// Event is one inbound message, already translated by a channel adapter.
// UserID must be namespaced per channel when channels share one store.
type Event struct {
	UserID string
	Text   string
	Intent Intent
}

// Reply is one outbound message plus the quick-reply buttons the platform
// should offer. SuggestedReplies is a presentation hint only.
type Reply struct {
	Text             string
	SuggestedReplies []string
}

// Button labels shared between the engine's keyboards and the adapters'
// intent mapping.
const (
	ButtonNewQuestion = "New question"
	ButtonGiveUp      = "Give up"
	ButtonMyScore     = "My score"
)

var (
	ErrEmptyCorpus      = errors.New("quiz corpus is empty")
	ErrNoActiveQuestion = errors.New("no active question for this user")
)

var (
	startKeyboard     = []string{ButtonNewQuestion, ButtonGiveUp, ButtonMyScore}
	correctKeyboard   = []string{ButtonNewQuestion, ButtonMyScore}
	incorrectKeyboard = []string{ButtonGiveUp, ButtonMyScore}
)

// Engine is the per-user quiz state machine. All session state lives in
// the injected Store under "{user}-question" / "{user}-answer" keys, so a
// restart loses nothing. The engine keeps no corpus or session globals.
type Engine struct {
	corpus *Corpus
	store  store.Store

	mu    sync.Mutex
	users map[string]*sync.Mutex
}

// NewEngine rejects an empty corpus up front so that a misconfigured
// deployment fails at startup rather than on the first question request.
func NewEngine(corpus *Corpus, st store.Store) (*Engine, error) {
	if corpus.Len() == 0 {
		return nil, ErrEmptyCorpus
	}
	return &Engine{corpus: corpus, store: st, users: make(map[string]*sync.Mutex)}, nil
}

// userLock serializes events for one user. Transports retry deliveries, so
// two events for the same user can arrive concurrently; without the lock a
// race between a new question and a solution attempt could check a guess
// against a mismatched answer. Distinct users never contend.
func (e *Engine) userLock(userID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.users[userID]
	if !ok {
		l = &sync.Mutex{}
		e.users[userID] = l
	}
	return l
}

func questionKey(userID string) string { return userID + "-question" }
func answerKey(userID string) string   { return userID + "-answer" }

// Handle maps one inbound event to one or two outbound replies and the
// resulting conversation state. Errors are returned explicitly and only
// affect the current request; adapters decide the user-facing wording.
func (e *Engine) Handle(ctx context.Context, ev Event) ([]Reply, State, error) {
	l := e.userLock(ev.UserID)
	l.Lock()
	defer l.Unlock()

	switch ev.Intent {
	case IntentStart:
		return []Reply{{
			Text:             "Hi! I'm a quiz bot! Press \"" + ButtonNewQuestion + "\" when you're ready.",
			SuggestedReplies: startKeyboard,
		}}, StateIdle, nil
	case IntentNewQuestion:
		r, err := e.newQuestion(ctx, ev.UserID)
		if err != nil {
			return nil, StateIdle, err
		}
		return []Reply{r}, StateAwaitingAnswer, nil
	case IntentGiveUp:
		return e.giveUp(ctx, ev.UserID)
	default:
		r, err := e.checkAnswer(ctx, ev.UserID, ev.Text)
		if err != nil {
			return nil, StateIdle, err
		}
		return []Reply{r}, StateAwaitingAnswer, nil
	}
}

func (e *Engine) newQuestion(ctx context.Context, userID string) (Reply, error) {
	question, answer, err := e.corpus.Pick()
	if err != nil {
		return Reply{}, err
	}
	// The raw answer is stored; wrapping is display-only.
	if err := e.store.Set(ctx, questionKey(userID), question); err != nil {
		return Reply{}, fmt.Errorf("session store: %w", err)
	}
	if err := e.store.Set(ctx, answerKey(userID), answer); err != nil {
		return Reply{}, fmt.Errorf("session store: %w", err)
	}
	return Reply{
		Text:             "Question:\n" + Fill(question, QuestionWidth),
		SuggestedReplies: startKeyboard,
	}, nil
}

func (e *Engine) checkAnswer(ctx context.Context, userID, guess string) (Reply, error) {
	stored, ok, err := e.store.Get(ctx, answerKey(userID))
	if err != nil {
		return Reply{}, fmt.Errorf("session store: %w", err)
	}
	if !ok {
		return Reply{}, ErrNoActiveQuestion
	}
	if NormalizeGuess(guess) == NormalizeAnswer(stored) {
		return Reply{
			Text:             "Correct! Congratulations! Press \"" + ButtonNewQuestion + "\" for the next one.",
			SuggestedReplies: correctKeyboard,
		}, nil
	}
	return Reply{
		Text:             "Wrong… Try again?",
		SuggestedReplies: incorrectKeyboard,
	}, nil
}

func (e *Engine) giveUp(ctx context.Context, userID string) ([]Reply, State, error) {
	stored, ok, err := e.store.Get(ctx, answerKey(userID))
	if err != nil {
		return nil, StateIdle, fmt.Errorf("session store: %w", err)
	}
	if !ok {
		return nil, StateIdle, ErrNoActiveQuestion
	}
	reveal := Reply{Text: "The right answer:\n" + stored}
	next, err := e.newQuestion(ctx, userID)
	if err != nil {
		return nil, StateIdle, err
	}
	return []Reply{reveal, next}, StateAwaitingAnswer, nil
}
