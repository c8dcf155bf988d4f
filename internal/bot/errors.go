package bot

import (
	"errors"
	"log"

	"quiz-bot/internal/quiz"
)

// errorReply turns an engine error into the user-facing reply. A solution
// attempt without an assigned question is a normal conversation turn, not
// a failure; anything else (store connectivity, empty corpus) is logged
// and answered with a retry prompt so the request fails in isolation.
func errorReply(err error) quiz.Reply {
	if errors.Is(err, quiz.ErrNoActiveQuestion) {
		return quiz.Reply{
			Text:             "You don't have a question yet. Press \"" + quiz.ButtonNewQuestion + "\" to get one.",
			SuggestedReplies: []string{quiz.ButtonNewQuestion},
		}
	}
	log.Printf("quiz engine error: %v", err)
	return quiz.Reply{Text: "Something went wrong, please try again."}
}
