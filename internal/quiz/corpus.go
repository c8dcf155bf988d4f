package quiz

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"sort"
)

var randIntn = rand.Intn

// Corpus is the immutable set of question/answer pairs available for a
// session. It is built once at startup and never mutated afterwards.
type Corpus struct {
	pairs     map[string]string
	questions []string
}

// NewCorpus builds a Corpus from an already-parsed question -> answer
// mapping. Duplicate questions have collapsed upstream (map semantics).
func NewCorpus(pairs map[string]string) *Corpus {
	questions := make([]string, 0, len(pairs))
	for q := range pairs {
		questions = append(questions, q)
	}
	// stable order so a seeded pick is reproducible
	sort.Strings(questions)
	copied := make(map[string]string, len(pairs))
	for q, a := range pairs {
		copied[q] = a
	}
	return &Corpus{pairs: copied, questions: questions}
}

// LoadCorpus reads the question-answer JSON file produced by quiz-parse.
func LoadCorpus(path string) (*Corpus, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	var pairs map[string]string
	if err := json.Unmarshal(b, &pairs); err != nil {
		return nil, fmt.Errorf("parse corpus: %w", err)
	}
	return NewCorpus(pairs), nil
}

func (c *Corpus) Len() int {
	return len(c.questions)
}

// Pick selects one question/answer pair uniformly at random.
func (c *Corpus) Pick() (question, answer string, err error) {
	if len(c.questions) == 0 {
		return "", "", ErrEmptyCorpus
	}
	q := c.questions[randIntn(len(c.questions))]
	return q, c.pairs[q], nil
}
