package quiz

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Quiz archives are Russian-language text files: blocks separated by two
// blank lines, points inside a block separated by one blank line, with
// fixed field markers.
const (
	questionMarker = "Вопрос "
	answerMarker   = "Ответ:"
)

// ParseQuizText extracts question/answer pairs from one decoded archive.
// A block contributes a pair once its answer point is seen; later points
// in the block are ignored. Duplicate question text overwrites the earlier
// pair, matching the corpus map semantics.
func ParseQuizText(text string) map[string]string {
	pairs := make(map[string]string)
	for _, block := range strings.Split(text, "\n\n\n") {
		var question string
		for _, point := range strings.Split(block, "\n\n") {
			if strings.HasPrefix(point, questionMarker) {
				question = point
			}
			if strings.HasPrefix(point, answerMarker) {
				if question != "" {
					pairs[question] = strings.TrimSpace(strings.TrimPrefix(point, answerMarker))
				}
				break
			}
		}
	}
	return pairs
}

// LoadQuizDir walks dir, decodes every file from KOI8-R and merges the
// parsed pairs into one mapping.
func LoadQuizDir(dir string) (map[string]string, error) {
	pairs := make(map[string]string)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		decoded, err := charmap.KOI8R.NewDecoder().Bytes(raw)
		if err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
		for q, a := range ParseQuizText(string(decoded)) {
			pairs[q] = a
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pairs, nil
}

// WriteCorpusFile writes the mapping as UTF-8 JSON for LoadCorpus.
func WriteCorpusFile(path string, pairs map[string]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(pairs); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
