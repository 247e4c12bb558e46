// Package examples serves sample clinical notes from a JSONL dataset.
package examples

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrNotFound is returned when the dataset file does not exist.
var ErrNotFound = errors.New("examples file not found")

// Example is one record of the augmented clinical notes dataset. Conversation
// is usually a transcript string but some records carry a structured object.
type Example struct {
	Idx          int             `json:"idx"`
	Note         string          `json:"note,omitempty"`
	FullNote     string          `json:"full_note"`
	Conversation json.RawMessage `json:"conversation,omitempty"`
	Summary      json.RawMessage `json:"summary,omitempty"`
}

// ConversationText returns the conversation when it is a plain string.
func (e Example) ConversationText() (string, bool) {
	if len(e.Conversation) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(e.Conversation, &s); err != nil {
		return "", false
	}
	return s, true
}

// Preview returns the first n runes of the note followed by "..." when cut.
func (e Example) Preview(n int) string {
	r := []rune(e.FullNote)
	if len(r) <= n {
		return e.FullNote
	}
	return string(r[:n]) + "..."
}

// Store reads examples from a JSONL file on each request so the dataset can
// be swapped without a restart.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// List returns up to limit examples from the start of the file.
func (s *Store) List(limit int) ([]Example, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open examples: %w", err)
	}
	defer f.Close()
	return Read(f, limit)
}

// Read decodes up to limit JSONL records from r. Blank lines are skipped;
// a limit <= 0 returns nothing.
func Read(r io.Reader, limit int) ([]Example, error) {
	out := []Example{}
	if limit <= 0 {
		return out, nil
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	line := 0
	for scanner.Scan() && len(out) < limit {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var ex Example
		if err := json.Unmarshal([]byte(text), &ex); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, ex)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read examples: %w", err)
	}
	return out, nil
}
