package chunker

import (
	"fmt"
	"strings"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

// Counter reports how many model tokens a text occupies.
type Counter interface {
	Count(text string) int
}

// CounterFunc adapts a function to Counter.
type CounterFunc func(text string) int

func (f CounterFunc) Count(text string) int { return f(text) }

// Heuristic counts tokens with EstimateTokens.
var Heuristic Counter = CounterFunc(EstimateTokens)

// EstimateTokens gives a rough WordPiece count: ~1.33 tokens per word.
// Clinical vocabulary splits into more pieces than general English, so the
// chunk budget leaves headroom below the model limit.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	words := len(strings.Fields(text))
	tokens := int(float64(words) * 1.33)
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}

// WordPiece counts tokens with the model's own tokenizer.
type WordPiece struct {
	tk *tokenizer.Tokenizer
}

// LoadTokenizer reads a HuggingFace tokenizer.json.
func LoadTokenizer(path string) (*WordPiece, error) {
	tk, err := pretrained.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer %s: %w", path, err)
	}
	return &WordPiece{tk: tk}, nil
}

// Count returns the number of pieces without [CLS]/[SEP]. It falls back to
// the heuristic if encoding fails.
func (w *WordPiece) Count(text string) int {
	if text == "" {
		return 0
	}
	en, err := w.tk.EncodeSingle(text, false)
	if err != nil {
		return EstimateTokens(text)
	}
	return len(en.Ids)
}
