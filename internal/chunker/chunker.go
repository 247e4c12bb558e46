package chunker

import (
	"strings"

	"github.com/dgallion1/notescribe/internal/doctree"
)

// Reserved for [CLS] and [SEP] in every model window.
const specialTokenBudget = 2

// Chunker splits a note into windows that fit the token classifier. Windows
// never overlap: an overlapping window would decode the same entity twice.
type Chunker struct {
	MaxTokens int
	Counter   Counter
}

// New returns a Chunker with maxTokens per window. A nil counter uses the
// word heuristic.
func New(maxTokens int, counter Counter) *Chunker {
	if maxTokens <= specialTokenBudget {
		maxTokens = 400
	}
	if counter == nil {
		counter = Heuristic
	}
	return &Chunker{MaxTokens: maxTokens, Counter: counter}
}

// ChunkTree walks the tree depth-first. Each section with text yields one or
// more chunks; sections are never merged so chunk boundaries follow headings.
func (c *Chunker) ChunkTree(tree *doctree.DocTree) []doctree.Chunk {
	var chunks []doctree.Chunk
	tree.Walk(func(n *doctree.DocNode, path []string) {
		text := strings.TrimSpace(n.Text)
		if text == "" {
			return
		}
		for _, part := range c.Split(text) {
			chunks = append(chunks, doctree.Chunk{
				Text:      part,
				Index:     len(chunks),
				Section:   copyPath(path),
				PageStart: n.Page,
				PageEnd:   n.Page,
				Tokens:    c.Counter.Count(part),
			})
		}
	})
	return chunks
}

// Split breaks text into windows of at most MaxTokens, preferring paragraph
// then sentence then word boundaries.
func (c *Chunker) Split(text string) []string {
	limit := c.MaxTokens - specialTokenBudget
	if c.Counter.Count(text) <= limit {
		return []string{text}
	}

	var out []string
	p := packer{limit: limit, count: c.Counter.Count, sep: "\n\n"}
	for _, para := range splitByParagraphs(text) {
		if c.Counter.Count(para) <= limit {
			out = p.add(out, para)
			continue
		}
		out = p.flush(out)
		out = append(out, c.splitParagraph(para, limit)...)
	}
	return p.flush(out)
}

func (c *Chunker) splitParagraph(para string, limit int) []string {
	var out []string
	p := packer{limit: limit, count: c.Counter.Count, sep: " "}
	for _, sent := range splitSentences(para) {
		if c.Counter.Count(sent) <= limit {
			out = p.add(out, sent)
			continue
		}
		out = p.flush(out)
		wp := packer{limit: limit, count: c.Counter.Count, sep: " "}
		for _, w := range strings.Fields(sent) {
			out = wp.add(out, w)
		}
		out = wp.flush(out)
	}
	return p.flush(out)
}

// packer greedily joins pieces with sep until the next piece would overflow.
type packer struct {
	limit int
	count func(string) int
	sep   string
	cur   strings.Builder
}

func (p *packer) add(out []string, piece string) []string {
	if p.cur.Len() > 0 && p.count(p.cur.String()+p.sep+piece) > p.limit {
		out = p.flush(out)
	}
	if p.cur.Len() > 0 {
		p.cur.WriteString(p.sep)
	}
	p.cur.WriteString(piece)
	return out
}

func (p *packer) flush(out []string) []string {
	if p.cur.Len() > 0 {
		out = append(out, p.cur.String())
		p.cur.Reset()
	}
	return out
}

// splitByParagraphs splits on blank lines.
func splitByParagraphs(text string) []string {
	var result []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}

// splitSentences splits after '.', '!' or '?' followed by whitespace.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && (text[i+1] == ' ' || text[i+1] == '\n') {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func copyPath(path []string) []string {
	if len(path) == 0 {
		return nil
	}
	return append([]string(nil), path...)
}
