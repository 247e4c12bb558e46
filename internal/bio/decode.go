package bio

import (
	"errors"
	"fmt"
	"strings"
)

// ContinuationPrefix marks a WordPiece fragment that attaches to the
// previous token without a space.
const ContinuationPrefix = "##"

// SpecialTokens are tokenizer markers that carry no text.
var SpecialTokens = []string{"[CLS]", "[SEP]", "[PAD]"}

// ErrMalformedInput is matched by MalformedInputError via errors.Is.
var ErrMalformedInput = errors.New("malformed input")

// MalformedInputError reports token and tag sequences of different length.
type MalformedInputError struct {
	Tokens int
	Tags   int
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input: %d tokens but %d tags", e.Tokens, e.Tags)
}

func (e *MalformedInputError) Is(target error) bool {
	return target == ErrMalformedInput
}

// EntitySpan is one decoded entity occurrence.
type EntitySpan struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// SegmentKind distinguishes literal text from entity spans.
type SegmentKind string

const (
	SegmentLiteral SegmentKind = "literal"
	SegmentSpan    SegmentKind = "span"
)

// Segment is a piece of the rendered token stream. Type is set only for spans.
type Segment struct {
	Kind SegmentKind `json:"kind"`
	Text string      `json:"text"`
	Type string      `json:"type,omitempty"`
}

// IsSpan reports whether the segment is a highlighted entity.
func (s Segment) IsSpan() bool {
	return s.Kind == SegmentSpan
}

// Span returns the entity carried by a span segment.
func (s Segment) Span() EntitySpan {
	return EntitySpan{Type: s.Type, Text: s.Text}
}

// Result is the output of a decode pass. Segments interleave literal text and
// spans in token order; Spans holds the spans alone in the same order.
type Result struct {
	Segments []Segment    `json:"segments"`
	Spans    []EntitySpan `json:"spans"`
}

// Decoder reconstructs entity spans from WordPiece tokens and BIO tags.
// A Decoder holds no per-call state and is safe for concurrent use.
type Decoder struct {
	prefix  string
	special map[string]bool
}

// NewDecoder returns a decoder for BERT-style WordPiece output.
func NewDecoder() *Decoder {
	return NewDecoderWith(ContinuationPrefix, SpecialTokens)
}

// NewDecoderWith returns a decoder with a custom continuation prefix and
// special-token set.
func NewDecoderWith(prefix string, special []string) *Decoder {
	d := &Decoder{
		prefix:  prefix,
		special: make(map[string]bool, len(special)),
	}
	for _, s := range special {
		d.special[s] = true
	}
	return d
}

var defaultDecoder = NewDecoder()

// Decode runs the default decoder.
func Decode(tokens, tags []string) (Result, error) {
	return defaultDecoder.Decode(tokens, tags)
}

// IsSpecial reports whether token is a special marker.
func (d *Decoder) IsSpecial(token string) bool {
	return d.special[token]
}

// piece strips the continuation prefix and reports whether the token
// continues the previous word.
func (d *Decoder) piece(token string) (string, bool) {
	if d.prefix != "" && strings.HasPrefix(token, d.prefix) {
		return token[len(d.prefix):], true
	}
	return token, false
}

// Decode walks tokens and tags once, left to right. The two slices must have
// the same length.
func (d *Decoder) Decode(tokens, tags []string) (Result, error) {
	if len(tokens) != len(tags) {
		return Result{}, &MalformedInputError{Tokens: len(tokens), Tags: len(tags)}
	}

	st := decodeState{}
	for i, token := range tokens {
		if d.IsSpecial(token) {
			continue
		}
		text, cont := d.piece(token)
		tag := ParseTag(tags[i])

		switch tag.Prefix {
		case PrefixOutside:
			st.flush()
			st.literal(st.sep(cont) + text)
		case PrefixInside:
			if st.open && st.typ == tag.Type {
				st.extend(st.sep(cont) + text)
				continue
			}
			// Orphan or mismatched I- starts a span like B- does.
			fallthrough
		case PrefixBegin:
			st.flush()
			if sep := st.sep(cont); sep != "" {
				st.literal(sep)
			}
			st.begin(tag.Type, text)
		}
	}
	st.flush()

	return Result{Segments: st.segments, Spans: st.spans}, nil
}

type decodeState struct {
	segments []Segment
	spans    []EntitySpan

	cur     strings.Builder
	typ     string
	open    bool
	emitted bool
}

// sep is the separator to place before a piece: a space for word-start
// tokens once any text has been produced.
func (s *decodeState) sep(cont bool) string {
	if cont || !s.emitted {
		return ""
	}
	return " "
}

func (s *decodeState) literal(text string) {
	if text == "" {
		return
	}
	s.emitted = true
	if n := len(s.segments); n > 0 && s.segments[n-1].Kind == SegmentLiteral {
		s.segments[n-1].Text += text
		return
	}
	s.segments = append(s.segments, Segment{Kind: SegmentLiteral, Text: text})
}

func (s *decodeState) begin(typ, text string) {
	s.open = true
	s.typ = typ
	s.cur.Reset()
	s.extend(text)
}

func (s *decodeState) extend(text string) {
	s.cur.WriteString(text)
	if text != "" {
		s.emitted = true
	}
}

func (s *decodeState) flush() {
	if !s.open {
		return
	}
	span := EntitySpan{Type: Canonical(s.typ), Text: s.cur.String()}
	s.spans = append(s.spans, span)
	s.segments = append(s.segments, Segment{Kind: SegmentSpan, Text: span.Text, Type: span.Type})
	s.open = false
	s.typ = ""
	s.cur.Reset()
}

// PlainText renders the token stream as text, dropping special tokens and
// joining continuation fragments without spaces.
func (d *Decoder) PlainText(tokens []string) string {
	var b strings.Builder
	for _, token := range tokens {
		if d.IsSpecial(token) {
			continue
		}
		text, cont := d.piece(token)
		if !cont && b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(text)
	}
	return b.String()
}

// PlainText runs the default decoder's PlainText.
func PlainText(tokens []string) string {
	return defaultDecoder.PlainText(tokens)
}

// Join concatenates segment texts in order.
func Join(segments []Segment) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(s.Text)
	}
	return b.String()
}
