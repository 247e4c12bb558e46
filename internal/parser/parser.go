package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/dgallion1/notescribe/internal/doctree"
	"golang.org/x/text/unicode/norm"
)

// Parser converts an uploaded note into a DocTree.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.DocTree, error)
}

// Options tune parser selection.
type Options struct {
	FallbackPdftotext bool
}

// SupportedExtensions lists the upload formats accepted for analysis.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the parser for a filename's extension.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.FallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %q", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Normalize puts extracted text in NFC form and drops control characters
// other than newline and tab. PDF and DOCX extraction often yields
// decomposed accents and stray form feeds that split model tokens.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r == '\r' || r == '\f' || r == '\v' {
			return '\n'
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

func baseTitle(filename string) string {
	return strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
}

// sections accumulates body text under a stack of headings. Formats with
// heading levels (Markdown, HTML, DOCX) and the plain-text section detector
// all feed it.
type sections struct {
	root  *doctree.DocNode
	stack []level
	text  strings.Builder
}

type level struct {
	node  *doctree.DocNode
	depth int
}

func newSections() *sections {
	root := &doctree.DocNode{}
	return &sections{root: root, stack: []level{{node: root}}}
}

// heading closes the current body and opens a section at depth.
func (s *sections) heading(title string, depth int) {
	s.flush()
	n := &doctree.DocNode{Title: Normalize(strings.TrimSpace(title))}
	for len(s.stack) > 1 && s.stack[len(s.stack)-1].depth >= depth {
		s.stack = s.stack[:len(s.stack)-1]
	}
	parent := s.stack[len(s.stack)-1].node
	parent.Children = append(parent.Children, n)
	s.stack = append(s.stack, level{node: n, depth: depth})
}

// paragraph appends a block of body text to the open section.
func (s *sections) paragraph(t string) {
	t = strings.TrimSpace(t)
	if t == "" {
		return
	}
	if s.text.Len() > 0 {
		s.text.WriteString("\n\n")
	}
	s.text.WriteString(t)
}

func (s *sections) flush() {
	t := strings.TrimSpace(s.text.String())
	s.text.Reset()
	if t == "" {
		return
	}
	t = Normalize(t)
	top := s.stack[len(s.stack)-1].node
	if top.Text != "" {
		top.Text += "\n\n" + t
	} else {
		top.Text = t
	}
}

// tree finishes the document. Text that precedes the first heading becomes
// an untitled leading section.
func (s *sections) tree(title string) *doctree.DocTree {
	s.flush()
	t := &doctree.DocTree{Title: title}
	if s.root.Text != "" {
		t.Children = append(t.Children, &doctree.DocNode{Text: s.root.Text})
	}
	t.Children = append(t.Children, s.root.Children...)
	return t
}
