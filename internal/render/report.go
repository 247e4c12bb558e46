package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/dgallion1/notescribe/internal/bio"
	"github.com/dgallion1/notescribe/internal/dialogue"
)

// Report is everything shown for one analysed note.
type Report struct {
	Title    string
	Segments []bio.Segment
	Summary  bio.Summary
	Turns    []dialogue.Turn
}

var mdEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", `*`, `\*`, `_`, `\_`,
	`[`, `\[`, `]`, `\]`, `<`, `\<`, `>`, `\>`,
	`#`, `\#`, `|`, `\|`, `~`, `\~`,
)

func escapeMarkdown(s string) string {
	return mdEscaper.Replace(s)
}

// Markdown renders the report as CommonMark.
func Markdown(r Report) string {
	var b strings.Builder

	title := r.Title
	if title == "" {
		title = "Clinical Note Analysis"
	}
	fmt.Fprintf(&b, "# %s\n\n", escapeMarkdown(title))

	b.WriteString("## Entities\n\n")
	if r.Summary.Count == 0 {
		b.WriteString("No entities found.\n\n")
	} else {
		fmt.Fprintf(&b, "%d entities found.\n\n", r.Summary.Count)
		b.WriteString("| Type | Mentions |\n|---|---|\n")
		for _, g := range r.Summary.Groups {
			texts := make([]string, len(g.Texts))
			for i, t := range g.Texts {
				texts[i] = escapeMarkdown(t)
			}
			fmt.Fprintf(&b, "| %s | %s |\n", escapeMarkdown(g.Label), strings.Join(texts, ", "))
		}
		b.WriteString("\n")
	}

	if len(r.Segments) > 0 {
		b.WriteString("## Annotated Text\n\n")
		for _, seg := range r.Segments {
			if !seg.IsSpan() {
				b.WriteString(escapeMarkdown(seg.Text))
				continue
			}
			if strings.TrimSpace(seg.Text) == "" {
				b.WriteString(seg.Text)
				continue
			}
			fmt.Fprintf(&b, "**%s** *(%s)*", escapeMarkdown(seg.Text), escapeMarkdown(bio.DisplayLabel(seg.Type)))
		}
		b.WriteString("\n\n")
	}

	if len(r.Turns) > 0 {
		b.WriteString("## Conversation\n\n")
		for _, t := range r.Turns {
			fmt.Fprintf(&b, "**%s:** %s\n\n", t.Role.Label(), escapeMarkdown(t.Text))
		}
	}

	return b.String()
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// HTML renders the report Markdown to HTML with goldmark.
func HTML(r Report) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(Markdown(r)), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}
