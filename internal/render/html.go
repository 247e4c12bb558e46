// Package render turns decoded entities and dialogue turns into HTML and
// Markdown for display.
package render

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dgallion1/notescribe/internal/bio"
	"github.com/dgallion1/notescribe/internal/dialogue"
)

func element(a atom.Atom, class string, attrs ...html.Attribute) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	if class != "" {
		n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: class})
	}
	n.Attr = append(n.Attr, attrs...)
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func renderNode(n *html.Node) (string, error) {
	var sb strings.Builder
	if err := html.Render(&sb, n); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// EntityClass is the CSS class carried by a highlighted span of typ.
func EntityClass(typ string) string {
	return "entity-" + bio.Canonical(typ)
}

// TaggedHTML renders decoded segments as a block of escaped text with each
// entity wrapped in a span carrying its type class and display label.
func TaggedHTML(segments []bio.Segment) (string, error) {
	root := element(atom.Div, "tagged-text")
	for _, seg := range segments {
		if !seg.IsSpan() {
			root.AppendChild(text(seg.Text))
			continue
		}
		span := element(atom.Span, "entity-tag "+EntityClass(seg.Type),
			html.Attribute{Key: "title", Val: bio.DisplayLabel(seg.Type)})
		span.AppendChild(text(seg.Text))
		root.AppendChild(span)
	}
	return renderNode(root)
}

// DialogueHTML renders speaker turns. It returns an empty string when there
// are no turns, in which case the dialogue view should be hidden.
func DialogueHTML(turns []dialogue.Turn) (string, error) {
	if len(turns) == 0 {
		return "", nil
	}
	root := element(atom.Div, "conversation")
	for _, t := range turns {
		msg := element(atom.Div, "conversation-message")
		label := element(atom.Div, "message-label "+string(t.Role))
		label.AppendChild(text(t.Role.Label()))
		body := element(atom.Div, "message-text "+string(t.Role))
		body.AppendChild(text(t.Text))
		msg.AppendChild(label)
		msg.AppendChild(body)
		root.AppendChild(msg)
	}
	return renderNode(root)
}
