package doctree

import "strings"

// DocTree is the root of a parsed clinical note or upload.
type DocTree struct {
	Title    string     // From document metadata or the filename
	Children []*DocNode // Top-level sections
}

// DocNode is one section of a note. Clinical notes are shallow: usually a
// flat list of headed sections ("HISTORY OF PRESENT ILLNESS", "PLAN").
type DocNode struct {
	Title    string     // Section heading, empty for untitled text
	Text     string     // Body text, may be empty for container nodes
	Page     int        // Source page (0 if N/A)
	Children []*DocNode // Subsections
}

// Walk visits every node depth-first with its heading path.
func (t *DocTree) Walk(fn func(n *DocNode, path []string)) {
	var visit func(nodes []*DocNode, path []string)
	visit = func(nodes []*DocNode, path []string) {
		for _, n := range nodes {
			p := path
			if n.Title != "" {
				p = append(append([]string(nil), path...), n.Title)
			}
			fn(n, p)
			visit(n.Children, p)
		}
	}
	visit(t.Children, nil)
}

// Text returns all section bodies joined by blank lines, in document order.
func (t *DocTree) Text() string {
	var parts []string
	t.Walk(func(n *DocNode, _ []string) {
		if s := strings.TrimSpace(n.Text); s != "" {
			parts = append(parts, s)
		}
	})
	return strings.Join(parts, "\n\n")
}

// Chunk is a model-sized window of note text, ready for token classification.
type Chunk struct {
	Text      string
	Index     int      // Position within the document
	Section   []string // Heading path, e.g. ["Physical Examination", "Vitals"]
	PageStart int
	PageEnd   int
	Tokens    int // Estimated or counted model tokens
}
