package parser

import (
	"strings"
	"testing"
)

func TestMarkdownParser_HeadingHierarchy(t *testing.T) {
	input := `# Clinical Note

Patient seen today.

## History

Fever for 3 days.

### Medications

- ibuprofen 400 mg
- acetaminophen

## Plan

Follow up in *two* weeks.
`
	tree, err := (&MarkdownParser{}).Parse(strings.NewReader(input), "note.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Children) != 1 {
		t.Fatalf("expected 1 top-level section, got %d", len(tree.Children))
	}

	h1 := tree.Children[0]
	if h1.Title != "Clinical Note" || h1.Text != "Patient seen today." {
		t.Errorf("unexpected h1 %q / %q", h1.Title, h1.Text)
	}
	if len(h1.Children) != 2 {
		t.Fatalf("expected 2 h2 children, got %d", len(h1.Children))
	}

	history := h1.Children[0]
	if history.Title != "History" || history.Text != "Fever for 3 days." {
		t.Errorf("unexpected history %q / %q", history.Title, history.Text)
	}
	if len(history.Children) != 1 {
		t.Fatalf("expected 1 h3 child, got %d", len(history.Children))
	}
	meds := history.Children[0]
	if meds.Text != "ibuprofen 400 mg\nacetaminophen" {
		t.Errorf("expected list items on separate lines, got %q", meds.Text)
	}

	plan := h1.Children[1]
	if plan.Text != "Follow up in two weeks." {
		t.Errorf("expected emphasis flattened, got %q", plan.Text)
	}
}

func TestMarkdownParser_LeadingTextKept(t *testing.T) {
	input := "Preamble.\n\n# Section\n\nBody."
	tree, err := (&MarkdownParser{}).Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(tree.Children))
	}
	if tree.Children[0].Title != "" || tree.Children[0].Text != "Preamble." {
		t.Errorf("expected untitled preamble, got %+v", tree.Children[0])
	}
}

func TestMarkdownParser_Table(t *testing.T) {
	input := `## Vitals

| Measure | Value |
|---------|-------|
| BP | 120/80 |
| HR | 72 |
`
	tree, err := (&MarkdownParser{}).Parse(strings.NewReader(input), "vitals.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Children) != 1 {
		t.Fatalf("expected 1 section, got %d", len(tree.Children))
	}
	text := tree.Children[0].Text
	for _, want := range []string{"Measure | Value", "BP | 120/80", "HR | 72"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in %q", want, text)
		}
	}
}

func TestMarkdownParser_CodeBlock(t *testing.T) {
	input := "## Labs\n\n```\nWBC 11.2\nHgb 13.1\n```\n\nWithin range.\n"
	tree, err := (&MarkdownParser{}).Parse(strings.NewReader(input), "labs.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := tree.Children[0].Text
	if !strings.Contains(text, "WBC 11.2\nHgb 13.1") || !strings.Contains(text, "Within range.") {
		t.Errorf("unexpected text %q", text)
	}
}

func TestMarkdownParser_TitleStripping(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"readme.md", "readme"},
		{"notes.markdown", "notes"},
		{"dir/plain.md", "plain"},
	}
	for _, tt := range tests {
		tree, err := (&MarkdownParser{}).Parse(strings.NewReader("text"), tt.filename)
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", tt.filename, err)
		}
		if tree.Title != tt.want {
			t.Errorf("filename=%q: expected title %q, got %q", tt.filename, tt.want, tree.Title)
		}
	}
}
