package examples

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sample = `{"idx": 1, "note": "n1", "full_note": "A 45-year-old woman with fever.", "conversation": "Doctor: Hi.\nPatient: Hello."}

{"idx": 2, "full_note": "Second note.", "conversation": {"turns": []}}
{"idx": 3, "full_note": "Third note."}
`

func TestRead_Limit(t *testing.T) {
	got, err := Read(strings.NewReader(sample), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 examples, got %d", len(got))
	}
	if got[0].Idx != 1 || got[1].Idx != 2 {
		t.Errorf("expected idx 1 and 2, got %d and %d", got[0].Idx, got[1].Idx)
	}
}

func TestRead_ZeroLimit(t *testing.T) {
	got, err := Read(strings.NewReader(sample), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", got)
	}
}

func TestRead_BadLine(t *testing.T) {
	_, err := Read(strings.NewReader("{\"idx\":1}\nnot json\n"), 10)
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("expected error mentioning line 2, got %v", err)
	}
}

func TestExample_ConversationText(t *testing.T) {
	got, err := Read(strings.NewReader(sample), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 examples, got %d", len(got))
	}

	text, ok := got[0].ConversationText()
	if !ok || !strings.HasPrefix(text, "Doctor: Hi.") {
		t.Errorf("expected string conversation, got %q (ok=%v)", text, ok)
	}
	if _, ok := got[1].ConversationText(); ok {
		t.Error("expected structured conversation to not be text")
	}
	if _, ok := got[2].ConversationText(); ok {
		t.Error("expected missing conversation to not be text")
	}
}

func TestExample_Preview(t *testing.T) {
	ex := Example{FullNote: "abcdef"}
	if got := ex.Preview(3); got != "abc..." {
		t.Errorf("expected %q, got %q", "abc...", got)
	}
	if got := ex.Preview(10); got != "abcdef" {
		t.Errorf("expected %q, got %q", "abcdef", got)
	}
}

func TestStore_List(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.jsonl")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := NewStore(path).List(10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("expected 3 examples, got %d", len(got))
	}
}

func TestStore_Missing(t *testing.T) {
	_, err := NewStore(filepath.Join(t.TempDir(), "missing.jsonl")).List(10)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
