package pipeline

import (
	"testing"
	"time"
)

func TestContentHashHex(t *testing.T) {
	// SHA-256 of "hello world" and of empty input are well-known.
	if got := ContentHashHex([]byte("hello world")); got != "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9" {
		t.Errorf("unexpected hash %q", got)
	}
	if got := ContentHashHex(nil); got != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Errorf("unexpected empty hash %q", got)
	}
}

func TestNewJob(t *testing.T) {
	a := NewJob("note.txt", "", []byte("fever"), true)
	b := NewJob("note.txt", "", []byte("fever"), false)

	if a.ID == "" || a.ID == b.ID {
		t.Errorf("expected distinct non-empty IDs, got %q and %q", a.ID, b.ID)
	}
	if a.Status != StatusQueued {
		t.Errorf("expected status %q, got %q", StatusQueued, a.Status)
	}
	if a.ContentHash != b.ContentHash {
		t.Error("expected identical content to hash identically")
	}
	if !a.Anneal || b.Anneal {
		t.Error("expected anneal flag carried through")
	}
	if string(a.FileData()) != "fever" {
		t.Errorf("expected file data kept, got %q", a.FileData())
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := NewJob("n.txt", "", nil, false)

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusParsing, "parsing"},
		{StatusChunking, "chunking"},
		{StatusPredicting, "predicting"},
		{StatusDecoding, "decoding"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJobStatus_Done(t *testing.T) {
	for _, s := range []JobStatus{StatusCompleted, StatusPartial, StatusFailed} {
		if !s.Done() {
			t.Errorf("expected %q to be terminal", s)
		}
	}
	for _, s := range []JobStatus{StatusQueued, StatusParsing, StatusChunking, StatusPredicting, StatusDecoding} {
		if s.Done() {
			t.Errorf("expected %q to be in flight", s)
		}
	}
}

func TestJob_TerminalStatusReleasesUpload(t *testing.T) {
	job := NewJob("n.txt", "", []byte("data"), false)
	job.SetStatus(StatusFailed, "parsing")
	if job.FileData() != nil {
		t.Error("expected file data released on terminal status")
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("chunk 3 failed")
	job.AddError("chunk 7 failed")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "chunk 3 failed" {
		t.Errorf("expected first error %q, got %q", "chunk 3 failed", snap.Progress.Errors[0])
	}

	// The snapshot must not alias job state.
	snap.Progress.Errors[0] = "changed"
	if job.Snapshot().Progress.Errors[0] != "chunk 3 failed" {
		t.Error("expected snapshot errors to be a copy")
	}
}

func TestJob_Progress(t *testing.T) {
	job := &Job{ID: "progress-test", UpdatedAt: time.Now()}
	job.SetTotalChunks(3)
	job.IncrChunksPredicted()
	job.IncrChunksPredicted()

	snap := job.Snapshot()
	if snap.Progress.TotalChunks != 3 || snap.Progress.ChunksPredicted != 2 {
		t.Errorf("unexpected progress %+v", snap.Progress)
	}
}

func TestJob_Result(t *testing.T) {
	job := &Job{ID: "result-test"}
	if _, ok := job.Result(); ok {
		t.Fatal("expected no result before SetResult")
	}
	job.SetResult(&Result{JobID: "result-test", Spans: nil})
	r, ok := job.Result()
	if !ok || r.JobID != "result-test" {
		t.Errorf("expected stored result, got %+v (ok=%v)", r, ok)
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	if len(snap.Progress.Errors) != 0 {
		t.Errorf("expected empty errors, got %d", len(snap.Progress.Errors))
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(time.Minute)
	old := time.Now().Add(-time.Hour)

	store.Put(&Job{ID: "old-done", Status: StatusCompleted, UpdatedAt: old})
	store.Put(&Job{ID: "old-running", Status: StatusPredicting, UpdatedAt: old})
	store.Put(&Job{ID: "fresh", Status: StatusCompleted, UpdatedAt: time.Now()})

	if n := store.Cleanup(); n != 1 {
		t.Errorf("expected 1 eviction, got %d", n)
	}
	if store.Get("old-done") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("old-running") == nil {
		t.Error("expected in-flight job to survive cleanup")
	}
	if store.Get("fresh") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
	if store.Len() != 2 {
		t.Errorf("expected 2 jobs left, got %d", store.Len())
	}
}

func TestJobStore_CleanupEmpty(t *testing.T) {
	if n := NewJobStore(time.Hour).Cleanup(); n != 0 {
		t.Errorf("expected 0 evictions, got %d", n)
	}
}
