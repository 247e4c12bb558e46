package inference

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestClient_Predict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/predict" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req predictRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Text != "has fever" {
			t.Errorf("expected text %q, got %q", "has fever", req.Text)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"entities":[{"text":"fever","type":"Sign_symptom"}],"tokens":["[CLS]","has","fever","[SEP]"],"tags":["O","O","B-Sign_symptom","O"]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second)
	pred, err := c.Predict(context.Background(), "has fever")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pred.Tokens) != 4 || len(pred.Tags) != 4 {
		t.Errorf("expected 4 tokens and tags, got %d/%d", len(pred.Tokens), len(pred.Tags))
	}
	if len(pred.Entities) != 1 || pred.Entities[0].Type != "Sign_symptom" {
		t.Errorf("unexpected entities %+v", pred.Entities)
	}
	if c.Stats.Snapshot().Count != 1 {
		t.Errorf("expected one latency sample, got %d", c.Stats.Snapshot().Count)
	}
}

func TestClient_PredictStatusErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		retryable bool
		contains  string
	}{
		{"bad request", http.StatusBadRequest, `{"detail":"Text cannot be empty"}`, false, "Text cannot be empty"},
		{"server error", http.StatusInternalServerError, `{"detail":"CUDA out of memory"}`, true, "CUDA out of memory"},
		{"rate limited", http.StatusTooManyRequests, `slow down`, true, "slow down"},
		{"validation", http.StatusUnprocessableEntity, `{"detail":[{"msg":"field required"}]}`, false, "field required"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				io.WriteString(w, tc.body)
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, time.Second).Predict(context.Background(), "x")
			if err == nil {
				t.Fatal("expected error")
			}
			if IsRetryable(err) != tc.retryable {
				t.Errorf("expected retryable=%v, got %v (%v)", tc.retryable, IsRetryable(err), err)
			}
			if !strings.Contains(err.Error(), tc.contains) {
				t.Errorf("expected error to contain %q, got %q", tc.contains, err.Error())
			}
		})
	}
}

func TestClient_PredictBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "not json")
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Predict(context.Background(), "x")
	if err == nil || !strings.Contains(err.Error(), "decode prediction") {
		t.Errorf("expected decode error, got %v", err)
	}
}

func TestClient_ModelLoaded(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   bool
	}{
		{"loaded", http.StatusOK, `{"status":"healthy","model_loaded":true}`, true},
		{"not loaded", http.StatusOK, `{"status":"healthy","model_loaded":false}`, false},
		{"down", http.StatusServiceUnavailable, ``, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/health" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				w.WriteHeader(tc.status)
				io.WriteString(w, tc.body)
			}))
			defer srv.Close()

			if got := NewClient(srv.URL, time.Second).ModelLoaded(context.Background()); got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

type scriptedPredictor struct {
	calls atomic.Int32
	errs  []error
}

func (p *scriptedPredictor) Predict(ctx context.Context, text string) (*Prediction, error) {
	n := int(p.calls.Add(1)) - 1
	if n < len(p.errs) && p.errs[n] != nil {
		return nil, p.errs[n]
	}
	return &Prediction{Tokens: []string{text}, Tags: []string{"O"}}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func noBackoff(int) time.Duration { return 0 }

func TestPredictWithRetry_RecoversFromTransientError(t *testing.T) {
	p := &scriptedPredictor{errs: []error{&RetryableError{StatusCode: 503}}}
	pred, err := predictWithRetry(context.Background(), p, "x", discardLogger(), noBackoff)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pred == nil || p.calls.Load() != 2 {
		t.Errorf("expected success on second call, got %d calls", p.calls.Load())
	}
}

func TestPredictWithRetry_StopsOnPermanentError(t *testing.T) {
	perm := errors.New("bad input")
	p := &scriptedPredictor{errs: []error{perm}}
	_, err := predictWithRetry(context.Background(), p, "x", discardLogger(), noBackoff)
	if !errors.Is(err, perm) {
		t.Errorf("expected permanent error, got %v", err)
	}
	if p.calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", p.calls.Load())
	}
}

func TestPredictWithRetry_GivesUp(t *testing.T) {
	retry := &RetryableError{StatusCode: 500}
	p := &scriptedPredictor{errs: []error{retry, retry, retry, retry}}
	_, err := predictWithRetry(context.Background(), p, "x", discardLogger(), noBackoff)
	if !IsRetryable(err) {
		t.Errorf("expected retryable error after exhausting attempts, got %v", err)
	}
	if int(p.calls.Load()) != MaxRetries {
		t.Errorf("expected %d calls, got %d", MaxRetries, p.calls.Load())
	}
}

func TestPredictWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &scriptedPredictor{errs: []error{&RetryableError{StatusCode: 502}}}
	_, err := predictWithRetry(ctx, p, "x", discardLogger(), func(int) time.Duration { return time.Hour })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestBackoff_Bounds(t *testing.T) {
	for attempt := range 8 {
		d := Backoff(attempt)
		if d < time.Second || d > 45*time.Second {
			t.Errorf("attempt %d: backoff %v out of range", attempt, d)
		}
	}
}
