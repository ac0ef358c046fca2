package assist

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, h http.HandlerFunc, timeout time.Duration) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewWithHTTPClient(Config{
		BaseURL: srv.URL + "/v1/",
		APIKey:  "sk-test",
		Model:   "test-model",
		Timeout: timeout,
	}, srv.Client())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestSummarizeNotes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path: want=%q got=%q", "/v1/chat/completions", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("authorization: got=%q", got)
		}
		var req chatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Model != "test-model" || len(req.Messages) != 1 || !strings.Contains(req.Messages[0].Content, "v = u + at") {
			t.Errorf("unexpected request: %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"  ## Kinematics\n- v = u + at  "}}]}`))
	}, 0)

	out, err := c.SummarizeNotes(context.Background(), "equations of motion: v = u + at")
	if err != nil {
		t.Fatalf("SummarizeNotes: %v", err)
	}
	if out != "## Kinematics\n- v = u + at" {
		t.Fatalf("unexpected summary %q", out)
	}
}

func TestSubjectStrategyListsChapters(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatCompletionRequest
		json.NewDecoder(r.Body).Decode(&req)
		if !strings.Contains(req.Messages[0].Content, "Kinematics, Optics") {
			t.Errorf("chapters missing from prompt: %s", req.Messages[0].Content)
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"plan"}}]}`))
	}, 0)

	out, err := c.SubjectStrategy(context.Background(), "Physics", []string{"Kinematics", "Optics"})
	if err != nil || out != "plan" {
		t.Fatalf("got %q, %v", out, err)
	}
}

func TestSummarizeEmptyNotes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}, 0)
	if _, err := c.SummarizeNotes(context.Background(), "   "); !errors.Is(err, ErrEmptyNotes) {
		t.Fatalf("expected ErrEmptyNotes, got %v", err)
	}
}

func TestUpstreamError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"rate limited"}`))
	}, 0)
	_, err := c.SummarizeNotes(context.Background(), "notes")
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *HTTPError, got %T: %v", err, err)
	}
	if httpErr.StatusCode != http.StatusTooManyRequests || !strings.Contains(httpErr.Body, "rate limited") {
		t.Fatalf("unexpected error: %+v", httpErr)
	}
}

func TestEmptyCompletion(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}, 0)
	if _, err := c.SummarizeNotes(context.Background(), "notes"); err == nil {
		t.Fatal("expected error for empty completion")
	}
}

func TestTimeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}, 50*time.Millisecond)
	start := time.Now()
	_, err := c.SummarizeNotes(context.Background(), "notes")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("timeout not honored, took %s", time.Since(start))
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(Config{Model: "m"}); err == nil {
		t.Fatal("expected error without base url")
	}
	if _, err := New(Config{BaseURL: "http://localhost"}); err == nil {
		t.Fatal("expected error without model")
	}
}
