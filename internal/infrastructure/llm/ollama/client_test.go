package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kirillkom/acceptance-verifier/internal/core/domain"
	"github.com/kirillkom/acceptance-verifier/internal/infrastructure/resilience"
)

func TestSummarizerBuildsPagePromptAndRendersHTML(t *testing.T) {
	var capturedPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		capturedPrompt, _ = payload["prompt"].(string)
		if payload["stream"] != false {
			t.Errorf("expected non-streaming request, got %v", payload["stream"])
		}
		if opts, _ := payload["options"].(map[string]any); opts["temperature"] != float64(0) {
			t.Errorf("expected deterministic sampling, got %v", payload["options"])
		}
		_, _ = w.Write([]byte(`{"response":"## Title\n\nBerita Acara Uji Terima"}`))
	}))
	defer server.Close()

	s := NewSummarizer(New(server.URL, "gen", nil))
	html, err := s.Summarize(context.Background(),
		[]string{"BERITA ACARA UJI TERIMA lokasi Bandung", ""},
		[]domain.Category{domain.CategoryBAUT, domain.CategoryUnknown})
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if !strings.Contains(html, "<h2>Title</h2>") {
		t.Fatalf("expected rendered heading, got %s", html)
	}
	if !strings.Contains(capturedPrompt, "[page 1] class=BAUT") || strings.Contains(capturedPrompt, "[page 2]") {
		t.Fatalf("unexpected prompt: %s", capturedPrompt)
	}
}

func TestSummarizerRetriesTemporaryStatus(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "model loading", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"response":"done"}`))
	}))
	defer server.Close()

	executor := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     time.Millisecond,
	})
	html, err := NewSummarizer(New(server.URL, "gen", executor)).Summarize(context.Background(), []string{"x"}, nil)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if calls.Load() != 2 || !strings.Contains(html, "done") {
		t.Fatalf("expected one retry, got %d calls and %q", calls.Load(), html)
	}
}

func TestSummarizerIncludesHTTPBodyInError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := NewSummarizer(New(server.URL, "gen", nil)).Summarize(context.Background(), []string{"x"}, nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "model unavailable") {
		t.Fatalf("expected response body in error, got %v", err)
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected 502 to be marked temporary, got %v", err)
	}
}

func TestSummarizerKeepsClientErrorsPermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unknown model", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewSummarizer(New(server.URL, "gen", nil)).Summarize(context.Background(), []string{"x"}, nil)
	if err == nil || domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected permanent error, got %v", err)
	}
}
