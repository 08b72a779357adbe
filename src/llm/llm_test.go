package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, providers ...string) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(Config{
		APIKey:     "test_api_key",
		Model:      "test_model",
		Providers:  providers,
		BaseURL:    srv.URL,
		RetryDelay: time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}
	return c, srv
}

func reply(w http.ResponseWriter, content string) {
	_ = json.NewEncoder(w).Encode(ChatResponse{Choices: []Choice{{Message: ResponseMessage{Content: content}}}})
}

func TestNewValidation(t *testing.T) {
	if _, err := New(Config{Model: "m"}); err == nil {
		t.Error("Expected error with missing API key")
	}
	if _, err := New(Config{APIKey: "k"}); err == nil {
		t.Error("Expected error with missing model")
	}
	c, err := New(Config{APIKey: "k", Model: "m"})
	if err != nil {
		t.Fatal(err)
	}
	if c.cfg.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q", c.cfg.BaseURL)
	}
}

func TestQueryVisionRequestShape(t *testing.T) {
	var got ChatRequest
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test_api_key" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		reply(w, "Player1: oi</image>")
	}, "fireworks")

	text, err := c.QueryVision(context.Background(), []byte{0x89, 'P', 'N', 'G'})
	if err != nil {
		t.Fatalf("QueryVision: %v", err)
	}
	if text != "Player1: oi" {
		t.Errorf("text = %q", text)
	}
	if got.Model != "test_model" || len(got.Messages) != 1 || len(got.Messages[0].Content) != 2 {
		t.Fatalf("unexpected request: %+v", got)
	}
	img := got.Messages[0].Content[1]
	if img.Type != "image_url" || !strings.HasPrefix(img.ImageURL.URL, "data:image/png;base64,") {
		t.Errorf("image part = %+v", img)
	}
	if got.Provider == nil || got.Provider.Order[0] != "fireworks" || *got.Provider.AllowFallbacks {
		t.Errorf("provider = %+v", got.Provider)
	}
}

func TestQueryVisionNoText(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { reply(w, "NO_TEXT_FOUND") })
	if _, err := c.QueryVision(context.Background(), nil); !errors.Is(err, ErrNoText) {
		t.Fatalf("expected ErrNoText, got %v", err)
	}
}

func TestCompleteRetries(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"error":{"message":"upstream","type":"server","code":502}}`))
			return
		}
		var req ChatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Messages[0].Role != "system" || req.Messages[1].Content[0].Text != "hola" {
			t.Errorf("messages = %+v", req.Messages)
		}
		reply(w, "hello")
	})

	out, err := c.Complete(context.Background(), "translate", "hola", 0.2, 100)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "hello" || calls.Load() != 3 {
		t.Errorf("out=%q calls=%d", out, calls.Load())
	}
}

func TestCompleteGivesUp(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_ = json.NewEncoder(w).Encode(ChatResponse{})
	})
	_, err := c.Complete(context.Background(), "", "x", 0, 10)
	if !errors.Is(err, ErrNoChoices) {
		t.Fatalf("expected ErrNoChoices, got %v", err)
	}
	if calls.Load() != maxRetries {
		t.Errorf("calls = %d, want %d", calls.Load(), maxRetries)
	}
}

func TestUnauthorizedNotRetried(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	_, err := c.Complete(context.Background(), "", "x", 0, 10)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestCompleteHonorsContext(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	c.cfg.RetryDelay = time.Hour
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err := c.Complete(ctx, "", "x", 0, 10)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("retry sleep ignored the context")
	}
}

func TestPing(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/key" || r.Method != http.MethodGet {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") == "Bearer test_api_key" {
			_, _ = w.Write([]byte(`{"data":{"label":"test"}}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	})
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	c.cfg.APIKey = "wrong"
	if err := c.Ping(context.Background()); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
