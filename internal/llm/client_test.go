package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"learninghour/internal/errdefs"
)

func newOpenAIServer(t *testing.T, handler http.HandlerFunc) string {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server.URL + "/v1"
}

func TestCompleteReturnsReply(t *testing.T) {
	t.Parallel()

	baseURL := newOpenAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path=%q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization=%q", got)
		}
		var req struct {
			Model          string `json:"model"`
			ResponseFormat struct {
				Type string `json:"type"`
			} `json:"response_format"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "gpt-test" || req.ResponseFormat.Type != "json_object" {
			t.Errorf("model=%q format=%q", req.Model, req.ResponseFormat.Type)
		}
		if len(req.Messages) != 1 || req.Messages[0].Content != "make a session as JSON" {
			t.Errorf("messages=%+v", req.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-test",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"topic\":\"TDD\"}"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 5, "completion_tokens": 4, "total_tokens": 9}
		}`))
	})

	c := NewClient(Options{APIKey: "sk-test", BaseURL: baseURL, Model: "gpt-test"})
	got, err := c.Complete(context.Background(), "make a session as JSON")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != `{"topic":"TDD"}` {
		t.Fatalf("reply=%q", got)
	}
}

func TestCompleteWithoutKeyIsNotConfigured(t *testing.T) {
	t.Parallel()

	c := NewClient(Options{BaseURL: "http://127.0.0.1:1/v1"})
	_, err := c.Complete(context.Background(), "hello")
	if !errors.Is(err, errdefs.ErrNotConfigured) {
		t.Fatalf("err=%v, want ErrNotConfigured", err)
	}
	if c.Model() != DefaultModel {
		t.Fatalf("Model=%q, want %q", c.Model(), DefaultModel)
	}
}

func TestCompleteServerErrorIsUpstream(t *testing.T) {
	t.Parallel()

	baseURL := newOpenAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "model overloaded", "type": "server_error"}}`))
	})

	c := NewClient(Options{APIKey: "sk-test", BaseURL: baseURL})
	_, err := c.Complete(context.Background(), "hello")
	if !errors.Is(err, errdefs.ErrUpstream) {
		t.Fatalf("err=%v, want ErrUpstream", err)
	}
	if got := errorStatus(err); got != "500" {
		t.Fatalf("errorStatus=%q, want 500", got)
	}
}
