package openai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New("", "gpt-4o-mini"); err == nil {
		t.Fatalf("expected error for empty api key")
	}
}

func TestAnswerRejectsEmptyQuestion(t *testing.T) {
	g, err := New("key", "")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := g.Answer(context.Background(), "  "); err == nil {
		t.Fatalf("expected error for empty question")
	}
}

func TestAnswerParsesChatCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "  General information only; consult a licensed attorney.  "}, "finish_reason": "stop"}]
		}`))
	}))
	defer srv.Close()

	g, err := New("key", "gpt-4o-mini", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	got, err := g.Answer(context.Background(), "What is a contract?")
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if got != "General information only; consult a licensed attorney." {
		t.Fatalf("expected trimmed answer, got %q", got)
	}
}

func TestAnswerRejectsEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "chatcmpl-2", "object": "chat.completion", "choices": []}`))
	}))
	defer srv.Close()

	g, _ := New("key", "gpt-4o-mini", WithBaseURL(srv.URL))
	if _, err := g.Answer(context.Background(), "question"); err == nil {
		t.Fatalf("expected error for empty choices")
	}
}
