package media

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestPublishReturnsPublicURL(t *testing.T) {
	p, err := NewPublisher(NewMemoryRepository(), nil, "https://voice.example.com/")
	if err != nil {
		t.Fatalf("publisher: %v", err)
	}

	url, err := p.Publish(context.Background(), "CA123", "abc", []byte("mp3"), "audio/mpeg")
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if url != "https://voice.example.com/audio/calls/CA123/abc.mp3" {
		t.Fatalf("unexpected url %q", url)
	}

	a, err := p.Fetch(context.Background(), "CA123", "abc")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !bytes.Equal(a.Data, []byte("mp3")) || a.ContentType != "audio/mpeg" {
		t.Fatalf("unexpected artifact: %+v", a)
	}
}

func TestPublishValidatesInput(t *testing.T) {
	p, _ := NewPublisher(NewMemoryRepository(), nil, "https://x")

	if _, err := p.Publish(context.Background(), "", "t", []byte("a"), ""); err == nil {
		t.Fatalf("expected error for missing call_sid")
	}
	if _, err := p.Publish(context.Background(), "c", "t", nil, ""); err == nil {
		t.Fatalf("expected error for empty audio")
	}
}

func TestArtifactsAreImmutable(t *testing.T) {
	repo := NewMemoryRepository()
	p, _ := NewPublisher(repo, nil, "https://x")

	if _, err := p.Publish(context.Background(), "CA1", "t1", []byte("first"), ""); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if _, err := p.Publish(context.Background(), "CA1", "t1", []byte("second"), ""); err != nil {
		t.Fatalf("republish: %v", err)
	}

	a, _ := repo.Get(context.Background(), "CA1", "t1")
	if string(a.Data) != "first" {
		t.Fatalf("artifact was overwritten: %q", a.Data)
	}
}

func TestServeArtifact(t *testing.T) {
	gin.SetMode(gin.TestMode)

	p, _ := NewPublisher(NewMemoryRepository(), nil, "https://x")
	if _, err := p.Publish(context.Background(), "CA1", "t1", []byte("mp3"), "audio/mpeg"); err != nil {
		t.Fatalf("publish: %v", err)
	}

	r := gin.New()
	r.GET("/audio/calls/:call_sid/:file", AudioHandler{Publisher: p}.ServeArtifact)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/audio/calls/CA1/t1.mp3", nil))
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := w.Header().Get("Content-Type"); got != "audio/mpeg" {
		t.Fatalf("unexpected content type %q", got)
	}
	if w.Body.String() != "mp3" {
		t.Fatalf("unexpected body %q", w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/audio/calls/CA1/missing.mp3", nil))
	if w.Code != 404 {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

// wrappingRepo decorates Get errors the way the Postgres repo does.
type wrappingRepo struct{ inner Repository }

func (r wrappingRepo) Put(ctx context.Context, a Artifact) error { return r.inner.Put(ctx, a) }

func (r wrappingRepo) Get(ctx context.Context, callSid, turnID string) (Artifact, error) {
	a, err := r.inner.Get(ctx, callSid, turnID)
	if err != nil {
		return Artifact{}, fmt.Errorf("media: get artifact: %w", err)
	}
	return a, nil
}

type recordingLogHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *recordingLogHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *recordingLogHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r)
	return nil
}
func (h *recordingLogHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingLogHandler) WithGroup(string) slog.Handler      { return h }

func TestServeArtifactTreatsWrappedNotFoundAsMiss(t *testing.T) {
	gin.SetMode(gin.TestMode)

	p, _ := NewPublisher(wrappingRepo{inner: NewMemoryRepository()}, nil, "https://x")

	logs := &recordingLogHandler{}
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("logger", slog.New(logs))
		c.Next()
	})
	r.GET("/audio/calls/:call_sid/:file", AudioHandler{Publisher: p}.ServeArtifact)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/audio/calls/CA1/missing.mp3", nil))
	if w.Code != 404 {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	for _, rec := range logs.records {
		if rec.Level == slog.LevelError {
			t.Fatalf("a wrapped not-found must not be logged as an error: %q", rec.Message)
		}
	}
}
