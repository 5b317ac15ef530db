package telephony

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"voiceqa-platform/internal/conversation"

	"github.com/gin-gonic/gin"
)

type stubSTT struct{ text string }

func (s stubSTT) Transcribe(ctx context.Context, audioURL string) (string, error) {
	return s.text, nil
}

type stubGenerator struct{ answer string }

func (s stubGenerator) Answer(ctx context.Context, question string) (string, error) {
	return s.answer, nil
}

type stubTTS struct{}

func (stubTTS) Synthesize(ctx context.Context, text string) ([]byte, error) {
	return []byte("mp3"), nil
}

type stubPublisher struct{ url string }

func (s stubPublisher) Publish(ctx context.Context, callSid, turnID string, audio []byte, contentType string) (string, error) {
	return s.url, nil
}

type stubClaimer struct {
	claimed map[string]bool
}

func (s *stubClaimer) ClaimOnce(ctx context.Context, recordingSid string) (bool, error) {
	if s.claimed == nil {
		s.claimed = map[string]bool{}
	}
	if s.claimed[recordingSid] {
		return false, nil
	}
	s.claimed[recordingSid] = true
	return true, nil
}

func newTestHandler(t *testing.T, store conversation.Store, claimer RecordingClaimer) (VoiceHandler, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	orch, err := conversation.NewOrchestrator(conversation.OrchestratorConfig{
		STT:       stubSTT{text: "what is a lease"},
		Generator: stubGenerator{answer: "A lease is a contract. Consult a licensed attorney for specifics."},
		TTS:       stubTTS{},
		Publisher: stubPublisher{url: "https://voice.example.com/audio/calls/CA1/t1.mp3"},
		Store:     store,
		Builder:   conversation.NewResponseBuilder("/call/turn"),
	})
	if err != nil {
		t.Fatalf("orchestrator: %v", err)
	}

	h := VoiceHandler{Orchestrator: orch, Claimer: claimer}
	r := gin.New()
	r.POST("/call/start", h.HandleStartCall)
	r.POST("/call/turn", h.HandleTurn)
	return h, r
}

func postForm(r *gin.Engine, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandleStartCallReturnsGreetingTwiML(t *testing.T) {
	_, r := newTestHandler(t, conversation.NewMemoryStore(), nil)

	w := postForm(r, "/call/start", "CallSid=CA1&From=%2B1555&To=%2B1666")
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/xml") {
		t.Fatalf("unexpected content type %q", ct)
	}
	body := w.Body.String()
	if !strings.Contains(body, "<Say>"+conversation.GreetingPrompt+"</Say>") {
		t.Fatalf("expected greeting in twiml:\n%s", body)
	}
	if !strings.Contains(body, "<Record") {
		t.Fatalf("expected record verb:\n%s", body)
	}
}

func TestHandleStartCallMalformedStillReturns200(t *testing.T) {
	_, r := newTestHandler(t, conversation.NewMemoryStore(), nil)

	w := postForm(r, "/call/start", "From=%2B1555")
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "<Say>") {
		t.Fatalf("expected audible fallback:\n%s", w.Body.String())
	}
}

func TestHandleTurnRunsPipelineAndStoresTurn(t *testing.T) {
	store := conversation.NewMemoryStore()
	_, r := newTestHandler(t, store, nil)

	w := postForm(r, "/call/turn", "CallSid=CA1&RecordingSid=RE1&RecordingUrl=https%3A%2F%2Fapi.twilio.com%2Frec%2FRE1&From=%2B1555&To=%2B1666")
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "<Play>https://voice.example.com/audio/calls/CA1/t1.mp3</Play>") {
		t.Fatalf("expected play verb:\n%s", w.Body.String())
	}

	turns, err := store.ListByCall(context.Background(), "CA1")
	if err != nil || len(turns) != 1 {
		t.Fatalf("expected 1 stored turn, got %d (%v)", len(turns), err)
	}
	if turns[0].Status != conversation.TurnStatusOK {
		t.Fatalf("expected ok turn, got %s", turns[0].Status)
	}
}

func TestHandleTurnRedeliveryReplaysWithoutSecondTurn(t *testing.T) {
	store := conversation.NewMemoryStore()
	_, r := newTestHandler(t, store, &stubClaimer{})

	body := "CallSid=CA1&RecordingSid=RE1&RecordingUrl=https%3A%2F%2Fapi.twilio.com%2Frec%2FRE1"
	first := postForm(r, "/call/turn", body)
	second := postForm(r, "/call/turn", body)

	if first.Code != 200 || second.Code != 200 {
		t.Fatalf("expected 200s, got %d/%d", first.Code, second.Code)
	}
	if !strings.Contains(second.Body.String(), "<Play>") {
		t.Fatalf("expected replayed play verb:\n%s", second.Body.String())
	}

	turns, _ := store.ListByCall(context.Background(), "CA1")
	if len(turns) != 1 {
		t.Fatalf("redelivery must not append a second turn, got %d", len(turns))
	}
}
