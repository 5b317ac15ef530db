package telephony

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func formRequest(t *testing.T, target, body string) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func TestParseVoiceStart(t *testing.T) {
	r := formRequest(t, "/call/start", "CallSid=CA123&From=%2B15551234567&To=%2B15557654321&CallStatus=ringing")

	form, err := ParseVoiceStart(r)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if form.CallSid != "CA123" {
		t.Fatalf("expected CallSid")
	}
	if form.From != "+15551234567" || form.To != "+15557654321" {
		t.Fatalf("unexpected from/to: %q %q", form.From, form.To)
	}
}

func TestParseVoiceStartRequiresCallSid(t *testing.T) {
	r := formRequest(t, "/call/start", "From=%2B1555")
	if _, err := ParseVoiceStart(r); err != ErrMissingCallSid {
		t.Fatalf("expected ErrMissingCallSid, got %v", err)
	}
}

func TestParseRecording(t *testing.T) {
	r := formRequest(t, "/call/turn",
		"CallSid=CA123&RecordingSid=RE9&RecordingUrl=https%3A%2F%2Fapi.twilio.com%2Frec%2FRE9&RecordingDuration=12&From=%2B1555&To=%2B1666")

	form, err := ParseRecording(r)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if form.RecordingSid != "RE9" {
		t.Fatalf("expected RecordingSid")
	}
	if form.RecordingURL != "https://api.twilio.com/rec/RE9" {
		t.Fatalf("unexpected recording url %q", form.RecordingURL)
	}
}

func TestParseRecordingRequiresURL(t *testing.T) {
	r := formRequest(t, "/call/turn", "CallSid=CA123")
	if _, err := ParseRecording(r); err == nil {
		t.Fatalf("expected error")
	}
}
