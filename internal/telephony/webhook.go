package telephony

import (
	"errors"
	"net/http"
	"strings"
)

// Twilio voice webhook forms. Twilio sends
// application/x-www-form-urlencoded by default.
// Ref: https://www.twilio.com/docs/voice/twiml
//
// Keep these minimal and provider-adapter-only. Business logic (the turn
// pipeline) is not invoked here.

// VoiceStartForm captures the subset of new-call webhook fields we care
// about.
type VoiceStartForm struct {
	CallSid    string
	AccountSid string
	From       string
	To         string
	CallStatus string
	Direction  string
}

// RecordingForm captures the subset of "recording ready" webhook fields we
// care about.
type RecordingForm struct {
	CallSid           string
	RecordingSid      string
	RecordingURL      string
	RecordingDuration string
	From              string
	To                string
}

var ErrMissingCallSid = errors.New("telephony: CallSid is required")

func ParseVoiceStart(r *http.Request) (VoiceStartForm, error) {
	if err := r.ParseForm(); err != nil {
		return VoiceStartForm{}, err
	}
	f := VoiceStartForm{
		CallSid:    r.PostFormValue("CallSid"),
		AccountSid: r.PostFormValue("AccountSid"),
		From:       normalizePhone(r.PostFormValue("From")),
		To:         normalizePhone(r.PostFormValue("To")),
		CallStatus: r.PostFormValue("CallStatus"),
		Direction:  r.PostFormValue("Direction"),
	}
	if f.CallSid == "" {
		return VoiceStartForm{}, ErrMissingCallSid
	}
	return f, nil
}

func ParseRecording(r *http.Request) (RecordingForm, error) {
	if err := r.ParseForm(); err != nil {
		return RecordingForm{}, err
	}
	f := RecordingForm{
		CallSid:           r.PostFormValue("CallSid"),
		RecordingSid:      r.PostFormValue("RecordingSid"),
		RecordingURL:      r.PostFormValue("RecordingUrl"),
		RecordingDuration: r.PostFormValue("RecordingDuration"),
		From:              normalizePhone(r.PostFormValue("From")),
		To:                normalizePhone(r.PostFormValue("To")),
	}
	if f.CallSid == "" {
		return RecordingForm{}, ErrMissingCallSid
	}
	if f.RecordingURL == "" {
		return RecordingForm{}, errors.New("telephony: RecordingUrl is required")
	}
	return f, nil
}

func normalizePhone(s string) string {
	s = strings.TrimSpace(s)
	// Twilio sometimes sends "anonymous" or empty; keep as-is.
	return s
}
