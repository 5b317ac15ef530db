package telephony

import (
	"strings"
	"testing"

	"voiceqa-platform/internal/conversation"
)

func TestRenderTwiMLSayPlayRecord(t *testing.T) {
	xml, err := RenderTwiML([]conversation.Instruction{
		conversation.Play("https://x/audio/calls/CA1/t1.mp3"),
		conversation.Say("You may ask one more short question after the beep."),
		conversation.Record(conversation.RecordParams{
			MaxDurationSeconds:    30,
			BeepEnabled:           true,
			TrimSilence:           true,
			SilenceTimeoutSeconds: 3,
			ActionURL:             "/call/turn",
		}),
		conversation.Hangup(),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	for _, want := range []string{
		"<Play>https://x/audio/calls/CA1/t1.mp3</Play>",
		"<Say>You may ask one more short question after the beep.</Say>",
		`action="/call/turn"`,
		`method="POST"`,
		`maxLength="30"`,
		`playBeep="true"`,
		`trim="trim-silence"`,
		`timeout="3"`,
		"<Hangup>",
	} {
		if !strings.Contains(xml, want) {
			t.Fatalf("expected %q in twiml:\n%s", want, xml)
		}
	}
}

func TestRenderTwiMLPreservesOrder(t *testing.T) {
	xml, err := RenderTwiML([]conversation.Instruction{
		conversation.Say("first"),
		conversation.Say("second"),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if strings.Index(xml, "first") > strings.Index(xml, "second") {
		t.Fatalf("verbs out of order:\n%s", xml)
	}
}

func TestRenderTwiMLRejectsEmptyList(t *testing.T) {
	if _, err := RenderTwiML(nil); err == nil {
		t.Fatalf("expected error")
	}
}

func TestRenderTwiMLRejectsRecordWithoutParams(t *testing.T) {
	if _, err := RenderTwiML([]conversation.Instruction{{Kind: conversation.InstructionRecord}}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestRenderTwiMLOmitsTrimWhenDisabled(t *testing.T) {
	xml, err := RenderTwiML([]conversation.Instruction{
		conversation.Record(conversation.RecordParams{MaxDurationSeconds: 10, ActionURL: "/call/turn"}),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if strings.Contains(xml, "trim=") {
		t.Fatalf("expected no trim attr:\n%s", xml)
	}
}
