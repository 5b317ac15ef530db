package telephony

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"

	"voiceqa-platform/internal/conversation"
)

// TwiML is a minimal Twilio Markup Language response builder.
// It intentionally avoids any provider SDK dependency.
//
// Only include verbs we need at the adapter boundary: Say, Play, Record,
// Hangup.

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any    `xml:",any"`
}

type twimlSay struct {
	XMLName xml.Name `xml:"Say"`
	Text    string   `xml:",chardata"`
}

type twimlPlay struct {
	XMLName xml.Name `xml:"Play"`
	URL     string   `xml:",chardata"`
}

type twimlRecord struct {
	XMLName   xml.Name `xml:"Record"`
	Action    string   `xml:"action,attr"`
	Method    string   `xml:"method,attr"`
	MaxLength int      `xml:"maxLength,attr"`
	PlayBeep  bool     `xml:"playBeep,attr"`
	Trim      string   `xml:"trim,attr,omitempty"`
	Timeout   int      `xml:"timeout,attr"`
}

type twimlHangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

// RenderTwiML maps a call-control instruction list to TwiML.
func RenderTwiML(instructions []conversation.Instruction) (string, error) {
	if len(instructions) == 0 {
		return "", errors.New("telephony: empty instruction list")
	}

	var r twimlResponse
	for _, in := range instructions {
		switch in.Kind {
		case conversation.InstructionSay:
			r.Verbs = append(r.Verbs, twimlSay{Text: in.Text})
		case conversation.InstructionPlay:
			r.Verbs = append(r.Verbs, twimlPlay{URL: in.URL})
		case conversation.InstructionRecord:
			if in.Record == nil {
				return "", errors.New("telephony: record instruction missing params")
			}
			rec := twimlRecord{
				Action:    in.Record.ActionURL,
				Method:    "POST",
				MaxLength: in.Record.MaxDurationSeconds,
				PlayBeep:  in.Record.BeepEnabled,
				Timeout:   in.Record.SilenceTimeoutSeconds,
			}
			if in.Record.TrimSilence {
				rec.Trim = "trim-silence"
			}
			r.Verbs = append(r.Verbs, rec)
		case conversation.InstructionHangup:
			r.Verbs = append(r.Verbs, twimlHangup{})
		default:
			return "", fmt.Errorf("telephony: unknown instruction kind %q", in.Kind)
		}
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", err
	}
	if err := enc.Flush(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
