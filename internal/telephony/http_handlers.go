package telephony

import (
	"context"
	"net/http"

	"voiceqa-platform/internal/conversation"
	"voiceqa-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// VoiceHandler converts Twilio voice webhooks to internal types, drives the
// turn orchestrator, and writes TwiML.
//
// No business logic here.
//
// The webhook contract is: HTTP 200 with well-formed TwiML, always. Even a
// malformed request gets an apology-and-hangup response rather than an
// error status, because an error status leaves the caller in silence.

type VoiceHandler struct {
	Orchestrator *conversation.Orchestrator

	// Claimer deduplicates redelivered recording events. Optional; without
	// it a redelivery re-runs the pipeline and the store's idempotent
	// append still prevents duplicate records.
	Claimer RecordingClaimer
}

// RecordingClaimer marks a recording event as handled. ClaimOnce returns
// true for the first delivery of a RecordingSid and false for redeliveries.
type RecordingClaimer interface {
	ClaimOnce(ctx context.Context, recordingSid string) (bool, error)
}

// failureTwiML is served when even instruction rendering fails. Kept as a
// literal so this path cannot itself fail.
const failureTwiML = `<?xml version="1.0" encoding="UTF-8"?>
<Response>
  <Say>` + conversation.ApologyGeneric + `</Say>
  <Hangup></Hangup>
</Response>`

func (h VoiceHandler) HandleStartCall(c *gin.Context) {
	log := logger.FromGin(c)

	if h.Orchestrator == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "orchestrator not configured"})
		return
	}

	form, err := ParseVoiceStart(c.Request)
	if err != nil {
		log.Warn("voice start parse failed", "err", err)
		writeTwiML(c, failureTwiML)
		return
	}

	ins := h.Orchestrator.StartCall(form.CallSid, form.From, form.To)
	h.respond(c, ins)
}

func (h VoiceHandler) HandleTurn(c *gin.Context) {
	log := logger.FromGin(c)

	if h.Orchestrator == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "orchestrator not configured"})
		return
	}

	form, err := ParseRecording(c.Request)
	if err != nil {
		log.Warn("recording webhook parse failed", "err", err)
		writeTwiML(c, failureTwiML)
		return
	}

	ctx := c.Request.Context()

	if h.Claimer != nil && form.RecordingSid != "" {
		claimed, err := h.Claimer.ClaimOnce(ctx, form.RecordingSid)
		if err != nil {
			// Treat the recording as fresh when the claimer is down; the
			// store's idempotent append backstops duplicates.
			log.Warn("recording claim failed", "recording_sid", form.RecordingSid, "err", err)
		} else if !claimed {
			if ins, ok := h.Orchestrator.ReplayLastTurn(ctx, form.CallSid); ok {
				log.Info("recording redelivery replayed", "call_sid", form.CallSid, "recording_sid", form.RecordingSid)
				h.respond(c, ins)
				return
			}
		}
	}

	ins := h.Orchestrator.ProcessTurn(ctx, conversation.TurnRequest{
		CallSid:      form.CallSid,
		RecordingURL: form.RecordingURL,
		From:         form.From,
		To:           form.To,
	})
	h.respond(c, ins)
}

func (h VoiceHandler) respond(c *gin.Context, ins []conversation.Instruction) {
	log := logger.FromGin(c)

	twiml, err := RenderTwiML(ins)
	if err != nil {
		log.Error("twiml render failed", "err", err)
		writeTwiML(c, failureTwiML)
		return
	}
	writeTwiML(c, twiml)
}

func writeTwiML(c *gin.Context, twiml string) {
	c.Header("Content-Type", "application/xml")
	c.String(http.StatusOK, twiml)
}
