package media

import (
	"errors"
	"net/http"
	"strings"

	"voiceqa-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// AudioHandler serves published artifacts at
// GET /audio/calls/:call_sid/:file where file is {turn_id}.mp3.
//
// The telephony platform fetches these URLs to play answers back, so the
// endpoint is public by design.
type AudioHandler struct {
	Publisher *Publisher
}

func (h AudioHandler) ServeArtifact(c *gin.Context) {
	log := logger.FromGin(c)

	if h.Publisher == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "publisher not configured"})
		return
	}

	callSid := c.Param("call_sid")
	file := c.Param("file")
	turnID := strings.TrimSuffix(file, ".mp3")
	if callSid == "" || turnID == "" || turnID == file {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	a, err := h.Publisher.Fetch(c.Request.Context(), callSid, turnID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Error("artifact fetch failed", "call_sid", callSid, "turn_id", turnID, "err", err)
		}
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	c.Data(http.StatusOK, a.ContentType, a.Data)
}
