package telephony

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"voiceqa-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

const signatureHeader = "X-Twilio-Signature"

// ComputeSignature implements Twilio's request signing scheme: the full
// webhook URL concatenated with the sorted POST parameter names and values,
// HMAC-SHA1 with the account auth token, base64 encoded.
// Ref: https://www.twilio.com/docs/usage/security#validating-requests
func ComputeSignature(authToken, fullURL string, form url.Values) string {
	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(fullURL)
	for _, k := range keys {
		for _, v := range form[k] {
			b.WriteString(k)
			b.WriteString(v)
		}
	}

	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(b.String()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// ValidSignature reports whether the header matches the expected signature.
func ValidSignature(authToken, fullURL string, form url.Values, header string) bool {
	want := ComputeSignature(authToken, fullURL, form)
	return hmac.Equal([]byte(want), []byte(header))
}

// RequireSignature validates X-Twilio-Signature on webhook requests.
// With an empty authToken the check is disabled (local development).
// publicBaseURL must be the externally visible base, since Twilio signs the
// URL it dialed, not the one seen behind a proxy.
func RequireSignature(authToken, publicBaseURL string) gin.HandlerFunc {
	base := strings.TrimRight(publicBaseURL, "/")
	return func(c *gin.Context) {
		if authToken == "" {
			c.Next()
			return
		}
		log := logger.FromGin(c)

		if err := c.Request.ParseForm(); err != nil {
			log.Warn("webhook form parse failed", "err", err)
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid form"})
			return
		}

		fullURL := base + c.Request.URL.RequestURI()
		if !ValidSignature(authToken, fullURL, c.Request.PostForm, c.GetHeader(signatureHeader)) {
			log.Warn("webhook signature rejected", "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid signature"})
			return
		}
		c.Next()
	}
}
