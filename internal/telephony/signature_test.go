package telephony

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestComputeSignatureMatchesDocumentedExample(t *testing.T) {
	// Worked example from Twilio's request validation docs.
	form := url.Values{}
	form.Set("CallSid", "CA1234567890ABCDE")
	form.Set("Caller", "+14158675310")
	form.Set("Digits", "1234")
	form.Set("From", "+14158675310")
	form.Set("To", "+18005551212")

	got := ComputeSignature(
		"12345",
		"https://mycompany.com/myapp.php?foo=1&bar=2",
		form,
	)
	if got != "GvWf1cFY/Q7PnoempGyD5oXAezc=" {
		t.Fatalf("unexpected signature %q", got)
	}
}

func TestValidSignatureRejectsTamperedForm(t *testing.T) {
	form := url.Values{}
	form.Set("CallSid", "CA1")
	sig := ComputeSignature("token", "https://x/call/turn", form)

	if !ValidSignature("token", "https://x/call/turn", form, sig) {
		t.Fatalf("expected valid signature")
	}

	form.Set("CallSid", "CA2")
	if ValidSignature("token", "https://x/call/turn", form, sig) {
		t.Fatalf("expected invalid signature after tampering")
	}
}

func TestRequireSignatureMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/call/start", RequireSignature("token", "https://voice.example.com"), func(c *gin.Context) {
		c.Status(200)
	})

	form := url.Values{}
	form.Set("CallSid", "CA1")
	sig := ComputeSignature("token", "https://voice.example.com/call/start", form)

	req := httptest.NewRequest(http.MethodPost, "/call/start", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Twilio-Signature", sig)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/call/start", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Twilio-Signature", "bogus")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != 403 {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestRequireSignatureDisabledWithoutToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/call/start", RequireSignature("", "https://voice.example.com"), func(c *gin.Context) {
		c.Status(200)
	})

	req := httptest.NewRequest(http.MethodPost, "/call/start", strings.NewReader("CallSid=CA1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
