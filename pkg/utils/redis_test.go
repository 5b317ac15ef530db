package utils

import (
	"context"
	"testing"
	"time"
)

func TestRecordingClaimerValidatesInput(t *testing.T) {
	c := NewRecordingClaimer(nil, time.Minute)
	if _, err := c.ClaimOnce(context.Background(), "RE1"); err == nil {
		t.Fatalf("expected error for nil client")
	}
}

func TestRecordingClaimerDefaultsTTL(t *testing.T) {
	c := NewRecordingClaimer(nil, 0)
	if c.ttl <= 0 {
		t.Fatalf("expected positive default ttl, got %v", c.ttl)
	}
}
