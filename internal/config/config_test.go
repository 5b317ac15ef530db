package config

import "testing"

func validBase() Config {
	return Config{
		App:    AppConfig{Env: "local", Port: 8080, PublicBaseURL: "http://localhost:8080"},
		DB:     DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "voiceqa", SSLMode: ""},
		Redis:  RedisConfig{Host: "localhost", Port: 6379},
		Auth:   AuthConfig{JWTSecret: "secret"},
		Speech: SpeechConfig{DeepgramAPIKey: "dg"},
		TTS:    TTSConfig{ElevenLabsAPIKey: "el", VoiceID: "voice"},
		LLM:    LLMConfig{OpenAIAPIKey: "oa"},
	}
}

func TestLoad_ReportsMissingRequired(t *testing.T) {
	// Ensure a clean env by not setting anything and calling validation directly.
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidate_ProductionRequiresSSLMode(t *testing.T) {
	c := validBase()
	c.App.Env = "production"
	c.App.PublicBaseURL = "https://voice.example.com"
	c.Auth.JWTIssuer = "issuer"
	c.Auth.JWTAudience = "aud"
	c.Twilio.AuthToken = "token"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for production without DB_SSLMODE")
	}
}

func TestValidate_LocalDefaultsSSLMode(t *testing.T) {
	c := validBase()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.DB.SSLMode != "disable" {
		t.Fatalf("expected sslmode disable default, got %q", c.DB.SSLMode)
	}
}

func TestValidate_ProductionRequiresHTTPSBaseURL(t *testing.T) {
	c := validBase()
	c.App.Env = "production"
	c.DB.SSLMode = "require"
	c.Auth.JWTIssuer = "issuer"
	c.Auth.JWTAudience = "aud"
	c.Twilio.AuthToken = "token"
	c.App.PublicBaseURL = "http://voice.example.com"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for plain-http base url in production")
	}
}

func TestValidate_RequiresProviderKeys(t *testing.T) {
	c := validBase()
	c.Speech.DeepgramAPIKey = ""
	c.TTS.ElevenLabsAPIKey = ""
	c.LLM.OpenAIAPIKey = ""
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for missing provider keys")
	}
}

func TestMustDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "")
	if d, err := mustDuration("TEST_DURATION"); err != nil || d != 0 {
		t.Fatalf("empty value: d=%v err=%v, want zero and no error", d, err)
	}

	t.Setenv("TEST_DURATION", "10s")
	if d, err := mustDuration("TEST_DURATION"); err != nil || d.Seconds() != 10 {
		t.Fatalf("valid value: d=%v err=%v", d, err)
	}

	// A bare number has no unit and must be rejected, not silently defaulted.
	t.Setenv("TEST_DURATION", "10")
	if _, err := mustDuration("TEST_DURATION"); err == nil {
		t.Fatalf("expected error for unitless duration")
	}

	t.Setenv("TEST_DURATION", "soon")
	if _, err := mustDuration("TEST_DURATION"); err == nil {
		t.Fatalf("expected error for malformed duration")
	}
}

func TestValidate_DefaultsTokenTTLs(t *testing.T) {
	c := validBase()
	if err := c.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if c.Auth.AccessTokenTTL <= 0 || c.Auth.RefreshTokenTTL <= c.Auth.AccessTokenTTL {
		t.Fatalf("unexpected ttl defaults: access=%v refresh=%v", c.Auth.AccessTokenTTL, c.Auth.RefreshTokenTTL)
	}
}
