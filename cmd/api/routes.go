package main

import (
	"voiceqa-platform/internal/auth"
	"voiceqa-platform/internal/config"
	"voiceqa-platform/internal/conversation"
	"voiceqa-platform/internal/httpapi"
	"voiceqa-platform/internal/media"
	"voiceqa-platform/internal/rbac"
	"voiceqa-platform/internal/reporting"
	"voiceqa-platform/internal/telephony"

	"github.com/gin-gonic/gin"
)

type routeDeps struct {
	cfg          config.Config
	authManager  *auth.Manager
	orchestrator *conversation.Orchestrator
	claimer      telephony.RecordingClaimer
	publisher    *media.Publisher
	store        conversation.Store
}

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, d routeDeps) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Provider webhooks (public, signature-validated).
	{
		voice := telephony.VoiceHandler{
			Orchestrator: d.orchestrator,
			Claimer:      d.claimer,
		}
		sig := telephony.RequireSignature(d.cfg.Twilio.AuthToken, d.cfg.App.PublicBaseURL)
		r.POST("/call/start", sig, voice.HandleStartCall)
		r.POST("/call/turn", sig, voice.HandleTurn)
	}

	// Published answer audio (public; URLs are handed to the telephony
	// platform, which fetches them unauthenticated).
	{
		audio := media.AudioHandler{Publisher: d.publisher}
		r.GET("/audio/calls/:call_sid/:file", audio.ServeArtifact)
	}

	h := httpapi.Handlers{
		Auth:    d.authManager,
		Store:   d.store,
		Reports: reportingService(d.store),
	}

	// Token issuance is public; everything else under /v1 requires a token.
	r.POST("/v1/auth/login", h.Login)

	v1 := r.Group("/v1")
	v1.Use(auth.RequireAccessToken(d.authManager))
	{
		// Placeholder route to demonstrate identity extraction via context.
		v1.GET("/me", func(c *gin.Context) {
			uid, _ := auth.UserID(c.Request.Context())
			role, _ := auth.Role(c.Request.Context())
			c.JSON(200, gin.H{"user_id": uid, "role": role})
		})

		calls := v1.Group("/calls")
		calls.Use(rbac.RequireAnyRole(rbac.RoleOperator, rbac.RoleAdmin))
		{
			calls.GET("/:call_sid/turns", h.ListTurns)
		}

		reports := v1.Group("/reports")
		reports.Use(rbac.RequireAnyRole(rbac.RoleAdmin))
		{
			reports.GET("/turns-summary", h.TurnsSummary)
		}
	}
}

// reportingService adapts the turn store into the reporting service when the
// store supports range listing. The memory and Postgres stores both do.
func reportingService(store conversation.Store) *reporting.Service {
	if repo, ok := store.(reporting.Repository); ok {
		return reporting.NewService(repo)
	}
	return nil
}
