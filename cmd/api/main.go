package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voiceqa-platform/internal/answer/openai"
	"voiceqa-platform/internal/audit"
	"voiceqa-platform/internal/auth"
	"voiceqa-platform/internal/config"
	"voiceqa-platform/internal/conversation"
	"voiceqa-platform/internal/media"
	"voiceqa-platform/internal/speech/deepgram"
	"voiceqa-platform/internal/speech/elevenlabs"
	"voiceqa-platform/pkg/logger"
	"voiceqa-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	// Persistence
	turnStore, err := conversation.NewPostgresStore(db)
	if err != nil {
		log.Error("turn store init failed", "err", err)
		os.Exit(1)
	}
	if err := turnStore.EnsureSchema(rootCtx); err != nil {
		log.Error("turn store schema failed", "err", err)
		os.Exit(1)
	}

	artifactRepo, err := media.NewPostgresRepository(db)
	if err != nil {
		log.Error("artifact repo init failed", "err", err)
		os.Exit(1)
	}
	if err := artifactRepo.EnsureSchema(rootCtx); err != nil {
		log.Error("artifact schema failed", "err", err)
		os.Exit(1)
	}

	auditRepo := audit.NewPostgresRepository(db)
	if err := auditRepo.EnsureSchema(rootCtx); err != nil {
		log.Error("audit schema failed", "err", err)
		os.Exit(1)
	}
	trail := audit.NewService(auditRepo)

	publisher, err := media.NewPublisher(artifactRepo, media.NewRedisCache(rdb, 0), cfg.App.PublicBaseURL)
	if err != nil {
		log.Error("publisher init failed", "err", err)
		os.Exit(1)
	}

	// Speech and language providers
	stt, err := deepgram.New(cfg.Speech.DeepgramAPIKey)
	if err != nil {
		log.Error("deepgram init failed", "err", err)
		os.Exit(1)
	}

	ttsOpts := []elevenlabs.Option{}
	if cfg.TTS.Model != "" {
		ttsOpts = append(ttsOpts, elevenlabs.WithModel(cfg.TTS.Model))
	}
	tts, err := elevenlabs.New(cfg.TTS.ElevenLabsAPIKey, cfg.TTS.VoiceID, ttsOpts...)
	if err != nil {
		log.Error("elevenlabs init failed", "err", err)
		os.Exit(1)
	}

	llmOpts := []openai.Option{}
	if cfg.LLM.MaxTokens > 0 {
		llmOpts = append(llmOpts, openai.WithMaxTokens(int64(cfg.LLM.MaxTokens)))
	}
	generator, err := openai.New(cfg.LLM.OpenAIAPIKey, cfg.LLM.Model, llmOpts...)
	if err != nil {
		log.Error("openai init failed", "err", err)
		os.Exit(1)
	}

	orchestrator, err := conversation.NewOrchestrator(conversation.OrchestratorConfig{
		STT:       stt,
		Generator: generator,
		TTS:       tts,
		Publisher: publisher,
		Store:     turnStore,
		Trail:     trail,
		Builder:   conversation.NewResponseBuilder(cfg.App.PublicBaseURL + "/call/turn"),
		Timeouts: conversation.StageTimeouts{
			Transcribe: cfg.Pipeline.TranscribeTimeout,
			Answer:     cfg.Pipeline.AnswerTimeout,
			Synthesize: cfg.Pipeline.SynthesizeTimeout,
			Publish:    cfg.Pipeline.PublishTimeout,
			Store:      cfg.Pipeline.StoreTimeout,
		},
		RecordingSuffix: cfg.Speech.RecordingURLSuffix,
	})
	if err != nil {
		log.Error("orchestrator init failed", "err", err)
		os.Exit(1)
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, routeDeps{
		cfg:          cfg,
		authManager:  authManager,
		orchestrator: orchestrator,
		claimer:      utils.NewRecordingClaimer(rdb, 0),
		publisher:    publisher,
		store:        turnStore,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}

	_ = logger.ShutdownFlush(shutdownCtx, 2*time.Second)
}
