package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/predicare/voicebot/internal/analyze"
	"github.com/predicare/voicebot/internal/config"
	"github.com/predicare/voicebot/internal/consultation"
	"github.com/predicare/voicebot/internal/delivery"
	"github.com/predicare/voicebot/internal/speech"
	"github.com/predicare/voicebot/internal/storage"
	"github.com/predicare/voicebot/internal/stt"
	"github.com/predicare/voicebot/internal/telegram"
	"github.com/predicare/voicebot/internal/web"
)

func main() {

	// =========================================================================
	// ENV / CONFIG
	// =========================================================================

	_ = godotenv.Load()

	cfg := config.MustLoad()

	baseLogger, _ := zap.NewProduction()
	defer baseLogger.Sync()
	zl := logger.NewZapLogger(baseLogger.Sugar())

	// =========================================================================
	// INFRASTRUCTURE
	// =========================================================================

	var store storage.ArtifactStore
	var err error

	if cfg.S3Configured() {
		store, err = storage.NewS3Store(cfg)
		if err != nil {
			log.Fatalf("failed to init s3 store: %v", err)
		}
	} else {
		store, err = storage.NewLocalStore(cfg.AudioDir, "/audio")
		if err != nil {
			log.Fatalf("failed to init local store: %v", err)
		}
	}

	// =========================================================================
	// CLIENTS (STT / LLM / TTS)
	// =========================================================================

	sttClient := stt.NewGroqClient(cfg)
	chatClient := analyze.NewGroqChatClient(cfg)
	ttsClient := speech.NewElevenLabsClient(cfg)

	// =========================================================================
	// SERVICES
	// =========================================================================

	analyzeService := analyze.NewService(chatClient, zl)
	speechService := speech.NewService(ttsClient, store)

	consultService := consultation.NewService(
		sttClient,      // Whisper via Groq
		analyzeService, // vision + text-only fallback
		speechService,  // ElevenLabs
		zl,
	)

	// =========================================================================
	// HTTP ROUTER
	// =========================================================================

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))
	r.Use(httprate.LimitByIP(60, time.Minute))

	handler := delivery.NewHandler(
		cfg,
		consultService,
		sttClient,
		analyzeService,
		speechService,
		store,
		zl,
	)

	delivery.RegisterRoutes(r, handler)

	r.Get("/", web.Index)

	// =========================================================================
	// TELEGRAM BOT
	// =========================================================================

	if cfg.TelegramConfigured() {
		botApp, err := telegram.NewBotApp(cfg, consultService, store)
		if err != nil {
			log.Fatalf("failed to init telegram bot: %v", err)
		}

		go botApp.Run(context.Background())
	}

	// =========================================================================
	// START SERVER
	// =========================================================================

	addr := ":" + cfg.Port
	zl.Log(logger.LogEntry{
		Level:   "info",
		Message: "listening at " + addr,
		Service: "voicebot",
	})

	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
