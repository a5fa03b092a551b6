package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	"github.com/seu-repo/voxline/internal/adapter/ai/elevenlabs"
	"github.com/seu-repo/voxline/internal/adapter/ai/gemini"
	"github.com/seu-repo/voxline/internal/adapter/ai/whisper"
	"github.com/seu-repo/voxline/internal/adapter/http/fiber/handlers"
	"github.com/seu-repo/voxline/internal/adapter/http/fiber/middleware"
	"github.com/seu-repo/voxline/internal/observability/telemetry"
	"github.com/seu-repo/voxline/internal/service/health"
	"github.com/seu-repo/voxline/internal/service/turn"
	"github.com/seu-repo/voxline/pkg/config"
)

const serviceName = "voxline"

func main() {
	// 1. Initialize Logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	// 2. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Info("Starting voxline",
		zap.String("service", serviceName),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	// 3. Initialize Tracing
	if cfg.Tracing.Enabled {
		tracerProvider, err := telemetry.InitTracer(serviceName, cfg.App.Version, cfg.Tracing.JaegerEndpoint)
		if err != nil {
			logger.Fatal("Failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			if err := tracerProvider.Shutdown(context.Background()); err != nil {
				logger.Error("Error shutting down tracer provider", zap.Error(err))
			}
		}()
	}

	// 4. Initialize Upstream Clients
	transcriber := whisper.NewClient(&whisper.Config{
		APIKey:   cfg.STT.APIKey,
		Model:    cfg.STT.Model,
		BaseURL:  cfg.STT.BaseURL,
		Language: cfg.STT.Language,
		Timeout:  cfg.STT.Timeout,
	}, logger)

	systemInstruction := cfg.LLM.SystemInstruction
	if systemInstruction == "" {
		systemInstruction = turn.PersonaInstructions
		if cfg.LLM.Structured {
			systemInstruction += turn.StructuredInstructions
		}
	}

	generator := gemini.NewClient(&gemini.Config{
		APIKey:            cfg.LLM.APIKey,
		Model:             cfg.LLM.Model,
		BaseURL:           cfg.LLM.BaseURL,
		SystemInstruction: systemInstruction,
		Structured:        cfg.LLM.Structured,
		MaxOutputTokens:   cfg.LLM.MaxOutputTokens,
		Temperature:       cfg.LLM.Temperature,
		Timeout:           cfg.LLM.Timeout,
	}, logger)

	synthesizer := elevenlabs.NewClient(&elevenlabs.Config{
		APIKey:       cfg.TTS.APIKey,
		VoiceID:      cfg.TTS.VoiceID,
		ModelID:      cfg.TTS.ModelID,
		BaseURL:      cfg.TTS.BaseURL,
		OutputFormat: cfg.TTS.OutputFormat,
		Stability:    cfg.TTS.Stability,
		Similarity:   cfg.TTS.Similarity,
		Timeout:      cfg.TTS.Timeout,
	}, logger)

	// 5. Initialize Turn Orchestrator
	turnService := turn.NewService(transcriber, generator, synthesizer, turn.Config{
		MinAudioBytes:           cfg.Pipeline.MinAudioBytes,
		StructuredFailurePolicy: cfg.Pipeline.StructuredFailurePolicy,
	}, logger)

	// 6. Initialize Health Service
	healthService := health.NewService(cfg.App.Version, logger)
	healthService.RegisterCredentialChecker("stt", cfg.STT.APIKey)
	healthService.RegisterCredentialChecker("llm", cfg.LLM.APIKey)
	healthService.RegisterCredentialChecker("tts", cfg.TTS.APIKey)

	// 7. Initialize Fiber HTTP Server
	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		ServerHeader:          serviceName,
		BodyLimit:             cfg.HTTP.BodyLimit,
		ReadTimeout:           cfg.HTTP.ReadTimeout,
		WriteTimeout:          cfg.HTTP.WriteTimeout,
		IdleTimeout:           cfg.HTTP.IdleTimeout,
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	// Global Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.NewCORS(cfg.CORS))

	// Health Check Endpoints
	health.NewFiberHandler(healthService).RegisterRoutes(app)

	// Metrics endpoint for Prometheus
	if cfg.Prometheus.Enabled {
		app.Get(cfg.Prometheus.Path, func(c *fiber.Ctx) error {
			// Adapt net/http handler to fasthttp for Fiber
			handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
			handler(c.Context())
			return nil
		})
	}

	// API v1 Routes
	v1 := app.Group("/api/v1")

	turnHandler := handlers.NewTurnHandler(turnService, logger)
	v1.Post("/turns", turnHandler.HandleTurn)

	// 8. Start HTTP Server
	go func() {
		logger.Info("Starting HTTP Server", zap.Int("port", cfg.HTTP.Port))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.HTTP.Port)); err != nil {
			logger.Fatal("HTTP Server failed", zap.Error(err))
		}
	}()

	// 9. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}
