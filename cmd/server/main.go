package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amlaw/client-portal/internal/analysis"
	"github.com/amlaw/client-portal/internal/api"
	"github.com/amlaw/client-portal/internal/api/handler"
	"github.com/amlaw/client-portal/internal/api/middleware"
	"github.com/amlaw/client-portal/internal/config"
	"github.com/amlaw/client-portal/internal/credential"
	credmongo "github.com/amlaw/client-portal/internal/credential/mongo"
	credmysql "github.com/amlaw/client-portal/internal/credential/mysql"
	credpostgres "github.com/amlaw/client-portal/internal/credential/postgres"
	credsqlite "github.com/amlaw/client-portal/internal/credential/sqlite"
	"github.com/amlaw/client-portal/internal/domain"
	"github.com/amlaw/client-portal/internal/llm"
	"github.com/amlaw/client-portal/internal/llm/anthropic"
	"github.com/amlaw/client-portal/internal/llm/deepseek"
	"github.com/amlaw/client-portal/internal/llm/gemini"
	"github.com/amlaw/client-portal/internal/llm/ollama"
	"github.com/amlaw/client-portal/internal/llm/openai"
	"github.com/amlaw/client-portal/internal/llm/vertex"
	"github.com/amlaw/client-portal/internal/logger"
	"github.com/amlaw/client-portal/internal/repository/firestore"
	"github.com/amlaw/client-portal/internal/repository/logrecord"
	"github.com/amlaw/client-portal/internal/repository/memory"
	"github.com/amlaw/client-portal/internal/repository/postgres"
	"github.com/amlaw/client-portal/internal/repository/redis"
	"github.com/amlaw/client-portal/internal/security"
	"github.com/amlaw/client-portal/internal/service"
	"github.com/amlaw/client-portal/internal/storage"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load .env file - try multiple locations
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logCloser, err := logger.Setup(cfg.Logging, cfg.IsDevelopment())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Msg("Starting AM Law client portal")

	ctx := context.Background()
	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				log.Warn().Err(err).Msg("close failed")
			}
		}
	}()

	// Security
	jwtManager := security.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)
	fp, err := security.NewFingerprinter(cfg.Auth.FingerprintKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid fingerprint key")
	}

	// Credential store
	registry := credential.NewRegistry()
	registry.Register("static", credential.OpenStatic)
	registry.Register("postgres", credpostgres.Open)
	registry.Register("mysql", credmysql.Open)
	registry.Register("sqlite", credsqlite.Open)
	registry.Register("mongo", credmongo.Open)

	credentials, err := registry.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Credentials.Driver).Msg("Failed to open credential store")
	}
	closers = append(closers, credentials)

	// Sessions and rate limiting
	var (
		sessions        domain.SessionStore
		loginLimiter    middleware.Limiter
		analysisLimiter middleware.Limiter
	)
	switch cfg.Session.Store {
	case "redis":
		redisClient, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		closers = append(closers, redisClient)

		var encryptor *security.Encryptor
		if cfg.Session.EncryptionKey != "" {
			encryptor, err = security.NewEncryptorFromBase64(cfg.Session.EncryptionKey)
			if err != nil {
				log.Fatal().Err(err).Msg("Invalid session encryption key")
			}
		}
		sessions = redis.NewSessionStore(redisClient, cfg.Session.TTL, encryptor)
		loginLimiter = redis.NewRateLimiter(redisClient, "login", cfg.Security.LoginRateLimit.RequestsPerMinute, cfg.Security.LoginRateLimit.Burst)
		analysisLimiter = redis.NewRateLimiter(redisClient, "analysis", cfg.Security.RateLimit.RequestsPerMinute, cfg.Security.RateLimit.Burst)
	default:
		log.Warn().Msg("Using in-memory session store; sessions are lost on restart")
		sessions = memory.NewSessionStore(cfg.Session.TTL)
		loginLimiter = memory.NewRateLimiter(cfg.Security.LoginRateLimit.RequestsPerMinute, cfg.Security.LoginRateLimit.Burst)
		analysisLimiter = memory.NewRateLimiter(cfg.Security.RateLimit.RequestsPerMinute, cfg.Security.RateLimit.Burst)
	}

	// LLM providers
	llmRouter := llm.NewRouter(cfg.LLM.DefaultProvider)
	log.Info().Msgf("Initializing LLM providers. Default: %s", cfg.LLM.DefaultProvider)

	if cfg.LLM.Gemini.APIKey != "" {
		llmRouter.RegisterProvider(gemini.NewProvider(cfg.LLM.Gemini))
	}
	if cfg.LLM.Vertex.ProjectID != "" {
		vertexProvider := vertex.NewProvider(cfg.LLM.Vertex)
		closers = append(closers, vertexProvider)
		llmRouter.RegisterProvider(vertexProvider)
	}
	if cfg.LLM.OpenAI.APIKey != "" {
		var opts []openai.Option
		if cfg.LLM.OpenAI.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.LLM.OpenAI.BaseURL))
		}
		llmRouter.RegisterProvider(openai.NewProvider(cfg.LLM.OpenAI.APIKey, cfg.LLM.OpenAI.Model, opts...))
	}
	if cfg.LLM.Anthropic.APIKey != "" {
		llmRouter.RegisterProvider(anthropic.NewProvider(cfg.LLM.Anthropic.APIKey, cfg.LLM.Anthropic.Model, cfg.LLM.Anthropic.BaseURL))
	}
	if cfg.LLM.Ollama.Host != "" {
		log.Info().Str("host", cfg.LLM.Ollama.Host).Msg("Registering Ollama provider")
		llmRouter.RegisterProvider(ollama.NewProvider(cfg.LLM.Ollama.Host, cfg.LLM.Ollama.DefaultModel))
	}
	if cfg.LLM.DeepSeek.APIKey != "" {
		var opts []openai.Option
		if cfg.LLM.DeepSeek.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.LLM.DeepSeek.BaseURL))
		}
		llmRouter.RegisterProvider(deepseek.NewProvider(cfg.LLM.DeepSeek.APIKey, cfg.LLM.DeepSeek.Model, opts...))
	}
	if _, err := llmRouter.GetProvider(""); err != nil {
		log.Warn().Err(err).Msg("Default LLM provider unavailable; analyses will fail until one is configured")
	}

	// Document storage
	var documents storage.DocumentStore
	switch cfg.Storage.Driver {
	case "gcs":
		gcs, err := storage.NewGCSStore(ctx, cfg.Storage.GCSBucket)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open GCS bucket")
		}
		closers = append(closers, gcs)
		documents = gcs
	default:
		local, err := storage.NewLocalStore(cfg.Storage.LocalDir)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open document directory")
		}
		documents = local
	}

	// Onboarding records
	readyChecks := map[string]handler.Pinger{
		"sessions":    sessions,
		"credentials": credentials,
	}
	var records domain.OnboardingRecordRepository
	switch cfg.Records.Driver {
	case "postgres":
		if err := postgres.RunMigrations(cfg.Database.DSN()); err != nil {
			log.Fatal().Err(err).Msg("Failed to run migrations")
		}
		db, err := postgres.Open(ctx, cfg.Database, "records")
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		closers = append(closers, closerFunc(func() error { db.Close(); return nil }))
		readyChecks["database"] = db
		records = postgres.NewOnboardingRecordRepository(db)
	case "firestore":
		client, err := firestore.NewClient(ctx, cfg.Records.ProjectID)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Firestore client")
		}
		closers = append(closers, client)
		records = firestore.NewOnboardingRecordRepository(client, cfg.Records.Collection)
	default:
		records = logrecord.New(fp)
	}

	// Initialize services
	authService := service.NewAuthService(credentials, sessions, jwtManager, fp)
	analysisService := service.NewAnalysisService(sessions, analysis.NewDispatcher(cfg.Analysis.CallTimeout), llmRouter)
	onboardingService := service.NewOnboardingService(
		sessions,
		credentials,
		documents,
		storage.NewInspector(cfg.Storage.MaxUploadSize, cfg.Storage.ValidatePDF),
		records,
		fp,
		cfg.Storage.MandateKey,
		cfg.Storage.MandateFilename,
	)

	// Initialize router
	router := api.NewRouter(cfg, api.Dependencies{
		AuthService:       authService,
		AnalysisService:   analysisService,
		OnboardingService: onboardingService,
		LLMRouter:         llmRouter,
		LoginLimiter:      loginLimiter,
		AnalysisLimiter:   analysisLimiter,
		ReadyChecks:       readyChecks,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		log.Error().Err(err).Msg("Server failed")
	}

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
