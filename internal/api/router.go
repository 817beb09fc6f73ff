package api

import (
	"net/http"

	"github.com/amlaw/client-portal/internal/api/handler"
	customMiddleware "github.com/amlaw/client-portal/internal/api/middleware"
	"github.com/amlaw/client-portal/internal/config"
	"github.com/amlaw/client-portal/internal/llm"
	"github.com/amlaw/client-portal/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Dependencies are the wired services and infrastructure the router serves
type Dependencies struct {
	AuthService       *service.AuthService
	AnalysisService   *service.AnalysisService
	OnboardingService *service.OnboardingService
	LLMRouter         *llm.Router

	// LoginLimiter is keyed by remote address, AnalysisLimiter by client.
	LoginLimiter    customMiddleware.Limiter
	AnalysisLimiter customMiddleware.Limiter

	// ReadyChecks are pinged by /ready
	ReadyChecks map[string]handler.Pinger
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	if cfg.Server.MiddlewareTimeout > 0 {
		r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))
	}

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Request-ID", "Content-Disposition", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:         300,
	}))

	// Initialize handlers
	authHandler := handler.NewAuthHandler(deps.AuthService)
	analysisHandler := handler.NewAnalysisHandler(deps.AnalysisService)
	onboardingHandler := handler.NewOnboardingHandler(deps.OnboardingService)

	authMiddleware := customMiddleware.NewAuthMiddleware(deps.AuthService)
	loginLimit := customMiddleware.NewRateLimitMiddleware(deps.LoginLimiter, customMiddleware.ByRemoteIP)
	analysisLimit := customMiddleware.NewRateLimitMiddleware(deps.AnalysisLimiter, customMiddleware.BySession(deps.AuthService.Fingerprint))

	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(deps.ReadyChecks))

		// Auth routes (public)
		r.With(loginLimit.Limit).Post("/auth/login", authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/auth/logout", authHandler.Logout)
			r.Get("/me", authHandler.Me)
			r.Get("/llm-providers", handler.ListLLMProviders(deps.LLMRouter))

			r.Route("/analysis", func(r chi.Router) {
				r.Get("/options", analysisHandler.Options)
				r.Get("/", analysisHandler.Get)
				r.With(analysisLimit.Limit).Post("/", analysisHandler.Analyze)
				r.Delete("/", analysisHandler.Clear)
			})

			r.Route("/onboarding", func(r chi.Router) {
				r.Get("/", onboardingHandler.Get)
				r.Post("/", onboardingHandler.Submit)
				r.Get("/mandate", onboardingHandler.Mandate)
				r.Post("/complete", onboardingHandler.Complete)
			})
		})
	})

	return r
}
