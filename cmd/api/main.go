package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nerve-health/referral/backend/internal/adapters/cache"
	"github.com/nerve-health/referral/backend/internal/adapters/database"
	"github.com/nerve-health/referral/backend/internal/adapters/events"
	"github.com/nerve-health/referral/backend/internal/adapters/providers/routing"
	"github.com/nerve-health/referral/backend/internal/adapters/search"
	"github.com/nerve-health/referral/backend/internal/api/handlers"
	"github.com/nerve-health/referral/backend/internal/api/routes"
	"github.com/nerve-health/referral/backend/internal/application/services"
	"github.com/nerve-health/referral/backend/internal/domain/providers"
	"github.com/nerve-health/referral/backend/internal/domain/repositories"
	"github.com/nerve-health/referral/backend/internal/infrastructure/clients/groq"
	"github.com/nerve-health/referral/backend/internal/infrastructure/clients/postgres"
	"github.com/nerve-health/referral/backend/internal/infrastructure/clients/redis"
	"github.com/nerve-health/referral/backend/internal/infrastructure/clients/typesense"
	"github.com/nerve-health/referral/backend/internal/infrastructure/observability"
	"github.com/nerve-health/referral/backend/pkg/auth"
	"github.com/nerve-health/referral/backend/pkg/config"
)

func main() {

	// Load configuration

	cfg, err := config.Load()

	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	var shutdown func(context.Context) error
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err = observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Printf("Warning: Failed to set up OpenTelemetry: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Printf("Error shutting down OpenTelemetry: %v", err)
				}
			}()
			log.Println("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL client: %v", err)
	}
	defer pgClient.Close()
	log.Println("PostgreSQL client initialized successfully")

	// Initialize Redis client
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Printf("Warning: Failed to initialize Redis client: %v", err)
		// Continue without Redis - the application can work without caching
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Println("Redis client initialized successfully")
	}

	// Initialize Typesense client
	typesenseClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		log.Printf("Warning: Failed to initialize Typesense client: %v", err)
		typesenseClient = nil
	} else {
		log.Println("Typesense client initialized successfully")
	}

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	// Initialize event bus for real-time updates
	var eventBus providers.EventBus
	if redisClient != nil {
		eventBus = events.NewRedisEventBus(redisClient)
		log.Println("Event bus initialized successfully")
	} else {
		log.Println("Event bus disabled (Redis not available)")
	}

	// Initialize adapters

	// Create base hospital adapter
	baseHospitalAdapter := database.NewHospitalAdapter(pgClient)

	// Wrap with caching if Redis is available (for read performance optimization)
	var hospitalAdapter repositories.HospitalRepository
	if cacheProvider != nil {
		hospitalAdapter = database.NewCachedHospitalAdapter(baseHospitalAdapter, cacheProvider)
		log.Println("Hospital adapter wrapped with caching layer")
	} else {
		hospitalAdapter = baseHospitalAdapter
		log.Println("Hospital adapter running without cache (Redis unavailable)")
	}

	patientAdapter := database.NewPatientAdapter(pgClient)
	historyAdapter := database.NewTriageHistoryAdapter(pgClient)
	userAdapter := database.NewUserAdapter(pgClient)

	var historySearchRepo repositories.TriageHistorySearchRepository
	if typesenseClient != nil {
		adapter := search.NewHistorySearchAdapter(typesenseClient)

		// Ensure schema exists
		if err := typesenseClient.InitSchema(context.Background()); err != nil {
			log.Printf("Warning: Failed to init Typesense schema: %v", err)
		}

		historySearchRepo = adapter
	}

	// Initialize the LLM provider; without an API key every referral
	// runs on the deterministic heuristic
	var referralProvider providers.ReferralProvider
	if cfg.Groq.APIKey == "" {
		log.Println("Warning: GROQ_API_KEY is not set; referrals use heuristic matching only")
	} else {
		groqClient, err := groq.NewClient(&cfg.Groq)
		if err != nil {
			log.Printf("Warning: Failed to initialize Groq client: %v", err)
		} else {
			referralProvider = groqClient
		}
	}

	routeProvider := routing.NewHaversineProvider()

	// Initialize services

	referralOpts := []services.ReferralServiceOption{
		services.WithTriageHistory(historyAdapter, historySearchRepo),
		services.WithMetrics(metrics),
	}
	if referralProvider != nil {
		referralOpts = append(referralOpts, services.WithReferralProvider(referralProvider))
	}
	if eventBus != nil {
		referralOpts = append(referralOpts, services.WithEventBus(eventBus))
	}

	referralService := services.NewReferralService(
		hospitalAdapter,
		patientAdapter,
		routeProvider,
		referralOpts...,
	)

	triageService := services.NewTriageService(referralProvider)
	hospitalService := services.NewHospitalService(hospitalAdapter, eventBus)

	passwordManager := auth.NewPasswordManager()
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
	authService := services.NewAuthService(userAdapter, baseHospitalAdapter, passwordManager, tokenManager)

	// Initialize handlers

	referralHandler := handlers.NewReferralHandler(referralService)
	triageHandler := handlers.NewTriageHandler(triageService, referralService)
	hospitalHandler := handlers.NewHospitalHandler(hospitalService)
	authHandler := handlers.NewAuthHandler(authService)

	// Set up router

	router := routes.NewRouter(
		referralHandler,
		triageHandler,
		hospitalHandler,
		authHandler,
		tokenManager,
		metrics,
	)

	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	// Close event bus
	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Printf("Error closing event bus: %v", err)
		}
	}

	log.Println("Server stopped")
}
