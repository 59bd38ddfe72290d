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

	"github.com/wahealth/sca-simulator/internal/adapters/cache"
	"github.com/wahealth/sca-simulator/internal/adapters/database"
	"github.com/wahealth/sca-simulator/internal/adapters/search"
	"github.com/wahealth/sca-simulator/internal/api/handlers"
	"github.com/wahealth/sca-simulator/internal/api/routes"
	"github.com/wahealth/sca-simulator/internal/application/services"
	"github.com/wahealth/sca-simulator/internal/domain/providers"
	"github.com/wahealth/sca-simulator/internal/domain/repositories"
	"github.com/wahealth/sca-simulator/internal/infrastructure/clients/authservice"
	"github.com/wahealth/sca-simulator/internal/infrastructure/clients/openai"
	"github.com/wahealth/sca-simulator/internal/infrastructure/clients/postgres"
	"github.com/wahealth/sca-simulator/internal/infrastructure/clients/redis"
	"github.com/wahealth/sca-simulator/internal/infrastructure/clients/typesense"
	"github.com/wahealth/sca-simulator/internal/infrastructure/clients/vapi"
	"github.com/wahealth/sca-simulator/internal/infrastructure/observability"
	"github.com/wahealth/sca-simulator/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Log.Environment, cfg.Log.Level)

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
	var cacheProvider providers.CacheProvider
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Printf("Warning: Failed to initialize Redis client: %v", err)
		// Continue without Redis - the application can work without caching
	} else {
		defer redisClient.Close()
		cacheProvider = cache.NewRedisAdapter(redisClient)
		log.Println("Redis client initialized successfully")
	}

	// Initialize Typesense client
	var searchRepo repositories.CaseSearchRepository
	if cfg.Typesense.URL != "" {
		typesenseClient, err := typesense.NewClient(&cfg.Typesense)
		if err != nil {
			log.Printf("Warning: Failed to initialize Typesense client: %v", err)
		} else {
			adapter := search.NewTypesenseAdapter(typesenseClient)
			if err := adapter.InitSchema(ctx); err != nil {
				log.Printf("Warning: Failed to initialize Typesense schema: %v", err)
			} else {
				searchRepo = adapter
				log.Println("Typesense client initialized successfully")
			}
		}
	}

	// Initialize OpenAI client
	var scorer providers.ConsultationScorer
	var generator providers.CaseGenerator
	var evaluatorProbe handlers.EvaluatorProbe
	openaiClient, err := openai.NewClient(&cfg.OpenAI)
	if err != nil {
		log.Printf("Warning: Failed to initialize OpenAI client: %v", err)
	} else {
		scorer = openaiClient
		generator = openaiClient
		evaluatorProbe = openaiClient
		log.Println("OpenAI client initialized successfully")
	}

	// Initialize Vapi client
	var callProvider providers.CallProvider
	vapiClient, err := vapi.NewClient(&cfg.Vapi)
	if err != nil {
		log.Printf("Warning: Failed to initialize Vapi client: %v", err)
	} else {
		callProvider = vapiClient
		log.Println("Vapi client initialized successfully")
	}

	// Initialize auth service client
	var authProvider providers.AuthProvider
	authClient, err := authservice.NewClient(&cfg.AuthService)
	if err != nil {
		log.Printf("Warning: Failed to initialize auth service client: %v", err)
	} else {
		authProvider = authClient
	}

	// Initialize adapters
	caseAdapter := database.NewCaseAdapter(pgClient)
	consultationAdapter := database.NewConsultationAdapter(pgClient)
	commentAdapter := database.NewPeerCommentAdapter(pgClient)
	userAdapter := database.NewUserAdapter(pgClient)
	statsAdapter := database.NewStatsAdapter(pgClient)

	// Initialize services
	caseService := services.NewCaseService(caseAdapter, searchRepo, generator)
	scoringService := services.NewScoringService(caseAdapter, consultationAdapter, scorer)
	peerReviewService := services.NewPeerReviewService(consultationAdapter, commentAdapter, cacheProvider, metrics)
	userService := services.NewUserService(userAdapter, authProvider)
	adminService := services.NewAdminService(statsAdapter, cacheProvider, metrics)

	// Initialize handlers
	caseHandler := handlers.NewCaseHandler(caseService, searchRepo != nil)
	var callRetriever handlers.CallRetriever
	var callProbe handlers.CallProbe
	if callProvider != nil {
		callRetriever = callProvider
		callProbe = callProvider
	}
	consultationHandler := handlers.NewConsultationHandler(scoringService, peerReviewService, callRetriever)
	userHandler := handlers.NewUserHandler(userService)
	adminHandler := handlers.NewAdminHandler(adminService, evaluatorProbe, callProbe)

	// Set up routes
	router := routes.NewRouter(
		caseHandler,
		consultationHandler,
		userHandler,
		adminHandler,
		cfg.CORS.AllowedOrigins,
		metrics,
	)
	handler := router.SetupRoutes()

	// Start the HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
