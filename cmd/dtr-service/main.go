package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dtrkit/dtr-backend/internal/dtr/events"
	"github.com/dtrkit/dtr-backend/internal/dtr/handler"
	"github.com/dtrkit/dtr-backend/internal/dtr/render"
	"github.com/dtrkit/dtr-backend/internal/dtr/repository"
	"github.com/dtrkit/dtr-backend/internal/dtr/service"
	"github.com/dtrkit/dtr-backend/pkg/auth"
	"github.com/dtrkit/dtr-backend/pkg/config"
	"github.com/dtrkit/dtr-backend/pkg/database"
	"github.com/dtrkit/dtr-backend/pkg/httputil"
	"github.com/dtrkit/dtr-backend/pkg/logger"
	"github.com/dtrkit/dtr-backend/pkg/messaging"
)

func main() {
	// Load configuration
	cfg, err := config.LoadWithValidation("dtr-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("dtr-service", cfg.Server.Environment)
	log.Info().Msg("starting DTR Service")

	// Connect to database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Connect to RabbitMQ when enabled; conversions still work without it
	healthChecks := map[string]handler.HealthChecker{
		"database": db.Health,
	}

	var publisher events.Publisher
	if cfg.RabbitMQ.Enabled {
		rmq, err := messaging.New(&cfg.RabbitMQ, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
		}
		defer rmq.Close()

		pub, err := messaging.NewPublisher(rmq, messaging.ExchangeDTREvents, "dtr-service", log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create event publisher")
		}
		publisher = pub

		healthChecks["rabbitmq"] = func(context.Context) map[string]string {
			return rmq.Health()
		}
	}

	eventPublisher := events.NewConversionEventPublisher(publisher, log)

	// Initialize repository, service, handlers
	historyRepo := repository.NewConversionLogRepository(db)

	conversionService := service.NewConversionService(
		&cfg.Conversion,
		render.NewExcelRenderer(log),
		historyRepo,
		eventPublisher,
		log,
	)

	conversionHandler := handler.NewConversionHandler(
		conversionService,
		historyRepo,
		cfg.Conversion.MaxUploadBytes,
		log,
	)
	healthHandler := handler.NewHealthHandler(healthChecks)

	jwtManager := auth.NewManager(&cfg.JWT)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", healthHandler.Health)

	r.Route("/api/v1/conversions", func(r chi.Router) {
		r.Post("/", conversionHandler.Upload)

		// History is read-protected; uploads come from the kiosk clients
		// that have no credentials.
		r.Group(func(r chi.Router) {
			r.Use(jwtManager.Middleware)
			r.Get("/", conversionHandler.History)
		})
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
