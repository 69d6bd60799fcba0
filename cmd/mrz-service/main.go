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

	"github.com/mrzscan/mrzscan-backend/internal/auth/jwt"
	"github.com/mrzscan/mrzscan-backend/internal/docprocessing/consumers"
	"github.com/mrzscan/mrzscan-backend/internal/docprocessing/domain"
	"github.com/mrzscan/mrzscan-backend/internal/docprocessing/events"
	"github.com/mrzscan/mrzscan-backend/internal/docprocessing/handler"
	"github.com/mrzscan/mrzscan-backend/internal/docprocessing/processor"
	"github.com/mrzscan/mrzscan-backend/internal/docprocessing/repository"
	"github.com/mrzscan/mrzscan-backend/internal/docprocessing/service"
	"github.com/mrzscan/mrzscan-backend/internal/docprocessing/storage"
	"github.com/mrzscan/mrzscan-backend/pkg/config"
	"github.com/mrzscan/mrzscan-backend/pkg/database"
	"github.com/mrzscan/mrzscan-backend/pkg/httputil"
	"github.com/mrzscan/mrzscan-backend/pkg/i18n"
	"github.com/mrzscan/mrzscan-backend/pkg/logger"
	"github.com/mrzscan/mrzscan-backend/pkg/messaging"
)

const serviceName = "mrz-service"

func main() {
	// Load configuration with validation (fails fast in production if required config is missing)
	cfg, err := config.LoadWithValidation(serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(serviceName, cfg.Server.Environment)
	log.Info().Msg("starting MRZ Service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	health := map[string]func(context.Context) map[string]string{}

	// Audit database (optional)
	var audit service.AuditWriter
	if cfg.Database.Enabled {
		db, err := database.New(ctx, &cfg.Database, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer db.Close()

		if err := db.Migrate(ctx, repository.Schema...); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate audit schema")
		}
		audit = repository.NewAuditRepository(db)
		health["database"] = db.Health
	}

	// Job store: Redis when several replicas share jobs, memory otherwise
	var jobs storage.JobStore
	if cfg.Redis.Enabled {
		client, err := storage.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer client.Close()

		store := storage.NewRedisStore(client, cfg.Redis.KeyPrefix, cfg.Scan.JobTTL)
		jobs = store
		health["redis"] = store.Health
	} else {
		store := storage.NewTempStorage(cfg.Scan.JobTTL)
		defer store.Close()
		jobs = store
	}

	// RabbitMQ (optional)
	var (
		rmq       *messaging.RabbitMQ
		publisher *events.ScanEventPublisher
	)
	if cfg.RabbitMQ.Enabled {
		rmq, err = messaging.New(ctx, &cfg.RabbitMQ, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
		}
		defer rmq.Close()

		if err := rmq.DeclareDeadLetterQueue(serviceName); err != nil {
			log.Fatal().Err(err).Msg("failed to declare dead letter queue")
		}

		publisher, err = events.NewScanEventPublisher(rmq, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create event publisher")
		}
		health["rabbitmq"] = func(context.Context) map[string]string { return rmq.Health() }
	}

	// Processors are tried in this order. Tesseract is nil unless built
	// with the ocr tag.
	processors := []processor.Processor{processor.NewTesseractProcessor(cfg.OCR)}
	if cfg.Vision.URL != "" {
		processors = append(processors, processor.NewVisionProcessor(cfg.Vision.URL, cfg.Vision.Timeout))
	}
	processors = append(processors, processor.NewTextProcessor())
	registry := processor.NewRegistry(processors...)
	log.Info().Strs("processors", registry.Names()).Msg("processors registered")

	// Initialize service
	svc := service.NewService(registry, jobs, audit, publisher, service.Options{
		Bands:         domain.Bands{High: cfg.Scan.HighAccuracy, Medium: cfg.Scan.MediumAccuracy},
		ReferenceYear: cfg.Scan.ReferenceYear,
		PadShortLines: cfg.Scan.PadShortLines,
	}, log)

	// Start scan request consumer
	if rmq != nil {
		scanConsumer, err := consumers.NewScanRequestConsumer(rmq, svc, publisher, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create scan request consumer")
		}
		if err := scanConsumer.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to start scan request consumer")
		}
	}

	mrzHandler := handler.NewHandler(svc, cfg.Scan.MaxUploadSize, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173", "http://localhost:8501"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "Accept-Language"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(i18n.Middleware)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status := map[string]interface{}{
			"status":     "healthy",
			"service":    serviceName,
			"processors": registry.Names(),
		}
		for name, check := range health {
			status[name] = check(r.Context())
		}
		httputil.JSON(w, http.StatusOK, status)
	})

	// API routes
	r.Route("/api/v1/mrz", func(r chi.Router) {
		if cfg.JWT.Enabled {
			r.Use(jwt.NewManager(&cfg.JWT).Middleware(log))
		}
		mrzHandler.Routes(r)
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

	// Cancel context to stop consumers
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	// Let running scans zero their uploads before exit
	svc.Wait()

	log.Info().Msg("server stopped")
}
