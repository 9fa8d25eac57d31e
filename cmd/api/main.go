package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/georgemunganga/speakerdesk-backend/internal/config"
	"github.com/georgemunganga/speakerdesk-backend/internal/database"
	"github.com/georgemunganga/speakerdesk-backend/internal/events"
	"github.com/georgemunganga/speakerdesk-backend/internal/logger"
	"github.com/georgemunganga/speakerdesk-backend/internal/modules/auth"
	"github.com/georgemunganga/speakerdesk-backend/internal/modules/contract"
	"github.com/georgemunganga/speakerdesk-backend/internal/modules/deal"
	"github.com/georgemunganga/speakerdesk-backend/internal/modules/finance"
	"github.com/georgemunganga/speakerdesk-backend/internal/modules/invoice"
	"github.com/georgemunganga/speakerdesk-backend/internal/modules/project"
	"github.com/georgemunganga/speakerdesk-backend/internal/modules/user"
	"github.com/georgemunganga/speakerdesk-backend/internal/modules/vendor"
	"github.com/georgemunganga/speakerdesk-backend/internal/storage"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("load config")
	}

	log := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Environment,
		ServiceName: "speakerdesk-api",
		Version:     version,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	defer db.Close()

	if err := database.ApplyMigrations(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("apply migrations")
	}

	// ── Infrastructure ──────────────────────────────────────
	publisher := events.Nop()
	if cfg.NATS.URL != "" {
		pub, closeNATS, err := events.Connect(cfg.NATS.URL, log)
		if err != nil {
			log.Fatal().Err(err).Msg("connect nats")
		}
		defer closeNATS()
		publisher = pub
	} else {
		log.Warn().Msg("NATS_URL not set, lifecycle events are not published")
	}

	documents := storage.Nop()
	if cfg.Documents.Bucket != "" {
		store, err := storage.NewS3(ctx, storage.Config{
			Bucket:   cfg.Documents.Bucket,
			Region:   cfg.Documents.Region,
			Endpoint: cfg.Documents.Endpoint,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("configure document storage")
		}
		documents = store
	} else {
		log.Warn().Msg("DOCUMENTS_BUCKET not set, contract text is not stored")
	}

	if cfg.Auth.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(logger.RequestLogger(log))
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// ── Identity ────────────────────────────────────────────
	userRepo := user.NewPostgresRepository(db)
	userService := user.NewService(userRepo, log)

	authService := auth.NewService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, log)
	auth.NewHandler(authService).RegisterRoutes(router)

	// ── Sales pipeline ──────────────────────────────────────
	dealService := deal.NewService(deal.NewPostgresRepository(db), publisher, log,
		deal.WithDefaultCommission(cfg.DefaultCommissionPercent))

	contractService := contract.NewService(contract.NewPostgresRepository(db), dealService,
		documents, publisher, log, cfg.AgencyName)

	// ── Delivery & billing ──────────────────────────────────
	projectService := project.NewService(project.NewPostgresRepository(db), dealService, publisher, log)
	invoiceService := invoice.NewService(invoice.NewPostgresRepository(db), projectService, dealService, publisher, log)
	financeService := finance.NewService(dealService, projectService, log)

	// ── Vendor directory ────────────────────────────────────
	vendorService := vendor.NewService(
		vendor.NewPostgresRepository(db),
		vendor.NewSubscriberPostgresRepository(db),
		publisher, log)

	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(authService, cfg.Auth.BypassToken))

		user.NewHandler(userService).RegisterRoutes(r)
		deal.NewHandler(dealService).RegisterRoutes(r)
		contract.NewHandler(contractService).RegisterRoutes(r)
		project.NewHandler(projectService).RegisterRoutes(r)
		invoice.NewHandler(invoiceService).RegisterRoutes(r)
		finance.NewHandler(financeService).RegisterRoutes(r)
		vendor.NewHandler(vendorService).RegisterRoutes(r)
	})

	// ── Start Server ────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("speakerdesk API server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
