package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"

	"scribed/internal/audit"
	"scribed/internal/billing"
	"scribed/internal/compliance"
	"scribed/internal/fhir"
	"scribed/internal/orchestrator"
	"scribed/internal/platform/config"
	"scribed/internal/platform/httpserver"
	"scribed/internal/platform/logger"
	"scribed/internal/platform/metrics"
	"scribed/internal/platform/postgres"
	platformredis "scribed/internal/platform/redis"
	"scribed/internal/report"
	"scribed/internal/scribe"
	"scribed/internal/session"
	"scribed/internal/stt"
	"scribed/internal/textgen"
	"scribed/internal/token"
	httptransport "scribed/internal/transport/http"
)

// main wires dependencies and owns the server lifecycle. Business logic lives
// in the internal service packages.
func main() {
	// Optional .env for local development; environment variables win.
	_ = godotenv.Load()

	cfg := config.FromEnv()
	log := logger.New()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN}); err != nil {
			log.Warn("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	m := metrics.New()

	// Session store: Redis when configured, in-memory otherwise.
	var sessions session.Store
	var health func(ctx context.Context) error
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		sessions = session.NewRedisStore(redisClient.Client)
		health = redisClient.Health
	} else {
		log.Warn("redis not configured, session snapshots are in-memory only")
		sessions = session.NewMemoryStore()
	}

	// Audit sink: Postgres when configured, in-memory otherwise.
	var auditStore audit.Store
	if cfg.Postgres.URL != "" {
		db, err := postgres.New(cfg.Postgres)
		if err != nil {
			log.Error("postgres connection failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		pgStore := audit.NewPostgresStore(db)
		if err := pgStore.EnsureSchema(context.Background()); err != nil {
			log.Error("audit schema setup failed", "error", err)
			os.Exit(1)
		}
		auditStore = pgStore
	} else {
		log.Warn("database not configured, audit events are in-memory only")
		auditStore = audit.NewMemoryStore()
	}
	auditor := audit.NewPublisher(auditStore)

	// External collaborators.
	var gen textgen.Generator
	if cfg.TextGen.APIKey != "" {
		gen = textgen.NewOpenAIClient(cfg.TextGen)
	} else {
		log.Warn("text generation key not set, using stub generator")
		gen = textgen.Stub{}
	}

	var transcriber stt.Transcriber
	if cfg.STT.Backend == "stub" || cfg.STT.BaseURL == "" {
		transcriber = stt.Stub{}
	} else {
		transcriber = stt.NewHTTPTranscriber(cfg.STT)
	}

	scribeSvc := scribe.NewService(gen, log, m)
	complianceSvc, err := compliance.NewService(report.NewHTTPTransmitter(cfg.Report), auditor, log, m)
	if err != nil {
		log.Error("compliance service setup failed", "error", err)
		os.Exit(1)
	}
	billingSvc, err := billing.NewService(report.NewBillingTransmitter(cfg.Billing), auditor, log)
	if err != nil {
		log.Error("billing service setup failed", "error", err)
		os.Exit(1)
	}

	orch := orchestrator.New(orchestrator.Deps{
		Transcriber: transcriber,
		Scribe:      scribeSvc,
		Compliance:  complianceSvc,
		Billing:     billingSvc,
		FHIR:        fhir.NewClient(cfg.FHIR),
		Sessions:    sessions,
		Auditor:     auditor,
		Logger:      log,
		Metrics:     m,
		SessionTTL:  cfg.Session.TTL,
	})

	tokens := token.NewService(cfg.JWTSigningKey, "scribed", "scribed")
	handler := httptransport.New(orch, complianceSvc, billingSvc, log, health)
	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(handler, tokens))

	log.Info("starting scribed", "addr", cfg.Addr, "session_ttl", cfg.Session.TTL)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sentry.CaptureException(err)
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
