// Package main wires the cityline service: configuration, stores, background
// workers, module services and the HTTP router. Business logic lives in the
// internal module packages; this file only assembles them and owns the
// process lifecycle.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"cityline/internal/audit"
	"cityline/internal/complaint"
	complaintservice "cityline/internal/complaint/service"
	complaintstore "cityline/internal/complaint/store/complaint"
	forwardingstore "cityline/internal/complaint/store/forwarding"
	"cityline/internal/directory"
	directoryservice "cityline/internal/directory/service"
	departmentstore "cityline/internal/directory/store/department"
	institutionstore "cityline/internal/directory/store/institution"
	"cityline/internal/notify"
	notifymetrics "cityline/internal/notify/metrics"
	"cityline/internal/platform/config"
	"cityline/internal/platform/httpserver"
	"cityline/internal/platform/kafka"
	"cityline/internal/platform/logger"
	platformredis "cityline/internal/platform/redis"
	"cityline/internal/platform/token"
	"cityline/internal/report"
	reportservice "cityline/internal/report/service"
	"cityline/internal/report/store/performance"
	httptransport "cityline/internal/transport/http"
)

// auditQueueSize bounds the in-process audit inbox. Emit never blocks; a
// full inbox drops events with a log line.
const auditQueueSize = 256

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.FromEnv()
	log := logger.New(logger.Options{Level: cfg.Server.LogLevel, Format: cfg.Server.LogFormat})

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Persistence. An empty DSN runs everything on in-memory stores, which
	// keeps local development and CI dependency-free.
	var (
		db               *sql.DB
		complaintStore   complaintservice.ComplaintStore
		forwardingStore  complaintservice.ForwardingStore
		institutionStore directoryservice.InstitutionStore
		departmentStore  directoryservice.DepartmentStore
		auditStore       audit.Store
		reportSource     reportservice.Source
	)
	if cfg.Database.DSN != "" {
		var err error
		db, err = openDatabase(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		complaintStore = complaintstore.NewPostgres(db)
		forwardingStore = forwardingstore.NewPostgres(db)
		institutionStore = institutionstore.NewPostgres(db)
		departmentStore = departmentstore.NewPostgres(db)
		auditStore = audit.NewPostgresStore(db)

		pool, err := performance.NewPool(ctx, cfg.Database.ReportDSN)
		if err != nil {
			return err
		}
		defer pool.Close()
		reportSource = performance.NewPostgres(pool)

		log.Info("using postgres stores")
	} else {
		complaints := complaintstore.NewInMemory()
		institutions := institutionstore.NewInMemory()
		complaintStore = complaints
		forwardingStore = forwardingstore.NewInMemory()
		institutionStore = institutions
		departmentStore = departmentstore.NewInMemory()
		auditStore = audit.NewInMemoryStore()
		reportSource = performance.NewInMemory(institutions, complaints)

		log.Info("no database configured, using in-memory stores")
	}

	// Optional report cache.
	var redisClient *platformredis.Client
	if cfg.Redis.URL != "" {
		var err error
		redisClient, err = platformredis.New(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer redisClient.Close()
	}

	// Optional audit relay into Kafka. The relay reads the transactional
	// outbox, so it needs the database.
	var (
		producer *kafka.Producer
		relay    *audit.OutboxRelay
	)
	if len(cfg.Kafka.Brokers) > 0 {
		if db == nil {
			log.Warn("kafka brokers configured without a database, audit relay disabled")
		} else {
			var err error
			producer, err = kafka.NewProducer(ctx, cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
			if err != nil {
				return fmt.Errorf("connect kafka: %w", err)
			}
			defer producer.Close()
			if err := producer.EnsureTopic(ctx); err != nil {
				return fmt.Errorf("ensure audit topic: %w", err)
			}
			relay = audit.NewOutboxRelay(db, producer, log)
		}
	}

	// Audit pipeline: services emit into the inbox, the worker persists.
	inbox := make(chan audit.Event, auditQueueSize)
	publisher := audit.NewPublisher(inbox, log)
	worker := audit.NewWorker(auditStore, inbox, log)

	// Notification dispatch.
	dispatcher := notify.NewManager(buildSenders(cfg.Notifications, log),
		notify.WithLogger(log),
		notify.WithMetrics(notifymetrics.New()),
		notify.WithQueueSize(cfg.Notifications.QueueSize),
		notify.WithWorkers(cfg.Notifications.Workers),
		notify.WithMaxRetries(cfg.Notifications.MaxRetries),
		notify.WithRetryBackoff(cfg.Notifications.RetryBackoff),
		notify.WithRateLimit(cfg.Notifications.RatePerSecond),
	)

	// Authentication.
	tokenService := token.NewService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer, cfg.Server.JWTAudience)
	validator := token.NewAdapter(tokenService)

	// Module services.
	directorySvc := directory.NewService(institutionStore, departmentStore,
		directoryservice.WithLogger(log),
		directoryservice.WithAuditPublisher(publisher),
		directoryservice.WithMetrics(directory.NewMetrics()),
	)

	complaintOpts := []complaintservice.Option{
		complaintservice.WithLogger(log),
		complaintservice.WithAuditPublisher(publisher),
		complaintservice.WithNotifier(dispatcher),
		complaintservice.WithMetrics(complaint.NewMetrics()),
	}
	if db != nil {
		complaintOpts = append(complaintOpts, complaintservice.WithDB(db))
	}
	complaintSvc := complaint.NewService(complaintStore, forwardingStore, directorySvc, complaintOpts...)

	reportOpts := []reportservice.Option{
		reportservice.WithLogger(log),
		reportservice.WithMetrics(report.NewMetrics()),
	}
	if redisClient != nil {
		reportOpts = append(reportOpts, reportservice.WithCache(report.NewRedisCache(redisClient.Client, cfg.ReportCacheTTL)))
	}
	reportSvc := report.NewService(reportSource, reportOpts...)

	// HTTP surface.
	checks := map[string]httptransport.HealthChecker{}
	if db != nil {
		checks["postgres"] = httptransport.HealthFunc(db.PingContext)
	}
	if redisClient != nil {
		checks["redis"] = redisClient
	}
	if producer != nil {
		checks["kafka"] = producer
	}

	router := httptransport.New(log, checks,
		complaint.NewHandler(complaintSvc, log, validator),
		directory.NewHandler(directorySvc, log, validator),
		report.NewHandler(reportSvc, log, validator),
	)
	srv := httpserver.New(cfg.Server.Addr, router)

	// Everything below runs until a signal or the first hard failure.
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return ignoreCanceled(worker.Run(ctx)) })
	g.Go(func() error { return ignoreCanceled(dispatcher.Run(ctx)) })
	if relay != nil {
		g.Go(func() error { return ignoreCanceled(relay.Run(ctx)) })
	}
	g.Go(func() error {
		log.Info("cityline listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openDatabase(ctx context.Context, cfg config.Database) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// buildSenders assembles the notification channels from configuration.
// Without any provider the log sender keeps notifications observable.
func buildSenders(cfg config.Notifications, log *slog.Logger) []notify.Sender {
	var senders []notify.Sender
	if cfg.SendGridAPIKey != "" {
		senders = append(senders, notify.NewEmailSender(cfg.SendGridAPIKey, cfg.SendGridFrom))
	}
	if cfg.TwilioSID != "" && cfg.TwilioAuthToken != "" && cfg.TwilioFrom != "" {
		senders = append(senders, notify.NewSMSSender(cfg.TwilioSID, cfg.TwilioAuthToken, cfg.TwilioFrom))
	}
	if cfg.WebhookURL != "" {
		senders = append(senders, notify.NewWebhookSender(cfg.WebhookURL, log))
	}
	if len(senders) == 0 {
		senders = append(senders, notify.NewLogSender(log))
	}
	return senders
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
