// Command server runs the admin gateway: the authenticated HTTP facade the
// admin console talks to instead of the upstream API directly.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"admin-gateway/internal/account"
	"admin-gateway/internal/assignment"
	"admin-gateway/internal/audit"
	"admin-gateway/internal/directory"
	"admin-gateway/internal/jwttoken"
	"admin-gateway/internal/lockout"
	"admin-gateway/internal/platform/config"
	"admin-gateway/internal/platform/httpserver"
	"admin-gateway/internal/platform/logger"
	"admin-gateway/internal/platform/metrics"
	platformredis "admin-gateway/internal/platform/redis"
	"admin-gateway/internal/session"
	httptransport "admin-gateway/internal/transport/http"
	"admin-gateway/internal/upstream"
	id "admin-gateway/pkg/domain"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Server.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var sessionStore session.Store = session.NewMemory()
	var lockoutStore lockout.Store = lockout.NewMemory()
	if redisClient != nil {
		sessionStore = session.NewRedis(redisClient.Client)
		lockoutStore = lockout.NewRedis(redisClient.Client)
		log.Info("using redis-backed session and lockout stores")
	}

	var auditStore audit.Store = audit.NewMemory()
	if cfg.AuditDB.DSN != "" {
		db, err := sql.Open("postgres", cfg.AuditDB.DSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return err
		}
		auditStore = audit.NewPostgres(db)
		log.Info("using postgres audit store")
	}

	recorderOpts := []audit.RecorderOption{
		audit.WithRecorderLogger(log),
		audit.WithCounter(m),
	}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err := audit.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, audit.WithKafkaLogger(log))
		if err != nil {
			return err
		}
		defer publisher.Close()
		if err := publisher.EnsureTopic(ctx, 3, 1); err != nil {
			log.Warn("could not ensure audit topic", "error", err)
		}
		recorderOpts = append(recorderOpts, audit.WithSink(publisher))
		log.Info("audit events streaming to kafka", "topic", cfg.Kafka.Topic)
	}
	recorder := audit.NewRecorder(auditStore, recorderOpts...)

	sessions := session.NewManager(sessionStore, cfg.Session.TTL, session.WithLogger(log))
	tokens := jwttoken.NewService(cfg.JWT.SigningKey, cfg.JWT.Issuer, cfg.JWT.Audience)
	lockouts := lockout.NewService(lockoutStore, lockout.Config{
		MaxAttempts:  cfg.Lockout.MaxFailures,
		Window:       cfg.Lockout.Window,
		LockDuration: cfg.Lockout.Duration,
	}, lockout.WithLogger(log))

	client := upstream.NewClient(
		upstream.BaseURL(cfg.Upstream.BaseURL),
		sessions,
		upstream.WithLogger(log),
		upstream.WithRecorder(m),
		upstream.WithHTTPClient(&http.Client{Timeout: cfg.Upstream.Timeout}),
		upstream.WithAuthFailureHook(func(ctx context.Context, sessionID id.SessionID) {
			recorder.Record(ctx, audit.Event{
				Action:    audit.ActionSessionExpired,
				SessionID: sessionID.String(),
			})
		}),
	)

	dir := directory.NewService(client, directory.WithLogger(log))
	assignments := assignment.NewService(client, dir, assignment.WithLogger(log))
	accounts := account.NewService(client, sessions, tokens, lockouts, recorder,
		account.WithLogger(log),
		account.WithLoginCounter(m),
	)

	router := httptransport.NewRouter(httptransport.Deps{
		Accounts:         accounts,
		Directory:        dir,
		Assignments:      assignments,
		AuditStore:       auditStore,
		Tokens:           tokens,
		Logger:           log,
		ServiceTokenHash: cfg.ServiceTokenHash,
		Health: func(ctx context.Context) error {
			if redisClient != nil {
				return redisClient.Health(ctx)
			}
			return nil
		},
	})

	srv := httpserver.New(cfg.Server.Addr, router)

	go func() {
		if err := recorder.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("audit recorder stopped", "error", err)
		}
	}()

	serverErr := make(chan error, 1)
	go func() {
		log.Info("admin gateway listening", "addr", cfg.Server.Addr, "upstream", cfg.Upstream.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("shutdown complete")
	return nil
}
