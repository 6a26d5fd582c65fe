package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/livingroomcafe/api/internal/config"
	"github.com/livingroomcafe/api/internal/database"
	"github.com/livingroomcafe/api/internal/logger"
	mw "github.com/livingroomcafe/api/internal/middleware"
	"github.com/livingroomcafe/api/internal/notify"
	"github.com/livingroomcafe/api/internal/ratelimit"
	"github.com/livingroomcafe/api/internal/router"
	"github.com/livingroomcafe/api/internal/ws"
	"go.uber.org/zap"
)

const (
	shutdownTimeout = 10 * time.Second
	trackWindow     = time.Minute
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	log, err := logger.New(cfg.IsDevelopment(), cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	log.Info("connected to database")

	queries := database.New(pool)

	var limiter mw.Limiter
	if cfg.RedisAddr != "" {
		client, err := ratelimit.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, log)
		if err != nil {
			log.Warn("redis unavailable, order tracking is not rate limited", zap.Error(err))
		} else {
			defer client.Close()
			limiter = ratelimit.New(client, cfg.TrackRateLimit, trackWindow, log)
		}
	}

	var mailer notify.Mailer
	if cfg.SMTPHost != "" {
		mailer = notify.NewSMTPMailer(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
	} else {
		log.Info("SMTP_HOST not set, e-mail notifications disabled")
	}
	notifier := notify.New(notify.Config{
		CafePhone: cfg.CafePhone,
		CafeEmail: cfg.CafeEmail,
		BaseURL:   cfg.BaseURL,
	}, mailer, log.Named("notify"))

	hub := ws.NewHub(log.Named("ws"))
	go hub.Run(ctx)

	if cfg.AdminPassword == "" && cfg.AdminPasswordHash == "" {
		log.Warn("no admin password configured, admin login is disabled")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.New(cfg, queries, hub, notifier, limiter, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
