package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/elecmate/commsdesk/internal/api"
	"github.com/elecmate/commsdesk/internal/config"
	"github.com/elecmate/commsdesk/internal/mailbox"
	"github.com/elecmate/commsdesk/internal/middleware"
	"github.com/elecmate/commsdesk/internal/observ"
	"github.com/elecmate/commsdesk/internal/realtime"
	"github.com/elecmate/commsdesk/internal/scheduler"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket API",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b, err := openBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	hub := realtime.NewHub(mailbox.NewLogNotifier(logger), logger)
	store := mailbox.NewStore(b.messages, b.overlays, logger)
	composer := mailbox.NewComposer(mailbox.ComposerDeps{
		Store:       store,
		Employees:   b.employees,
		Jobs:        b.jobs,
		Idempotency: b.idempotency,
		Notifier:    hub,
		Logger:      logger,
	}, cfg.Location)

	limiter := middleware.NewLimiterStore(cfg.RateLimitPerMinute, cfg.RateLimitBurst, time.Minute)
	defer limiter.Stop()

	sched := scheduler.New(mailbox.NewDispatcher(b.messages, hub, logger), cfg.DeliveryCron, cfg.Location, logger)
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer func() { _ = sched.Stop() }()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(api.RouterDeps{
		Store:        store,
		Composer:     composer,
		Refresher:    mailbox.NewRefresher(cfg.RefreshDelay, hub),
		Hub:          hub,
		Employees:    b.employees,
		Jobs:         b.jobs,
		Limiter:      limiter,
		JWTSecret:    cfg.JWTSecret,
		TokenTTL:     cfg.TokenTTL,
		Location:     cfg.Location,
		GroupOptions: mailbox.GroupOptions{PinnedOnAllTabs: cfg.PinnedOnAllTabs},
		Logger:       logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting commsdesk",
			zap.String("port", cfg.Port),
			zap.String("env", cfg.Env),
			zap.String("timezone", cfg.Location.String()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
