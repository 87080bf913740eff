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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/lnwboom/office-assets/config"
	"github.com/lnwboom/office-assets/database"
	"github.com/lnwboom/office-assets/handlers"
	"github.com/lnwboom/office-assets/i18n"
	"github.com/lnwboom/office-assets/logger"
	"github.com/lnwboom/office-assets/middleware"
	"github.com/lnwboom/office-assets/repository"
	"github.com/lnwboom/office-assets/routes"
	"github.com/lnwboom/office-assets/service"
	"github.com/lnwboom/office-assets/utils"
	"github.com/lnwboom/office-assets/websocket"
)

const version = "1.0.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Environment)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database connection
	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	client, err := database.Connect(connectCtx, cfg.MongoURI, log)
	cancel()
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer database.Disconnect(client, log)

	db := client.Database(cfg.MongoDatabase)
	indexCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	err = database.EnsureIndexes(indexCtx, db)
	cancel()
	if err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	users := repository.NewUserRepository(db)
	assets := repository.NewAssetRepository(db)
	requests := repository.NewAssetRequestRepository(db)
	auditLogs := repository.NewAuditLogRepository(db)

	hub := websocket.NewHub(log.Named("websocket"))
	go hub.Run(ctx)

	tr := i18n.New(cfg.DefaultLocale)
	tokens := utils.NewTokenManager(cfg.SessionSecret, cfg.PublicURL, cfg.SessionTTL)
	audit := service.NewAuditRecorder(auditLogs, hub, log.Named("audit"))

	limiter := middleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst, tr)
	go limiter.Run(ctx)

	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{Registerer: prometheus.DefaultRegisterer})
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	h := routes.Handlers{
		Auth:      handlers.NewAuthHandler(service.NewAuthService(users, tokens, audit, log), tokens, cfg.SecureCookies(), tr, log),
		Assets:    handlers.NewAssetHandler(service.NewAssetService(assets, requests, audit, log), tr, log),
		Requests:  handlers.NewAssetRequestHandler(service.NewAssetRequestService(requests, assets, audit, log), tr, log),
		Users:     handlers.NewUserHandler(service.NewUserService(users, audit), tr, log),
		Dashboard: handlers.NewDashboardHandler(service.NewDashboardService(assets, requests), tr, log),
		Audit:     handlers.NewAuditHandler(audit, hub, cfg.PublicURL, tr, log),
		Health: handlers.NewHealthHandler(func(ctx context.Context) error {
			return database.Ping(ctx, client)
		}, version),
		Static:  handlers.NewStaticHandler(cfg.StaticDir),
		Metrics: promhttp.Handler(),
	}
	router := routes.NewRouter(h, routes.Options{
		Auth:        middleware.NewAuth(tokens, tr),
		RateLimiter: limiter,
		Metrics:     metrics,
		Translator:  tr,
		Logger:      log,
		PublicURL:   cfg.PublicURL,
	})

	// HTTP server configuration. No write timeout: websocket connections are long lived.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("public_url", cfg.PublicURL),
			zap.String("environment", cfg.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("server forced shutdown", zap.Error(err))
	}
	stop()

	log.Info("server stopped")
	return nil
}
