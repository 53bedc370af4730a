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

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/event-reservation-web/internal/apiclient"
	"github.com/iliyamo/event-reservation-web/internal/catalog"
	"github.com/iliyamo/event-reservation-web/internal/config"
	"github.com/iliyamo/event-reservation-web/internal/handler"
	"github.com/iliyamo/event-reservation-web/internal/logging"
	"github.com/iliyamo/event-reservation-web/internal/middleware"
	"github.com/iliyamo/event-reservation-web/internal/queue"
	"github.com/iliyamo/event-reservation-web/internal/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// no logger yet
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	client := apiclient.New(cfg.APIBaseURL,
		apiclient.WithTimeout(cfg.APITimeout),
		apiclient.WithLogger(logger.Named("apiclient")))

	mode, err := catalog.ParseFallbackMode(cfg.CatalogFallback)
	if err != nil {
		return err
	}

	routes := router.Routes{
		Events: &handler.EventHandler{
			Catalog: catalog.NewSource(client, mode, logger.Named("catalog")),
			Backend: handler.ClientBackend(client),
			Log:     logger,
		},
		Reservations: &handler.ReservationHandler{
			Backend:   handler.ClientBackend(client),
			Publisher: queue.NopPublisher{},
			Log:       logger,
		},
	}

	// Redis is optional: without it the server runs uncached and unlimited.
	rdb, err := config.NewRedisClient(ctx, config.LoadRedisConfig())
	if err != nil {
		logger.Warn("redis unavailable, cache and rate limit disabled", zap.Error(err))
	} else {
		defer func() { _ = rdb.Close() }()
		routes.Cache = middleware.NewRedisCache(config.LoadCacheConfig(), rdb, logger)
		routes.RateLimit = middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, logger)
	}

	if cfg.RabbitMQURL != "" {
		routes.Reservations.Publisher = queue.NewAMQPPublisher(cfg.RabbitMQURL, logger.Named("publisher"))
		go func() {
			if err := queue.StartReservationConsumer(ctx, cfg.RabbitMQURL, "logs", logger); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("reservation consumer stopped", zap.Error(err))
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, routes)

	addr := ":" + cfg.Port
	logger.Info("listening",
		zap.String("addr", addr),
		zap.String("env", cfg.Env),
		zap.String("api", client.BaseURL()),
		zap.String("catalog_fallback", string(mode)))

	errc := make(chan error, 1)
	go func() { errc <- e.Start(addr) }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
