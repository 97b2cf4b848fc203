package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"tracker-api/api"
	"tracker-api/config"
	"tracker-api/domain"
	"tracker-api/events"
	"tracker-api/gist"
	"tracker-api/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := log.New()
	if cfg.Debug {
		logger.SetLevel(log.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg.Storage, logger)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	opts := []domain.Option{domain.WithLogger(logger)}
	if cfg.Storage.ActivityQueue != "" {
		pub, err := events.NewQueuePublisher(cfg.Storage.ConnectionString, cfg.Storage.ActivityQueue)
		if err != nil {
			log.Fatalf("activity queue: %v", err)
		}
		opts = append(opts, domain.WithPublisher(pub))
	}

	var gists domain.GistPublisher
	if cfg.Gist.Token != "" {
		gists = gist.New(cfg.Gist.BaseURL, cfg.Gist.Token, logger)
	} else {
		logger.Warn("GITHUB_TOKEN not set; project export disabled")
	}

	svc := api.Services{
		Projects: domain.NewProjectService(store, opts...),
		Todos:    domain.NewTodoService(store, opts...),
		Links:    domain.NewRelationships(store, opts...),
		Exporter: domain.NewExporter(store, gists, opts...),
	}

	redisOpts, err := cfg.Redis.RedisOptions()
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	if redisOpts != nil {
		rc := redis.NewClient(redisOpts)
		defer rc.Close()
		svc.Deduper = api.NewRedisDeduper(rc, cfg.Redis.IdempotencyTTL)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "Idempotency-Key"},
	}))
	api.Register(e, svc, cfg.Auth, logger)

	go func() {
		if err := e.Start(":" + cfg.HTTP.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server stopped")
		}
	}()
	logger.WithField("port", cfg.HTTP.Port).Info("listening")

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("shutdown")
	}
}

func openStore(ctx context.Context, cfg config.StorageConfig, logger *log.Logger) (domain.Store, error) {
	if cfg.Driver == config.DriverMemory {
		logger.Info("using in-memory store")
		return storage.NewMemory(), nil
	}
	if cfg.Init {
		var queues []string
		if cfg.ActivityQueue != "" {
			queues = append(queues, cfg.ActivityQueue)
		}
		if err := storage.Provision(ctx, cfg.ConnectionString, []string{cfg.Table}, queues); err != nil {
			return nil, err
		}
	}
	return storage.New(cfg.ConnectionString, cfg.Table)
}
