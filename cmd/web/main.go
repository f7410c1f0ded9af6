package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"cartoon-story-bot/internal/app"
	"cartoon-story-bot/internal/config"
	"cartoon-story-bot/internal/httpclient"
	"cartoon-story-bot/internal/logging"
	"cartoon-story-bot/internal/web"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.New(cfg.LogLevel)
	app.LogStartup(cfg, logger)

	httpClient := httpclient.New(httpclient.Options{
		PreferIPv4: cfg.PreferIPv4,
		Timeout:    cfg.HTTPTimeout,
	})

	svc, err := app.NewService(cfg, httpClient, logger)
	if err != nil {
		logger.Error("ai provider init failed", "err", err)
		os.Exit(1)
	}
	stories, err := app.NewPipeline(cfg, svc, logger)
	if err != nil {
		logger.Error("pipeline init failed", "err", err)
		os.Exit(1)
	}

	srv := web.NewServer(web.ServerConfig{
		Addr:           cfg.WebAddr,
		Stories:        stories,
		Packages:       web.NewPackageStore(cfg.PackageTTL),
		Defaults:       app.DefaultSettings(cfg),
		RequestTimeout: cfg.RequestTimeout,
		Logger:         logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "err", err)
		}
	}
}
