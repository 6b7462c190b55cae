package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"studio/internal/bootstrap"
	"studio/internal/http/handlers"
	"studio/internal/http/httpapi"
	"studio/internal/infra"
)

const shutdownGrace = 15 * time.Second

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, closeKV, err := bootstrap.OpenKV(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open store")
	}
	defer func() {
		if err := closeKV(); err != nil {
			logger.Error().Err(err).Msg("failed to close store")
		}
	}()

	st, err := bootstrap.NewStudio(ctx, cfg, kv, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build studio")
	}

	app := handlers.NewApp(st, &logger)
	router := httpapi.NewRouter(app, logger, cfg.RateLimitPerMin, cfg.CORSAllowedOrigins)
	server := infra.NewHTTPServer(cfg, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", server.Addr()).Str("driver", cfg.StoreDriver).Msg("studio API listening")
		return server.Start()
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		return
	}
	logger.Info().Msg("server stopped")
}
