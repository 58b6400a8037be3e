package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"budget/internal/cli"
	"budget/internal/forms"
	apphttp "budget/internal/http"
	"budget/internal/imageres"
	applog "budget/internal/log"
	"budget/internal/store"
	"budget/internal/store/memory"

	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "budget:", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file for local development (ignored when absent)
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}
	logger, err := cli.SetupLogger(cfg, os.Stdout)
	if err != nil {
		return err
	}

	var items store.Store
	if cfg.SeedData {
		items = memory.NewSeeded()
	} else {
		items = memory.New()
	}

	images := imageres.New(imageres.Config{
		Endpoint:     cfg.ImageAPIURL,
		MaxBytes:     cfg.ImageMaxBytes,
		Timeout:      cfg.ImageFetchTimeout,
		AllowPrivate: cfg.ImageAllowPrivate,
	})
	sessions := forms.NewSessions(forms.SessionsConfig{})

	srv, err := apphttp.NewServer(":"+cfg.Port, items, sessions, images, apphttp.Options{
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMin,
	})
	if err != nil {
		sessions.Stop()
		return err
	}
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting budget server",
			"port", cfg.Port,
			"seeded", cfg.SeedData,
			"image_api", cfg.ImageAPIURL,
			applog.FieldOperation, applog.OpStartup)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on :%s: %w", cfg.Port, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down", applog.FieldOperation, applog.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		sessions.Stop()
		if err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", applog.FieldError, err)
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}
