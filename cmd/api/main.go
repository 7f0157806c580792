package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bunny-happiness/internal/adapters/auth/identity"
	pg "bunny-happiness/internal/adapters/storage/postgres"
	"bunny-happiness/internal/platform/config"
	"bunny-happiness/internal/platform/logger"
	"bunny-happiness/internal/router"
)

// @title Bunny Happiness API
// @version 1.0
// @description Pipeline de felicidad de conejos: eventos feed/play/idle,
// @description procesamiento asíncrono y summary agregado.
// @BasePath /
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		panic(err)
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})

	opts := router.Options{
		Log:              log,
		DispatchInterval: cfg.DispatchInterval,
		DispatchWorkers:  cfg.DispatchWorkers,
		DispatchBatch:    cfg.DispatchBatch,
		IdleScanInterval: cfg.IdleScanInterval,
	}

	if cfg.DatabaseURL != "" {
		db, err := pg.Open(cfg.DatabaseURL)
		if err != nil {
			log.Error("postgres open failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		defer db.Close()
		opts.DB = db
		log.Info("storage: postgres", nil)
	} else {
		log.Info("storage: in-memory", nil)
	}

	if cfg.IdentityBaseURL != "" {
		verifier, err := identity.NewVerifier(identity.Config{
			BaseURL: cfg.IdentityBaseURL,
			APIKey:  cfg.IdentityAPIKey,
		})
		if err != nil {
			log.Error("identity verifier init failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		opts.AuthVerifier = verifier
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := router.NewApp(opts)
	if err := app.Start(ctx); err != nil {
		log.Error("app start failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      app.Handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("starting server", map[string]any{"addr": cfg.Addr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
