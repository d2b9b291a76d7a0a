package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/darkodi/link-shortener/internal/config"
	"github.com/darkodi/link-shortener/internal/handler"
	"github.com/darkodi/link-shortener/internal/logger"
	"github.com/darkodi/link-shortener/internal/middleware"
	"github.com/darkodi/link-shortener/internal/repository"
	"github.com/darkodi/link-shortener/internal/service"
	"github.com/darkodi/link-shortener/internal/validator"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "link-shortener:", err)
		os.Exit(1)
	}
}

func run() error {
	// ============================================================
	// LOAD CONFIGURATION
	// ============================================================
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// ============================================================
	// Initialize logger
	// ============================================================
	log := logger.New(cfg.Log)

	log.Info("starting link-shortener",
		"environment", cfg.App.Environment,
		"store", cfg.Database.Driver,
		"base_url", cfg.App.BaseURL,
		"level", cfg.Log.Level,
	)

	// ============================================================
	// INITIALIZE LAYERS
	// ============================================================
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := repository.New(ctx, &cfg.Database, log)
	if err != nil {
		return fmt.Errorf("open link store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("failed to close link store", "error", err.Error())
		}
	}()
	log.Info("link store ready", "driver", cfg.Database.Driver)

	v := validator.NewURLValidator().
		WithMaxLength(cfg.App.MaxURLLength).
		WithAllowedSchemes(cfg.App.AllowedSchemes...).
		WithBlockedDomains(cfg.App.BlockedDomains...).
		WithBlockPrivateIPs(cfg.App.BlockPrivateIPs)

	svc := service.NewLinkService(store, cfg.App.BaseURL, log,
		service.WithValidator(v),
		service.WithClickTimeout(cfg.App.ClickTimeout),
	)

	h := handler.NewLinkHandler(svc, log)

	// ============================================================
	// BUILD MIDDLEWARE CHAIN
	// ============================================================
	router := middleware.Chain(h.SetupRoutes(),
		middleware.RequestID,
		middleware.RecoveryWithLogger(log),
		middleware.LoggingWithLogger(log),
	)

	// ============================================================
	// CREATE SERVER WITH CONFIG TIMEOUTS
	// ============================================================
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server starting", "addr", server.Addr)
		serverErr <- server.ListenAndServe()
	}()

	// ============================================================
	// WAIT FOR SHUTDOWN OR ERROR
	// ============================================================
	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)

	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err.Error())
		// force close if graceful shutdown fails
		if err := server.Close(); err != nil {
			log.Error("forced shutdown failed", "error", err.Error())
		}
	}

	// Handlers are done; let pending click increments land before the
	// store is closed by the deferred Close above.
	if err := svc.Wait(shutdownCtx); err != nil {
		log.Warn("pending click updates abandoned", "error", err.Error())
	}

	log.Info("server stopped")
	return nil
}
