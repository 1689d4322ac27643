// Package main serves the read-only HS code API.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mmourani/hscode-scraper/internal/cli"
	"github.com/mmourani/hscode-scraper/internal/http/handlers"
	"github.com/mmourani/hscode-scraper/internal/http/routes"
	"github.com/mmourani/hscode-scraper/internal/lookup"
	"github.com/mmourani/hscode-scraper/internal/productmap"
	"github.com/mmourani/hscode-scraper/internal/service"
)

func main() {
	app := cli.Start("hscode-api")
	defer app.Close()
	cfg := app.Config
	logger := app.Logger

	repos, db := app.Store()

	var remote productmap.Fetcher
	storage, err := service.NewStorageService(cfg, logger)
	if err != nil {
		logger.Warn("storage unavailable, serving the local product map only", "error", err)
	} else {
		remote = storage
	}

	h := &routes.Handlers{
		HealthCheck: handlers.NewHealthHandler(db).HealthCheck,
		Livez:       handlers.Livez,
		Readyz:      handlers.NewReadyzHandler(db).Readyz,
		HSCode:      handlers.NewHSCodeHandler(repos),
		Search:      handlers.NewSearchHandler(lookup.NewSearcher(repos, logger)),
		Product:     handlers.NewProductHandler(productmap.NewSource(cfg.ProductMapPath, remote, logger)),
	}

	router, _ := routes.NewRouter(routes.RouterOptions{
		BaseURL:            cfg.BaseURL,
		CORSOrigins:        cfg.CORSOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		RequestTimeout:     cfg.WriteTimeout,
		SearchTimeout:      2 * cfg.WriteTimeout,
		Logger:             logger,
	}, h)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: 2 * cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
		<-sigChan

		logger.Info("shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
	}()

	logger.Info("starting server", "port", cfg.Port, "base_url", cfg.BaseURL)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		app.Fatal("server error", err)
	}

	logger.Info("server stopped")
}
