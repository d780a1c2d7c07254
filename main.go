package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"bayesplay/app"
	"bayesplay/internal"
	"bayesplay/internal/api"
	"bayesplay/internal/config"
)

func main() {
	appConfig, err := config.Load()
	if err != nil {
		internal.DefaultLogger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := internal.NewLogger(os.Stderr, appConfig.Log.Level)
	slog.SetDefault(logger)
	gin.SetMode(appConfig.Server.GinMode)

	service := app.NewModelService(appConfig.Integration.Quadrature(logger), logger)
	server := api.NewServer(service, logger, appConfig.Server.RequestTimeout)

	// pprof registers on the default mux, which the API server does not use
	if appConfig.Profiling.Enabled {
		go func() {
			logger.Info("profiling server starting", "port", appConfig.Profiling.Port)
			if err := http.ListenAndServe(":"+appConfig.Profiling.Port, nil); err != nil {
				logger.Warn("profiling server failed", "error", err)
			}
		}()
	}

	httpServer := &http.Server{
		Addr:    ":" + appConfig.Server.Port,
		Handler: server.Handler(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting bayesplay server", "port", appConfig.Server.Port, "gin_mode", appConfig.Server.GinMode)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), appConfig.Server.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
			os.Exit(1)
		}
	}
}
