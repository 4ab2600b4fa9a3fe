package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/cbaclube/portal/internal/app"
	"github.com/cbaclube/portal/internal/config"
	"github.com/cbaclube/portal/internal/observability"
	"github.com/cbaclube/portal/internal/platform/logging"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	uptraceShutdown, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		os.Exit(1)
	}

	pyroscopeStop, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		logger.Error("init pyroscope", "error", err)
		os.Exit(1)
	}

	pprofSrv, err := observability.StartPprofServer(cfg, logger)
	if err != nil {
		logger.Error("start pprof", "error", err)
		os.Exit(1)
	}

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}

	if err := application.Reconciler.Start(); err != nil {
		logger.Error("start reconciler", "error", err)
		os.Exit(1)
	}

	go func() {
		logger.Info("http server starting", "addr", cfg.HTTPAddr, "env", cfg.AppEnv)
		if err := application.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := application.Server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}

	if err := application.Reconciler.Stop(); err != nil {
		logger.Error("stop reconciler", "error", err)
	}

	if err := observability.StopPprofServer(pprofSrv, logger, 5*time.Second); err != nil {
		logger.Error("stop pprof", "error", err)
	}

	if err := pyroscopeStop(); err != nil {
		logger.Error("stop pyroscope", "error", err)
	}

	if err := uptraceShutdown(shutdownCtx); err != nil {
		logger.Error("shutdown uptrace", "error", err)
	}

	logger.Info("portal stopped")
}
