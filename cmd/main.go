package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"charterlens/pkg/logger"
)

func main() {
	app := NewApplication()

	if err := app.Initialize(); err != nil {
		logger.FatalCtx(nil, "initialization failed: %v", err)
	}

	if err := app.Start(); err != nil {
		logger.FatalCtx(app.ctx, "startup failed: %v", err)
	}

	// Block until asked to stop, then drain in-flight work. The
	// timeout covers a pipeline run already past its collect stage.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.InfoCtx(app.ctx, "received %v, shutting down", sig)

	if err := app.Shutdown(30 * time.Second); err != nil {
		logger.ErrorCtx(app.ctx, "shutdown failed: %v", err)
		os.Exit(1)
	}

	logger.InfoCtx(app.ctx, "exited cleanly")
}
