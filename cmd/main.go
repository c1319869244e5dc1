package main

import (
	"context"
	"os"
	"time"

	"github.com/orgball2608/insta-daily-poster/internal/app"
	"github.com/orgball2608/insta-daily-poster/pkg/errors"
	"github.com/orgball2608/insta-daily-poster/pkg/logger"
	"go.uber.org/fx"
)

func main() {
	log := logger.New(logger.Opts{})

	fxApp := fx.New(
		fx.Logger(log),
		app.Module,
	)

	if err := fxApp.Start(context.Background()); err != nil {
		log.Error("Failed to start application", "error", err, "code", errors.GetCode(err))
		os.Exit(app.ExitFatal)
	}

	// Returns after a one-shot run finishes or on SIGINT/SIGTERM in schedule mode.
	sig := <-fxApp.Wait()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := fxApp.Stop(stopCtx); err != nil {
		log.Error("Failed to stop application", "error", err)
		logger.Flush()
		os.Exit(app.ExitFatal)
	}

	logger.Flush()
	os.Exit(sig.ExitCode)
}
