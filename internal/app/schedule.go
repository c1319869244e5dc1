package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/orgball2608/insta-daily-poster/internal/poster"
	"github.com/orgball2608/insta-daily-poster/pkg/config"
	"github.com/orgball2608/insta-daily-poster/pkg/logger"
)

// startScheduler runs the poster on the configured cron expression; a six field
// expression carries seconds. Singleton mode keeps runs from overlapping, which the
// record stores rely on.
func startScheduler(ctx context.Context, log logger.Logger, cfg *config.Config, loc *time.Location, p *poster.Poster) (func() error, error) {
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	job, err := scheduler.NewJob(
		gocron.CronJob(cfg.App.ScheduleCron, len(strings.Fields(cfg.App.ScheduleCron)) == 6),
		gocron.NewTask(func() {
			if ctx.Err() != nil {
				log.Info("Context cancelled, skipping scheduled run")
				return
			}
			log.Info("Starting scheduled run")
			code := RunOnce(ctx, log, p)
			log.Info("Scheduled run finished", "exit_code", code)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName("daily-poster"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule poster with %q: %w", cfg.App.ScheduleCron, err)
	}

	scheduler.Start()

	if next, err := job.NextRun(); err == nil {
		log.Info("Poster scheduled", "cron", cfg.App.ScheduleCron, "next_run", next.Format(time.RFC3339))
	}

	return scheduler.Shutdown, nil
}

func startHttpServer(ctx context.Context, log logger.Logger, cfg *config.Config) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		healthCheckHandler(w, r, log)
	})

	server := &http.Server{Addr: fmt.Sprintf(":%d", cfg.App.Port), Handler: mux}
	go func() {
		<-ctx.Done()
		_ = server.Close()
	}()

	log.Info(fmt.Sprintf("Starting server on :%d", cfg.App.Port))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("Server failed to start", "error", err)
	}
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request, log logger.Logger) {
	log.Debug("Health check request received", "Method", r.Method, "URL", r.URL.String())
	w.Header().Set("Content-Type", "text/plain")
	if _, err := w.Write([]byte("ok")); err != nil {
		log.Error("Failed to write response", "Error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
