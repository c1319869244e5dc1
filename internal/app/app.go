package app

import (
	"context"
	"fmt"
	"time"

	"github.com/orgball2608/insta-daily-poster/internal/caption"
	"github.com/orgball2608/insta-daily-poster/internal/caption/captionimpl"
	"github.com/orgball2608/insta-daily-poster/internal/domain"
	"github.com/orgball2608/insta-daily-poster/internal/events"
	"github.com/orgball2608/insta-daily-poster/internal/feed"
	"github.com/orgball2608/insta-daily-poster/internal/feed/feedimpl"
	"github.com/orgball2608/insta-daily-poster/internal/instagram"
	"github.com/orgball2608/insta-daily-poster/internal/instagram/graphapi"
	"github.com/orgball2608/insta-daily-poster/internal/poster"
	"github.com/orgball2608/insta-daily-poster/internal/record/recordfx"
	"github.com/orgball2608/insta-daily-poster/internal/selector"
	"github.com/orgball2608/insta-daily-poster/internal/telegram"
	"github.com/orgball2608/insta-daily-poster/internal/telegram/telegramimpl"
	"github.com/orgball2608/insta-daily-poster/pkg/config"
	"github.com/orgball2608/insta-daily-poster/pkg/errors"
	"github.com/orgball2608/insta-daily-poster/pkg/logger"
	"go.uber.org/fx"
)

// Exit codes of a one-shot run.
const (
	ExitOK     = 0
	ExitFailed = 1
	ExitFatal  = 2
)

var Module = fx.Options(
	fx.Provide(
		config.New,
		logger.FxOption,
		newLocation,
		newEventSink,
	),
	fx.Provide(
		fx.Annotate(
			feedimpl.New,
			fx.As(new(feed.Source)),
		), fx.Annotate(
			captionimpl.New,
			fx.As(new(caption.Generator)),
		), fx.Annotate(
			graphapi.New,
			fx.As(new(instagram.Publisher)),
		),
		selector.New,
		poster.New,
	),
	recordfx.Module,
	fx.Invoke(run),
)

func newLocation(cfg *config.Config) (*time.Location, error) {
	return cfg.Location()
}

func newEventSink(cfg *config.Config, log logger.Logger) (events.Sink, error) {
	sinks := []events.Sink{events.NewLogSink(log)}

	if cfg.Telegram.Token != "" {
		tg, err := telegramimpl.New(cfg, log)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, telegram.NewNotifier(tg, log))
	}

	return events.Fanout(sinks...), nil
}

func run(lc fx.Lifecycle, sd fx.Shutdowner, log logger.Logger, cfg *config.Config, loc *time.Location, p *poster.Poster) {
	ctx, cancel := context.WithCancel(context.Background())
	var stopScheduler func() error

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if cfg.App.ScheduleCron == "" {
				go func() {
					code := RunOnce(ctx, log, p)
					if err := sd.Shutdown(fx.ExitCode(code)); err != nil {
						log.Error("Failed to shut down", "error", err)
					}
				}()
				return nil
			}

			stop, err := startScheduler(ctx, log, cfg, loc, p)
			if err != nil {
				return err
			}
			stopScheduler = stop
			go startHttpServer(ctx, log, cfg)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			if stopScheduler != nil {
				return stopScheduler()
			}
			return nil
		},
	})
}

// RunOnce performs a single run and maps its outcome to an exit code.
func RunOnce(ctx context.Context, log logger.Logger, p *poster.Poster) int {
	result, err := p.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn("Run cancelled", "error", err)
		} else {
			log.Error("Run aborted", "error", err, "code", errors.GetCode(err), "date", result.Date, "filename", result.Filename)
		}
		return ExitFatal
	}

	switch result.Outcome {
	case domain.OutcomeNothingToDo:
		log.Info("Nothing to do")
		return ExitOK
	case domain.OutcomePublished:
		log.Info(fmt.Sprintf("Done: %s -> %s", result.Date, result.Filename), "media_id", result.MediaID)
		return ExitOK
	default:
		log.Error("Publish failed", "date", result.Date, "filename", result.Filename, "detail", result.Detail)
		return ExitFailed
	}
}
