package poster

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/orgball2608/insta-daily-poster/internal/caption"
	"github.com/orgball2608/insta-daily-poster/internal/domain"
	"github.com/orgball2608/insta-daily-poster/internal/events"
	"github.com/orgball2608/insta-daily-poster/internal/feed"
	"github.com/orgball2608/insta-daily-poster/internal/instagram"
	"github.com/orgball2608/insta-daily-poster/internal/record"
	"github.com/orgball2608/insta-daily-poster/internal/selector"
	"github.com/orgball2608/insta-daily-poster/pkg/config"
	"github.com/orgball2608/insta-daily-poster/pkg/errors"
	"github.com/orgball2608/insta-daily-poster/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Selector  *selector.Selector
	Feed      feed.Source
	Caption   caption.Generator
	Publisher instagram.Publisher
	Records   record.Repository
	Events    events.Sink
	Logger    logger.Logger
	Config    *config.Config
	Location  *time.Location
}

// Poster drives one run: select, caption, publish, record.
type Poster struct {
	selector  *selector.Selector
	feed      feed.Source
	caption   caption.Generator
	publisher instagram.Publisher
	records   record.Repository
	events    events.Sink
	logger    logger.Logger

	location        *time.Location
	maxDaysBack     int
	captionOverride string
	now             func() time.Time
}

func New(opts Opts) *Poster {
	return &Poster{
		selector:  opts.Selector,
		feed:      opts.Feed,
		caption:   opts.Caption,
		publisher: opts.Publisher,
		records:   opts.Records,
		events:    opts.Events,
		logger:    opts.Logger.WithComponent("Poster"),

		location:        opts.Location,
		maxDaysBack:     opts.Config.Feed.MaxDaysBack,
		captionOverride: opts.Config.Run.CaptionOverride,
		now:             time.Now,
	}
}

// Run publishes at most one image. A remote refusal is reported through the result's
// Outcome; the returned error is reserved for faults the run cannot recover from.
func (p *Poster) Run(ctx context.Context) (domain.RunResult, error) {
	today := p.now().In(p.location)

	sel, ok, err := p.selector.FindNext(ctx, today, p.maxDaysBack)
	if err != nil {
		return domain.RunResult{}, err
	}
	if !ok {
		p.logger.Info("No unposted image with a prompt found", "max_days_back", p.maxDaysBack)
		return domain.RunResult{Outcome: domain.OutcomeNothingToDo}, nil
	}

	result := domain.RunResult{
		Date:     sel.Date,
		Filename: sel.Candidate.Filename,
		ImageURL: p.feed.ImageURL(sel.Candidate.Filename),
	}
	result.Caption = p.resolveCaption(ctx, sel.Candidate.Prompt)

	mediaID, err := p.publisher.Publish(ctx, result.ImageURL, result.Caption, domain.PublishOptions{})
	if err != nil {
		var pubErr *domain.PublishError
		if !errors.As(err, &pubErr) {
			return result, fmt.Errorf("publish %s: %w", result.Filename, err)
		}

		result.Outcome = domain.OutcomeFailed
		result.Detail = pubErr.Message
		p.events.Emit(ctx, domain.NewEvent(domain.EventPublishFailed,
			"date", result.Date, "filename", result.Filename, "phase", string(pubErr.Phase), "message", pubErr.Message))
		return result, nil
	}

	result.Outcome = domain.OutcomePublished
	result.MediaID = mediaID
	p.events.Emit(ctx, domain.NewEvent(domain.EventPublishSucceeded,
		"date", result.Date, "filename", result.Filename, "media_id", mediaID))

	if err := p.records.Append(ctx, sel.Date, sel.Candidate.Filename); err != nil {
		// The post is live but unrecorded; the next run would publish it again.
		p.logger.Error("Published image could not be recorded", "date", sel.Date, "filename", sel.Candidate.Filename, "media_id", mediaID, "error", err)
		return result, fmt.Errorf("record %s/%s: %w", sel.Date, sel.Candidate.Filename, err)
	}
	p.events.Emit(ctx, domain.NewEvent(domain.EventRecordAppended, "date", sel.Date, "filename", sel.Candidate.Filename))

	return result, nil
}

func (p *Poster) resolveCaption(ctx context.Context, prompt string) string {
	if override := strings.TrimSpace(p.captionOverride); override != "" {
		return override
	}
	if strings.TrimSpace(prompt) == "" {
		return caption.DefaultCaption
	}
	if text := p.caption.Generate(ctx, prompt); text != "" {
		return text
	}
	return caption.DefaultCaption
}
