package selector

import (
	"context"
	"fmt"
	"time"

	"github.com/orgball2608/insta-daily-poster/internal/domain"
	"github.com/orgball2608/insta-daily-poster/internal/events"
	"github.com/orgball2608/insta-daily-poster/internal/feed"
	"github.com/orgball2608/insta-daily-poster/internal/record"
	"github.com/orgball2608/insta-daily-poster/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Feed    feed.Source
	Records record.Repository
	Logger  logger.Logger
	Events  events.Sink
}

// Selector walks back from today looking for the first image that has not been posted yet.
type Selector struct {
	feed    feed.Source
	records record.Repository
	logger  logger.Logger
	events  events.Sink
}

func New(opts Opts) *Selector {
	return &Selector{
		feed:    opts.Feed,
		records: opts.Records,
		logger:  opts.Logger.WithComponent("Selector"),
		events:  opts.Events,
	}
}

// FindNext checks today, then each earlier day, for at most maxDaysBack days. Within a day
// candidates are taken in manifest order. ok is false when the window holds nothing eligible.
// Only record store failures are returned as errors.
func (s *Selector) FindNext(ctx context.Context, today time.Time, maxDaysBack int) (domain.Selection, bool, error) {
	for i := 0; i < maxDaysBack; i++ {
		date := domain.DateKey(today.AddDate(0, 0, -i))

		manifest, ok := s.feed.Fetch(ctx, date)
		if !ok {
			continue
		}

		posted, err := s.records.Load(ctx, date)
		if err != nil {
			return domain.Selection{}, false, fmt.Errorf("load record for %s: %w", date, err)
		}

		for _, c := range manifest.Images {
			if !c.Eligible(posted) {
				continue
			}

			s.events.Emit(ctx, domain.NewEvent(domain.EventSelectionFound,
				"date", date, "filename", c.Filename, "days_back", i))
			return domain.Selection{Date: date, Candidate: c}, true, nil
		}

		s.logger.Debug("Day exhausted", "date", date, "candidates", len(manifest.Images), "posted", len(posted))
	}

	s.events.Emit(ctx, domain.NewEvent(domain.EventSelectionNone,
		"from", domain.DateKey(today), "max_days_back", maxDaysBack))
	return domain.Selection{}, false, nil
}
