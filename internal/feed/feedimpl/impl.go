package feedimpl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/orgball2608/insta-daily-poster/internal/domain"
	"github.com/orgball2608/insta-daily-poster/internal/events"
	"github.com/orgball2608/insta-daily-poster/internal/feed"
	"github.com/orgball2608/insta-daily-poster/pkg/config"
	"github.com/orgball2608/insta-daily-poster/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
	Events events.Sink
}

type FeedImpl struct {
	httpClient   *http.Client
	baseURL      string
	imageBaseURL string
	logger       logger.Logger
	events       events.Sink
}

var _ feed.Source = (*FeedImpl)(nil)

func New(opts Opts) *FeedImpl {
	return &FeedImpl{
		httpClient:   &http.Client{Timeout: opts.Config.Feed.Timeout},
		baseURL:      strings.TrimRight(opts.Config.Feed.BaseURL, "/"),
		imageBaseURL: opts.Config.Feed.ImageBaseURL,
		logger:       opts.Logger.WithComponent("Feed"),
		events:       opts.Events,
	}
}

type manifestPayload struct {
	Images []domain.Candidate `json:"images"`
}

func (f *FeedImpl) manifestURL(date string) string {
	return fmt.Sprintf("%s/%s/data.json", f.baseURL, date)
}

func (f *FeedImpl) Fetch(ctx context.Context, date string) (*domain.DailyManifest, bool) {
	manifest, reason, err := f.fetch(ctx, date)
	if reason == "" {
		return manifest, true
	}

	// Transport faults look like "no content today" to the caller; keep them loud in the logs.
	if reason == feed.AbsentTransport {
		f.logger.Warn("Manifest unreachable, treating day as absent", "date", date, "error", err)
	} else {
		f.logger.Debug("Manifest absent", "date", date, "reason", reason, "error", err)
	}
	f.events.Emit(ctx, domain.NewEvent(domain.EventManifestAbsent, "date", date, "reason", reason))
	return nil, false
}

func (f *FeedImpl) fetch(ctx context.Context, date string) (*domain.DailyManifest, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.manifestURL(date), nil)
	if err != nil {
		return nil, feed.AbsentTransport, err
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, feed.AbsentTransport, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, feed.AbsentNotFound, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, feed.AbsentStatus, fmt.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, feed.AbsentTransport, err
	}

	var payload manifestPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, feed.AbsentMalformed, err
	}

	return &domain.DailyManifest{Date: date, Images: payload.Images}, "", nil
}

func (f *FeedImpl) ImageURL(filename string) string {
	return f.imageBaseURL + strings.TrimLeft(filename, "/")
}
