package graphapi

import (
	"context"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/orgball2608/insta-daily-poster/internal/domain"
	"github.com/orgball2608/insta-daily-poster/internal/events"
	"github.com/orgball2608/insta-daily-poster/internal/instagram"
	"github.com/orgball2608/insta-daily-poster/pkg/config"
	"github.com/orgball2608/insta-daily-poster/pkg/formatter"
	"github.com/orgball2608/insta-daily-poster/pkg/logger"
	"github.com/orgball2608/insta-daily-poster/pkg/retry"
	"go.uber.org/fx"
)

var supportedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
	Events events.Sink
}

type GraphAPIImpl struct {
	httpClient  *http.Client
	baseURL     string
	accountID   string
	accessToken string

	defaultAltText     string
	defaultLocationID  string
	defaultUserTags    string
	defaultProductTags string

	settleDelay time.Duration
	pollStatus  bool
	pollConfig  retry.Config
	sleep       func(ctx context.Context, d time.Duration) error

	logger logger.Logger
	events events.Sink
}

var _ instagram.Publisher = (*GraphAPIImpl)(nil)

func New(opts Opts) *GraphAPIImpl {
	ig := opts.Config.Instagram
	return &GraphAPIImpl{
		httpClient:  &http.Client{Timeout: ig.Timeout},
		baseURL:     strings.TrimRight(ig.GraphURL, "/"),
		accountID:   ig.AccountID,
		accessToken: ig.AccessToken,

		defaultAltText:     ig.AltText,
		defaultLocationID:  ig.LocationID,
		defaultUserTags:    ig.UserTagsJSON,
		defaultProductTags: ig.ProductTagsJSON,

		settleDelay: ig.SettleDelay,
		pollStatus:  ig.PollStatus,
		pollConfig: retry.Config{
			MaxRetries:      ig.PollAttempts,
			InitialInterval: ig.SettleDelay,
			MaxInterval:     8 * ig.SettleDelay,
			Multiplier:      2,
		},
		sleep: sleepCtx,

		logger: opts.Logger.WithComponent("GraphAPI"),
		events: opts.Events,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (g *GraphAPIImpl) Publish(ctx context.Context, imageURL, caption string, opts domain.PublishOptions) (string, error) {
	g.warnUnsupportedFormat(imageURL)
	g.logger.Info("Publishing image", "image_url", imageURL, "caption", formatter.Preview(caption, 140))

	creationID, err := g.CreateContainer(ctx, imageURL, caption, opts)
	if err != nil {
		return "", err
	}

	if err := g.WaitReady(ctx, creationID); err != nil {
		return "", err
	}

	return g.PublishContainer(ctx, creationID)
}

// warnUnsupportedFormat only logs; the service gets the final say.
func (g *GraphAPIImpl) warnUnsupportedFormat(imageURL string) {
	p := imageURL
	if u, err := url.Parse(imageURL); err == nil {
		p = u.Path
	}
	ext := strings.ToLower(path.Ext(p))
	if !supportedExtensions[ext] {
		g.logger.Warn("Image format may be rejected, only JPG/PNG are officially supported", "image_url", imageURL, "ext", ext)
	}
}
