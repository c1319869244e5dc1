package app

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/orgball2608/insta-daily-poster/internal/domain"
	"github.com/orgball2608/insta-daily-poster/internal/events"
	mock_caption "github.com/orgball2608/insta-daily-poster/internal/caption/mocks"
	mock_feed "github.com/orgball2608/insta-daily-poster/internal/feed/mocks"
	mock_instagram "github.com/orgball2608/insta-daily-poster/internal/instagram/mocks"
	mock_record "github.com/orgball2608/insta-daily-poster/internal/record/mocks"
	"github.com/orgball2608/insta-daily-poster/internal/poster"
	"github.com/orgball2608/insta-daily-poster/internal/selector"
	"github.com/orgball2608/insta-daily-poster/pkg/config"
	"github.com/orgball2608/insta-daily-poster/pkg/errors"
	"github.com/orgball2608/insta-daily-poster/pkg/logger"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/mock/gomock"
)

func TestModuleGraphIsComplete(t *testing.T) {
	require.NoError(t, fx.ValidateApp(Module))
}

type mocks struct {
	feed      *mock_feed.MockSource
	records   *mock_record.MockRepository
	caption   *mock_caption.MockGenerator
	publisher *mock_instagram.MockPublisher
}

func newPoster(t *testing.T) (*poster.Poster, mocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := mocks{
		feed:      mock_feed.NewMockSource(ctrl),
		records:   mock_record.NewMockRepository(ctrl),
		caption:   mock_caption.NewMockGenerator(ctrl),
		publisher: mock_instagram.NewMockPublisher(ctrl),
	}
	log := logger.NewNop()

	cfg := &config.Config{}
	cfg.Feed.MaxDaysBack = 1

	p := poster.New(poster.Opts{
		Selector:  selector.New(selector.Opts{Feed: m.feed, Records: m.records, Logger: log, Events: events.Nop()}),
		Feed:      m.feed,
		Caption:   m.caption,
		Publisher: m.publisher,
		Records:   m.records,
		Events:    events.Nop(),
		Logger:    log,
		Config:    cfg,
		Location:  time.UTC,
	})
	return p, m
}

func (m mocks) selectOne() {
	m.feed.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return(&domain.DailyManifest{
		Images: []domain.Candidate{{Filename: "b.png", Prompt: "sunset"}},
	}, true)
	m.records.EXPECT().Load(gomock.Any(), gomock.Any()).Return(map[string]struct{}{}, nil)
	m.feed.EXPECT().ImageURL("b.png").Return("https://raw.example.com/b.png")
	m.caption.EXPECT().Generate(gomock.Any(), "sunset").Return("caption")
}

func TestRunOnceExitCodes(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing to do", func(t *testing.T) {
		p, m := newPoster(t)
		m.feed.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return(nil, false)
		require.Equal(t, ExitOK, RunOnce(ctx, logger.NewNop(), p))
	})

	t.Run("published", func(t *testing.T) {
		p, m := newPoster(t)
		m.selectOne()
		m.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("999", nil)
		m.records.EXPECT().Append(gomock.Any(), gomock.Any(), "b.png").Return(nil)
		require.Equal(t, ExitOK, RunOnce(ctx, logger.NewNop(), p))
	})

	t.Run("remote failure", func(t *testing.T) {
		p, m := newPoster(t)
		m.selectOne()
		m.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return("", &domain.PublishError{Phase: domain.PhaseCreateContainer, Message: "bad"})
		require.Equal(t, ExitFailed, RunOnce(ctx, logger.NewNop(), p))
	})

	t.Run("record failure after publish", func(t *testing.T) {
		p, m := newPoster(t)
		m.selectOne()
		m.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("999", nil)
		m.records.EXPECT().Append(gomock.Any(), gomock.Any(), "b.png").
			Return(errors.WrapWithCode(errors.ErrStorage, "record_write", "read-only file system"))

		var buf bytes.Buffer
		log := logger.New(logger.Opts{Env: "production", Writer: &buf})
		require.Equal(t, ExitFatal, RunOnce(ctx, log, p))
		require.Contains(t, buf.String(), `"code":"record_write"`)
	})
}
