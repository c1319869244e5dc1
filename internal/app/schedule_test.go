package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/orgball2608/insta-daily-poster/internal/domain"
	"github.com/orgball2608/insta-daily-poster/pkg/config"
	"github.com/orgball2608/insta-daily-poster/pkg/logger"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestSchedulerRunsPosterWithoutOverlap(t *testing.T) {
	p, m := newPoster(t)

	var inflight, maxInflight, runs atomic.Int32
	done := make(chan struct{}, 8)
	m.feed.EXPECT().Fetch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string) (*domain.DailyManifest, bool) {
			n := inflight.Add(1)
			for {
				prev := maxInflight.Load()
				if n <= prev || maxInflight.CompareAndSwap(prev, n) {
					break
				}
			}
			// longer than the one second cron period
			time.Sleep(1500 * time.Millisecond)
			inflight.Add(-1)
			runs.Add(1)
			done <- struct{}{}
			return nil, false
		}).
		AnyTimes()

	cfg := &config.Config{}
	cfg.App.ScheduleCron = "* * * * * *"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop, err := startScheduler(ctx, logger.NewNop(), cfg, time.UTC, p)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(10 * time.Second):
			t.Fatal("scheduled run did not happen")
		}
	}

	cancel()
	require.NoError(t, stop())
	require.Equal(t, int32(1), maxInflight.Load())
	require.GreaterOrEqual(t, runs.Load(), int32(2))
}

func TestSchedulerRejectsBadExpression(t *testing.T) {
	p, _ := newPoster(t)
	cfg := &config.Config{}
	cfg.App.ScheduleCron = "every morning"

	_, err := startScheduler(context.Background(), logger.NewNop(), cfg, time.UTC, p)
	require.ErrorContains(t, err, "every morning")
}

func TestHealthCheckHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	healthCheckHandler(rec, req, logger.NewNop())

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
	require.Equal(t, "ok", rec.Body.String())
}

func TestHttpServerStopsWithContext(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.Port = 0

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		startHttpServer(ctx, logger.NewNop(), cfg)
		close(stopped)
	}()

	cancel()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("server kept running after cancellation")
	}
}
