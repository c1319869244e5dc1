package events_test

import (
	"context"
	"testing"

	"github.com/orgball2608/insta-daily-poster/internal/domain"
	"github.com/orgball2608/insta-daily-poster/internal/events"
	mock_events "github.com/orgball2608/insta-daily-poster/internal/events/mocks"
	"github.com/orgball2608/insta-daily-poster/pkg/logger"
	"go.uber.org/mock/gomock"
)

func TestFanoutDeliversToEverySinkInOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	first := mock_events.NewMockSink(ctrl)
	second := mock_events.NewMockSink(ctrl)

	ev := domain.NewEvent(domain.EventPublishSucceeded, "media_id", "999")
	gomock.InOrder(
		first.EXPECT().Emit(gomock.Any(), ev),
		second.EXPECT().Emit(gomock.Any(), ev),
	)

	events.Fanout(first, second).Emit(context.Background(), ev)
}

func TestLogSinkAcceptsEveryKind(t *testing.T) {
	sink := events.NewLogSink(logger.NewNop())
	for _, kind := range []domain.EventKind{
		domain.EventSelectionFound,
		domain.EventManifestAbsent,
		domain.EventCaptionFallback,
		domain.EventPublishFailed,
	} {
		sink.Emit(context.Background(), domain.NewEvent(kind, "date", "2025_10_05", "odd"))
	}
}
