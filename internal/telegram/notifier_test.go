package telegram_test

import (
	"context"
	"errors"
	"testing"

	"github.com/orgball2608/insta-daily-poster/internal/domain"
	"github.com/orgball2608/insta-daily-poster/internal/telegram"
	mock_telegram "github.com/orgball2608/insta-daily-poster/internal/telegram/mocks"
	"github.com/orgball2608/insta-daily-poster/pkg/logger"
	"go.uber.org/mock/gomock"
)

func TestNotifierForwardsOutcomes(t *testing.T) {
	client := mock_telegram.NewMockClient(gomock.NewController(t))
	n := telegram.NewNotifier(client, logger.NewNop())
	ctx := context.Background()

	client.EXPECT().SendMessageToChannel("✅ Published 2025_10_05/b.png (media 999)").Return(nil)
	n.Emit(ctx, domain.NewEvent(domain.EventPublishSucceeded, "date", "2025_10_05", "filename", "b.png", "media_id", "999"))

	client.EXPECT().SendMessageToChannel("❌ Publish of 2025_10_05/b.png failed at create_container: Invalid image").
		Return(errors.New("chat not found"))
	n.Emit(ctx, domain.NewEvent(domain.EventPublishFailed,
		"date", "2025_10_05", "filename", "b.png", "phase", "create_container", "message", "Invalid image"))
}

func TestNotifierIgnoresOtherEvents(t *testing.T) {
	client := mock_telegram.NewMockClient(gomock.NewController(t))
	n := telegram.NewNotifier(client, logger.NewNop())

	n.Emit(context.Background(), domain.NewEvent(domain.EventSelectionFound, "date", "2025_10_05"))
	n.Emit(context.Background(), domain.NewEvent(domain.EventCaptionFallback))
}
