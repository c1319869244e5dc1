package instagram

import (
	"context"

	"github.com/orgball2608/insta-daily-poster/internal/domain"
)

// Publisher posts a single image through the create-container / publish-container protocol.
//
//go:generate go run go.uber.org/mock/mockgen -source=instagram.go -destination=mocks/mock.go
type Publisher interface {
	// Publish returns the published media id. A *domain.PublishError means the service refused
	// the post; any other error is a transport fault.
	Publish(ctx context.Context, imageURL, caption string, opts domain.PublishOptions) (string, error)
}
