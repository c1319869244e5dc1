package feed

import (
	"context"

	"github.com/orgball2608/insta-daily-poster/internal/domain"
)

// Reasons a manifest is treated as absent.
const (
	AbsentNotFound  = "not_found"
	AbsentStatus    = "status"
	AbsentMalformed = "malformed"
	AbsentTransport = "transport"
)

// Source reads the daily manifests of the content feed.
//
//go:generate go run go.uber.org/mock/mockgen -source=feed.go -destination=mocks/mock.go
type Source interface {
	// Fetch returns the manifest for date (YYYY_MM_DD). ok is false when the day has no
	// usable manifest, whatever the cause; Fetch never fails.
	Fetch(ctx context.Context, date string) (manifest *domain.DailyManifest, ok bool)

	// ImageURL resolves a manifest filename to a fully-qualified image URL.
	ImageURL(filename string) string
}
