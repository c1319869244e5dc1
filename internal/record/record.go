package record

import (
	"context"
)

// Repository is the dedup ledger: per calendar day, the filenames already published.
// Entries are only ever added.
//
//go:generate go run go.uber.org/mock/mockgen -source=record.go -destination=mocks/mock.go
type Repository interface {
	// Load returns the posted set for date, creating an empty record if none exists yet.
	Load(ctx context.Context, date string) (map[string]struct{}, error)

	// Append adds filename to the record for date. Appending a present filename is a no-op.
	Append(ctx context.Context, date string, filename string) error
}
