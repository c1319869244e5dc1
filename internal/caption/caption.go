package caption

import "context"

// DefaultCaption is used when there is no prompt to caption.
const DefaultCaption = "#art #aiart #digitalart"

// Generator writes a post caption from an image prompt.
//
//go:generate go run go.uber.org/mock/mockgen -source=caption.go -destination=mocks/mock.go
type Generator interface {
	// Generate never fails: when the remote model is unavailable it returns a local fallback.
	// It returns "" only for a blank prompt.
	Generate(ctx context.Context, prompt string) string
}
