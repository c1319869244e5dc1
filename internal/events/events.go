package events

import (
	"context"
	"sort"

	"github.com/orgball2608/insta-daily-poster/internal/domain"
	"github.com/orgball2608/insta-daily-poster/pkg/logger"
)

//go:generate go run go.uber.org/mock/mockgen -source=events.go -destination=mocks/mock.go
type Sink interface {
	Emit(ctx context.Context, ev domain.Event)
}

// LogSink writes every event as a structured log line.
type LogSink struct {
	logger logger.Logger
}

func NewLogSink(log logger.Logger) *LogSink {
	return &LogSink{logger: log.WithComponent("Events")}
}

func (s *LogSink) Emit(_ context.Context, ev domain.Event) {
	args := make([]any, 0, len(ev.Attrs)*2+2)
	args = append(args, "event", string(ev.Kind))

	keys := make([]string, 0, len(ev.Attrs))
	for k := range ev.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, k, ev.Attrs[k])
	}

	switch ev.Kind {
	case domain.EventPublishFailed, domain.EventContainerFailed:
		s.logger.Error("Pipeline event", args...)
	case domain.EventCaptionFallback:
		s.logger.Warn("Pipeline event", args...)
	case domain.EventManifestAbsent:
		s.logger.Debug("Pipeline event", args...)
	default:
		s.logger.Info("Pipeline event", args...)
	}
}

type fanout []Sink

// Fanout delivers each event to every sink in order.
func Fanout(sinks ...Sink) Sink {
	return fanout(sinks)
}

func (f fanout) Emit(ctx context.Context, ev domain.Event) {
	for _, s := range f {
		s.Emit(ctx, ev)
	}
}

type nop struct{}

func Nop() Sink { return nop{} }

func (nop) Emit(context.Context, domain.Event) {}
