package domain

type EventKind string

const (
	EventSelectionFound   EventKind = "selection.found"
	EventSelectionNone    EventKind = "selection.none"
	EventManifestAbsent   EventKind = "manifest.absent"
	EventCaptionFallback  EventKind = "caption.fallback"
	EventContainerCreated EventKind = "container.created"
	EventContainerReady   EventKind = "container.ready"
	EventContainerFailed  EventKind = "container.failed"
	EventPublishSucceeded EventKind = "publish.succeeded"
	EventPublishFailed    EventKind = "publish.failed"
	EventRecordAppended   EventKind = "record.appended"
)

// Event is a structured pipeline observation. Attrs are flat key/value pairs.
type Event struct {
	Kind  EventKind
	Attrs map[string]any
}

func NewEvent(kind EventKind, kv ...any) Event {
	attrs := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if key, ok := kv[i].(string); ok {
			attrs[key] = kv[i+1]
		}
	}
	return Event{Kind: kind, Attrs: attrs}
}
