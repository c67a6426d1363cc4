package port

import "context"

type EventSink interface {
	// Fire emits a named change event with an optional small payload;
	// consumed by presentation components outside the core
	Fire(ctx context.Context, event string, payload map[string]any) error
}
