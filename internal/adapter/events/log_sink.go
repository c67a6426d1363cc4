package events

import (
	"context"
	"log"
)

// LogSink writes change events to the process log. It is the default sink
// when no event infrastructure is configured.
type LogSink struct{}

func NewLogSink() LogSink {
	return LogSink{}
}

func (LogSink) Fire(ctx context.Context, event string, payload map[string]any) error {
	if len(payload) > 0 {
		log.Printf("event %s %v", event, payload)
	} else {
		log.Printf("event %s", event)
	}
	return nil
}
