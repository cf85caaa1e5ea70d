package audit

import (
	"context"
	"log/slog"
)

// SlogSink writes access events to the structured log. It is the sink that
// is always on: brokers are optional, the log line is not.
type SlogSink struct {
	L *slog.Logger
}

func NewSlogSink(l *slog.Logger) SlogSink { return SlogSink{L: l} }

func (s SlogSink) Record(ctx context.Context, ev AccessEvent) error {
	s.L.InfoContext(ctx, "key_access",
		"event_id", ev.ID,
		"service", ev.Service,
		"client_id", ev.ClientID,
		"remote", ev.Remote,
		"outcome", string(ev.Outcome),
	)
	return nil
}
