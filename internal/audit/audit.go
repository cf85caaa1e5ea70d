package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Outcome of a key lookup as seen by the audit trail.
type Outcome string

const (
	OutcomeHit  Outcome = "hit"
	OutcomeMiss Outcome = "miss"
)

// AccessEvent records one key lookup: who asked for which service and
// whether the registry had it. The key value itself never appears here.
type AccessEvent struct {
	ID       string    `json:"id"`
	Time     time.Time `json:"time"`
	Service  string    `json:"service"`
	ClientID string    `json:"clientId"`
	Remote   string    `json:"remote"`
	Outcome  Outcome   `json:"outcome"`
}

func NewAccessEvent(service, clientID, remote string, outcome Outcome) AccessEvent {
	return AccessEvent{
		ID:       uuid.NewString(),
		Time:     time.Now().UTC(),
		Service:  service,
		ClientID: clientID,
		Remote:   remote,
		Outcome:  outcome,
	}
}

// Sink receives access events. Implementations must not block longer than
// the request they shadow; delivery is best-effort and a sink error never
// changes the lookup result.
type Sink interface {
	Record(ctx context.Context, ev AccessEvent) error
}

// Fanout delivers each event to every sink. All sinks are attempted; errors
// are joined rather than short-circuiting.
type Fanout []Sink

func (f Fanout) Record(ctx context.Context, ev AccessEvent) error {
	var errs []error
	for _, s := range f {
		if err := s.Record(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
