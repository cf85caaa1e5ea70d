package registry

import (
	"fmt"
	"sort"

	domain "github.com/Drayarch/genlayer-intelligent-contracts/internal/entity"
)

// Registry maps service identifiers to key records. It is built once from a
// seed list and never mutated afterwards: there is no add, remove, or rotate.
// Reads need no locking because the underlying map is read-only after New
// returns, so a single instance is safe for any number of concurrent callers.
type Registry struct {
	records map[domain.ServiceID]domain.KeyRecord
}

// New validates the seeds and builds a registry. Malformed identifiers, empty
// key values, and duplicate identifiers are rejected here rather than
// surfacing later at lookup time. The seed slice is copied; the caller keeps
// no handle into the registry's state.
func New(seeds []domain.KeyRecord) (*Registry, error) {
	records := make(map[domain.ServiceID]domain.KeyRecord, len(seeds))
	for _, rec := range seeds {
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("seed %q: %w", rec.Service, err)
		}
		if _, dup := records[rec.Service]; dup {
			return nil, fmt.Errorf("seed %q: duplicate service identifier", rec.Service)
		}
		records[rec.Service] = rec
	}
	return &Registry{records: records}, nil
}

// MustNew is New for static seed data known good at compile time.
func MustNew(seeds []domain.KeyRecord) *Registry {
	r, err := New(seeds)
	if err != nil {
		panic(err)
	}
	return r
}

// Get returns the record for id. A miss — including the empty identifier,
// which is not special-cased — fails with domain.ErrServiceNotFound. The
// lookup is a pure map read: deterministic, idempotent, side-effect free.
func (r *Registry) Get(id domain.ServiceID) (domain.KeyRecord, error) {
	rec, ok := r.records[id]
	if !ok {
		return domain.KeyRecord{}, fmt.Errorf("service %q: %w", id, domain.ErrServiceNotFound)
	}
	return rec, nil
}

// Key returns the secret value for id. This is the lookup contract consumed
// in place of a hardcoded literal by contract backends.
func (r *Registry) Key(id domain.ServiceID) (string, error) {
	rec, err := r.Get(id)
	if err != nil {
		return "", err
	}
	return rec.Key, nil
}

// Info returns the key-free description of a service.
func (r *Registry) Info(id domain.ServiceID) (domain.ServiceInfo, error) {
	rec, err := r.Get(id)
	if err != nil {
		return domain.ServiceInfo{}, err
	}
	return rec.Info(), nil
}

// Services lists registered identifiers in lexical order.
func (r *Registry) Services() []domain.ServiceID {
	ids := make([]domain.ServiceID, 0, len(r.records))
	for id := range r.records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (r *Registry) Len() int { return len(r.records) }
