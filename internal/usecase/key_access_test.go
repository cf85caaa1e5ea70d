package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Drayarch/genlayer-intelligent-contracts/internal/audit"
	domain "github.com/Drayarch/genlayer-intelligent-contracts/internal/entity"
)

type fakeStore struct {
	records map[domain.ServiceID]domain.KeyRecord
}

func (s *fakeStore) Get(id domain.ServiceID) (domain.KeyRecord, error) {
	rec, ok := s.records[id]
	if !ok {
		return domain.KeyRecord{}, domain.ErrServiceNotFound
	}
	return rec, nil
}

func (s *fakeStore) Services() []domain.ServiceID {
	out := make([]domain.ServiceID, 0, len(s.records))
	for id := range s.records {
		out = append(out, id)
	}
	return out
}

func (s *fakeStore) Info(id domain.ServiceID) (domain.ServiceInfo, error) {
	rec, err := s.Get(id)
	if err != nil {
		return domain.ServiceInfo{}, err
	}
	return rec.Info(), nil
}

type captureSink struct {
	events []audit.AccessEvent
	err    error
}

func (s *captureSink) Record(_ context.Context, ev audit.AccessEvent) error {
	s.events = append(s.events, ev)
	return s.err
}

func newFixture(sinkErr error) (*KeyAccess, *captureSink) {
	store := &fakeStore{records: map[domain.ServiceID]domain.KeyRecord{
		"weather": {Service: "weather", Key: "bbe7e79a414f003442cd9662246f7be7", Provider: "OpenWeatherMap"},
	}}
	sink := &captureSink{err: sinkErr}
	return NewKeyAccess(store, sink), sink
}

func TestGetKeyHitEmitsAudit(t *testing.T) {
	uc, sink := newFixture(nil)

	out, err := uc.GetKey(context.Background(), GetKeyInput{
		Service: "weather", ClientID: "demo-contract", Remote: "10.1.2.3",
	})
	require.NoError(t, err)
	assert.Equal(t, "bbe7e79a414f003442cd9662246f7be7", out.Key)

	require.Len(t, sink.events, 1)
	ev := sink.events[0]
	assert.Equal(t, "weather", ev.Service)
	assert.Equal(t, "demo-contract", ev.ClientID)
	assert.Equal(t, audit.OutcomeHit, ev.Outcome)
}

func TestGetKeyMissSurfacesNotFound(t *testing.T) {
	uc, sink := newFixture(nil)

	_, err := uc.GetKey(context.Background(), GetKeyInput{Service: "stocks"})
	require.ErrorIs(t, err, domain.ErrServiceNotFound)

	require.Len(t, sink.events, 1)
	assert.Equal(t, audit.OutcomeMiss, sink.events[0].Outcome)
}

func TestGetKeySinkFailureDoesNotChangeResult(t *testing.T) {
	uc, _ := newFixture(errors.New("broker down"))

	out, err := uc.GetKey(context.Background(), GetKeyInput{Service: "weather"})
	require.NoError(t, err)
	assert.Equal(t, "bbe7e79a414f003442cd9662246f7be7", out.Key)
}

func TestGetKeyNilSink(t *testing.T) {
	store := &fakeStore{records: map[domain.ServiceID]domain.KeyRecord{
		"weather": {Service: "weather", Key: "k"},
	}}
	uc := NewKeyAccess(store, nil)

	out, err := uc.GetKey(context.Background(), GetKeyInput{Service: "weather"})
	require.NoError(t, err)
	assert.Equal(t, "k", out.Key)
}

func TestServiceInfoPassthrough(t *testing.T) {
	uc, _ := newFixture(nil)

	info, err := uc.ServiceInfo(context.Background(), "weather")
	require.NoError(t, err)
	assert.Equal(t, "OpenWeatherMap", info.Provider)
	assert.Equal(t, 32, info.KeyLength)

	_, err = uc.ServiceInfo(context.Background(), "stocks")
	require.ErrorIs(t, err, domain.ErrServiceNotFound)
}

type captureArchive struct {
	events []audit.AccessEvent
}

func (a *captureArchive) InsertAccessEvent(_ context.Context, ev audit.AccessEvent) error {
	a.events = append(a.events, ev)
	return nil
}

func TestArchiveAccessEvent(t *testing.T) {
	arch := &captureArchive{}
	uc := NewArchiveAccessEvent(arch)

	ev := audit.NewAccessEvent("weather", "demo-contract", "r", audit.OutcomeHit)
	require.NoError(t, uc.Execute(context.Background(), ev))
	require.Len(t, arch.events, 1)

	err := uc.Execute(context.Background(), audit.AccessEvent{})
	require.ErrorIs(t, err, ErrBlankEvent)
	assert.Len(t, arch.events, 1, "blank event never reaches the archive")
}
