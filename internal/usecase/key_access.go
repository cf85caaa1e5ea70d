package usecase

import (
	"context"

	"github.com/Drayarch/genlayer-intelligent-contracts/internal/audit"
	domain "github.com/Drayarch/genlayer-intelligent-contracts/internal/entity"
	"github.com/Drayarch/genlayer-intelligent-contracts/internal/logging"
)

type GetKeyInput struct {
	Service  domain.ServiceID
	ClientID string
	Remote   string
}

type GetKeyOutput struct {
	Service domain.ServiceID
	Key     string
}

// KeyAccess wraps the registry lookup with the audit collaborator. The
// lookup itself stays pure: audit delivery is best-effort and its failure
// never alters the result the caller sees.
type KeyAccess struct {
	store KeyStore
	sink  audit.Sink // may be nil
}

func NewKeyAccess(store KeyStore, sink audit.Sink) *KeyAccess {
	return &KeyAccess{store: store, sink: sink}
}

func (uc *KeyAccess) GetKey(ctx context.Context, in GetKeyInput) (GetKeyOutput, error) {
	rec, err := uc.store.Get(in.Service)

	outcome := audit.OutcomeHit
	if err != nil {
		outcome = audit.OutcomeMiss
	}
	uc.emit(ctx, audit.NewAccessEvent(in.Service.String(), in.ClientID, in.Remote, outcome))

	if err != nil {
		return GetKeyOutput{}, err
	}
	return GetKeyOutput{Service: rec.Service, Key: rec.Key}, nil
}

func (uc *KeyAccess) ListServices(context.Context) []domain.ServiceID {
	return uc.store.Services()
}

func (uc *KeyAccess) ServiceInfo(_ context.Context, id domain.ServiceID) (domain.ServiceInfo, error) {
	return uc.store.Info(id)
}

func (uc *KeyAccess) emit(ctx context.Context, ev audit.AccessEvent) {
	if uc.sink == nil {
		return
	}
	if err := uc.sink.Record(ctx, ev); err != nil {
		logging.FromCtx(ctx).Warn("audit sink failed", "event_id", ev.ID, "error", err)
	}
}
