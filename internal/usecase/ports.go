package usecase

import (
	"context"

	"github.com/Drayarch/genlayer-intelligent-contracts/internal/audit"
	domain "github.com/Drayarch/genlayer-intelligent-contracts/internal/entity"
)

// KeyStore is the lookup side of the registry. registry.Registry satisfies
// it; tests use in-memory fakes.
type KeyStore interface {
	Get(id domain.ServiceID) (domain.KeyRecord, error)
	Services() []domain.ServiceID
	Info(id domain.ServiceID) (domain.ServiceInfo, error)
}

// AuditArchive persists access events pulled off a broker.
type AuditArchive interface {
	InsertAccessEvent(ctx context.Context, ev audit.AccessEvent) error
}
