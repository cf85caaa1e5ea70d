package usecase

import (
	"context"
	"errors"

	"github.com/Drayarch/genlayer-intelligent-contracts/internal/audit"
)

var ErrBlankEvent = errors.New("access event missing id")

// ArchiveAccessEvent is the worker-side use case: take an event off a broker
// and persist it. It must be idempotent because brokers redeliver; the
// archive handles duplicate ids.
type ArchiveAccessEvent struct {
	archive AuditArchive
}

func NewArchiveAccessEvent(archive AuditArchive) *ArchiveAccessEvent {
	return &ArchiveAccessEvent{archive: archive}
}

func (uc *ArchiveAccessEvent) Execute(ctx context.Context, ev audit.AccessEvent) error {
	if ev.ID == "" {
		return ErrBlankEvent
	}
	return uc.archive.InsertAccessEvent(ctx, ev)
}
