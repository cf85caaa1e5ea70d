package kafka

import (
	"context"

	"github.com/Drayarch/genlayer-intelligent-contracts/internal/audit"
	"github.com/Drayarch/genlayer-intelligent-contracts/internal/usecase"
)

// AccessArchiveHandler lands consumed access events in the archive.
type AccessArchiveHandler struct {
	Archive *usecase.ArchiveAccessEvent
}

func NewAccessArchiveHandler(arch *usecase.ArchiveAccessEvent) *AccessArchiveHandler {
	return &AccessArchiveHandler{Archive: arch}
}

func (h *AccessArchiveHandler) Handle(ctx context.Context, ev audit.AccessEvent) error {
	return h.Archive.Execute(ctx, ev)
}
