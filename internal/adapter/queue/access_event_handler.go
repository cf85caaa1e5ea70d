package queue

import (
	"context"

	"github.com/Drayarch/genlayer-intelligent-contracts/internal/audit"
	"github.com/Drayarch/genlayer-intelligent-contracts/internal/usecase"
)

// AccessEventHandler drains the audit queue into the archive.
type AccessEventHandler struct {
	Archive *usecase.ArchiveAccessEvent
}

func NewAccessEventHandler(arch *usecase.ArchiveAccessEvent) *AccessEventHandler {
	return &AccessEventHandler{Archive: arch}
}

// HandleAccess is intended to be used with the JSON adapter
// (queue.JSONHandler[audit.AccessEvent]).
func (h *AccessEventHandler) HandleAccess(ctx context.Context, ev audit.AccessEvent) error {
	return h.Archive.Execute(ctx, ev)
}
