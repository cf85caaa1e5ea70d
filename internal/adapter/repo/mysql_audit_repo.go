package repo

import (
	"context"
	"database/sql"

	"github.com/Drayarch/genlayer-intelligent-contracts/internal/audit"
	"github.com/Drayarch/genlayer-intelligent-contracts/internal/usecase"
)

// MySQLAuditRepo archives access events. The insert is idempotent on the
// event id so broker redeliveries land exactly one row.
type MySQLAuditRepo struct{ db *sql.DB }

func NewMySQLAuditRepo(db *sql.DB) *MySQLAuditRepo { return &MySQLAuditRepo{db: db} }

func (r *MySQLAuditRepo) InsertAccessEvent(ctx context.Context, ev audit.AccessEvent) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO audit_events (id,occurred_at,service,client_id,remote,outcome,received_at)
VALUES (?, ?, ?, ?, ?, ?, NOW())
ON DUPLICATE KEY UPDATE id = id
`, ev.ID, ev.Time, ev.Service, ev.ClientID, ev.Remote, string(ev.Outcome))
	return err
}

var _ usecase.AuditArchive = (*MySQLAuditRepo)(nil)
