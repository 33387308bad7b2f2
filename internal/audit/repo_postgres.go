package audit

import (
	"context"
	"database/sql"
)

// PostgresRepository appends events to the audit_events table.
//
// Expected schema:
//
//	CREATE TABLE audit_events (
//	    id           text PRIMARY KEY,
//	    workspace_id text NOT NULL,
//	    type         text NOT NULL,
//	    actor_user_id text,
//	    actor_role   text,
//	    ip_address   text,
//	    call_sid     text,
//	    identity     text,
//	    message      text,
//	    metadata     text,
//	    created_at   timestamptz NOT NULL
//	);
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Append(ctx context.Context, e Event) error {
	const q = `
		INSERT INTO audit_events
			(id, workspace_id, type, actor_user_id, actor_role, ip_address,
			 call_sid, identity, message, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.db.ExecContext(ctx, q,
		e.ID, e.WorkspaceID, string(e.Type), e.ActorUserID, e.ActorRole, e.IPAddress,
		e.CallSID, e.Identity, e.Message, e.Metadata, e.CreatedAt)
	return err
}
