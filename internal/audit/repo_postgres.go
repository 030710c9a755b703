package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PostgresRepo appends events to audit_events and reads them back for
// reporting. It never updates or deletes.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	const q = `
INSERT INTO audit_events (
  id, workspace_id, type, actor_user_id, actor_role, ip_address,
  call_sid, rule, override_id, message, metadata, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NULLIF($11,'')::jsonb,$12)
`
	_, err := r.db.ExecContext(ctx, q,
		e.ID,
		e.WorkspaceID,
		string(e.Type),
		e.ActorUserID,
		e.ActorRole,
		e.IPAddress,
		e.CallSID,
		e.Rule,
		e.OverrideID,
		e.Message,
		e.Metadata,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("audit: insert: %w", err)
	}
	return nil
}

func (r *PostgresRepo) ListEvents(ctx context.Context, workspaceID string, typ EventType, from, to time.Time) ([]Event, error) {
	if workspaceID == "" {
		return nil, ErrInvalidEvent
	}
	const q = `
SELECT id, workspace_id, type, actor_user_id, actor_role, ip_address,
       call_sid, rule, override_id, message, COALESCE(metadata::text, ''), created_at
FROM audit_events
WHERE workspace_id = $1 AND type = $2 AND created_at >= $3 AND created_at < $4
ORDER BY created_at ASC
`
	rows, err := r.db.QueryContext(ctx, q, workspaceID, string(typ), from, to)
	if err != nil {
		return nil, fmt.Errorf("audit: query: %w", err)
	}
	defer rows.Close()

	out := make([]Event, 0)
	for rows.Next() {
		var e Event
		if err := rows.Scan(
			&e.ID,
			&e.WorkspaceID,
			&e.Type,
			&e.ActorUserID,
			&e.ActorRole,
			&e.IPAddress,
			&e.CallSID,
			&e.Rule,
			&e.OverrideID,
			&e.Message,
			&e.Metadata,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("audit: scan: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("audit: rows: %w", err)
	}
	return out, nil
}
