package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"phoneline/internal/routing"
	"phoneline/pkg/utils"
)

// PostgresRepo stores settings in workspace_settings, lines in workspace_lines and
// overrides in mode_overrides. See migrations/0001_init.sql.
type PostgresRepo struct {
	db    *sql.DB
	clock func() time.Time
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db, clock: time.Now}
}

func (r *PostgresRepo) Get(ctx context.Context, workspaceID string) (routing.Settings, error) {
	if workspaceID == "" {
		return routing.Settings{}, ErrInvalidArgument
	}
	const q = `
SELECT key, value
FROM workspace_settings
WHERE workspace_id = $1
`
	rows, err := r.db.QueryContext(ctx, q, workspaceID)
	if err != nil {
		return routing.Settings{}, fmt.Errorf("settings: query: %w", err)
	}
	defer rows.Close()

	kv := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return routing.Settings{}, fmt.Errorf("settings: scan: %w", err)
		}
		kv[k] = v
	}
	if err := rows.Err(); err != nil {
		return routing.Settings{}, fmt.Errorf("settings: rows: %w", err)
	}
	if len(kv) == 0 {
		return routing.Settings{}, ErrNotFound
	}
	return FromKV(kv), nil
}

func (r *PostgresRepo) Put(ctx context.Context, workspaceID string, s routing.Settings) error {
	if workspaceID == "" {
		return ErrInvalidArgument
	}
	const q = `
INSERT INTO workspace_settings (workspace_id, key, value, updated_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (workspace_id, key)
DO UPDATE SET value = EXCLUDED.value,
              updated_at = EXCLUDED.updated_at
`
	now := r.clock().UTC()
	return utils.WithTx(ctx, r.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		for k, v := range ToKV(s) {
			if _, err := tx.ExecContext(ctx, q, workspaceID, k, v, now); err != nil {
				return fmt.Errorf("settings: upsert %s: %w", k, err)
			}
		}
		return nil
	})
}

func (r *PostgresRepo) WorkspaceForNumber(ctx context.Context, number string) (string, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return "", ErrInvalidArgument
	}
	const q = `
SELECT workspace_id
FROM workspace_lines
WHERE phone_number = $1
`
	var ws string
	if err := r.db.QueryRowContext(ctx, q, number).Scan(&ws); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return ws, nil
}

func (r *PostgresRepo) GetActiveOverride(ctx context.Context, workspaceID string, now time.Time) (ModeOverride, bool, error) {
	const q = `
SELECT id, workspace_id, agent_mode, reason, expires_at, created_at
FROM mode_overrides
WHERE workspace_id = $1 AND expires_at > $2
ORDER BY created_at DESC
LIMIT 1
`
	var o ModeOverride
	err := r.db.QueryRowContext(ctx, q, workspaceID, now).Scan(
		&o.ID,
		&o.WorkspaceID,
		&o.AgentMode,
		&o.Reason,
		&o.ExpiresAt,
		&o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ModeOverride{}, false, nil
		}
		return ModeOverride{}, false, err
	}
	return o, true, nil
}

func (r *PostgresRepo) SaveOverride(ctx context.Context, o ModeOverride) error {
	const q = `
INSERT INTO mode_overrides (id, workspace_id, agent_mode, reason, expires_at, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
`
	_, err := r.db.ExecContext(ctx, q, o.ID, o.WorkspaceID, o.AgentMode, o.Reason, o.ExpiresAt, o.CreatedAt)
	return err
}

func (r *PostgresRepo) ClearOverrides(ctx context.Context, workspaceID string) error {
	const q = `DELETE FROM mode_overrides WHERE workspace_id = $1`
	_, err := r.db.ExecContext(ctx, q, workspaceID)
	return err
}
