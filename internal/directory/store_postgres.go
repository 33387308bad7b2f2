package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresStore reads workspace telephony configuration from Postgres.
//
// Expected schema (owned by the settings UI, read-only here):
//
//	workspace_numbers(number PK, workspace_id)
//	workspace_telephony(workspace_id PK, account_sid, api_key_sid, api_key_secret, app_sid)
//	workspace_forwarding_numbers(workspace_id, number, position)
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) ResolveWorkspace(ctx context.Context, dialedNumber string) (string, error) {
	const q = `SELECT workspace_id FROM workspace_numbers WHERE number = $1`

	var wid string
	err := s.db.QueryRowContext(ctx, q, dialedNumber).Scan(&wid)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("directory: resolve workspace: %w", err)
	}
	return wid, nil
}

func (s *PostgresStore) Credentials(ctx context.Context, workspaceID string) (Credentials, error) {
	const q = `
		SELECT account_sid, api_key_sid, api_key_secret, app_sid
		FROM workspace_telephony
		WHERE workspace_id = $1`

	var creds Credentials
	err := s.db.QueryRowContext(ctx, q, workspaceID).Scan(
		&creds.AccountSID,
		&creds.APIKeySID,
		&creds.APIKeySecret,
		&creds.AppSID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Credentials{}, ErrNotFound
	}
	if err != nil {
		return Credentials{}, fmt.Errorf("directory: credentials: %w", err)
	}
	return creds, nil
}

func (s *PostgresStore) ForwardingNumbers(ctx context.Context, workspaceID string) ([]string, error) {
	const q = `
		SELECT number
		FROM workspace_forwarding_numbers
		WHERE workspace_id = $1
		ORDER BY position`

	rows, err := s.db.QueryContext(ctx, q, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("directory: forwarding numbers: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("directory: forwarding numbers: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("directory: forwarding numbers: %w", err)
	}
	return out, nil
}
