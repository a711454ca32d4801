package db

import (
	"context"
	"database/sql"
)

const sessionsMigration = `
CREATE TABLE IF NOT EXISTS ussd_sessions (
    id text PRIMARY KEY,
    name text,
    phone_number text NOT NULL,
    country_code text NOT NULL,
    credential text,
    account_state text NOT NULL DEFAULT 'unregistered',
    menu_state text,
    pending_input text,
    federations jsonb NOT NULL DEFAULT '[]'::jsonb,
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS ussd_sessions_phone_idx
ON ussd_sessions (phone_number);
`

func RunSessionsMigration(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, sessionsMigration)
	return err
}
