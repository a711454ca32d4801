package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// PostgresStore persists sessions in the ussd_sessions table. Federation
// memberships are stored as a jsonb column; everything else maps to
// plain columns so operators can query account state directly.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (p *PostgresStore) Get(ctx context.Context, id string) (*Session, error) {
	var (
		s           Session
		name        sql.NullString
		credential  sql.NullString
		menuState   sql.NullString
		pending     sql.NullString
		federations []byte
	)

	err := p.db.QueryRowContext(ctx, `
		SELECT id, name, phone_number, country_code, credential,
		       account_state, menu_state, pending_input, federations,
		       created_at, updated_at
		FROM ussd_sessions
		WHERE id = $1
	`, id).Scan(
		&s.ID, &name, &s.PhoneNumber, &s.CountryCode, &credential,
		&s.AccountState, &menuState, &pending, &federations,
		&s.CreatedAt, &s.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	s.Name = name.String
	s.Credential = credential.String
	s.MenuState = MenuState(menuState.String)
	s.PendingInput = pending.String

	if len(federations) > 0 {
		if err := json.Unmarshal(federations, &s.Federations); err != nil {
			return nil, fmt.Errorf("session: bad federations column: %w", err)
		}
	}

	return &s, nil
}

func (p *PostgresStore) Put(ctx context.Context, s *Session) error {
	if s.ID == "" {
		return fmt.Errorf("session: missing id")
	}

	now := time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now

	federations, err := json.Marshal(s.Federations)
	if err != nil {
		return err
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO ussd_sessions (
			id, name, phone_number, country_code, credential,
			account_state, menu_state, pending_input, federations,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			credential = EXCLUDED.credential,
			account_state = EXCLUDED.account_state,
			menu_state = EXCLUDED.menu_state,
			pending_input = EXCLUDED.pending_input,
			federations = EXCLUDED.federations,
			updated_at = EXCLUDED.updated_at
	`,
		s.ID, s.Name, s.PhoneNumber, s.CountryCode, s.Credential,
		string(s.AccountState), string(s.MenuState), s.PendingInput,
		federations, s.CreatedAt, s.UpdatedAt,
	)

	return err
}
