package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/aperture-science/city-lens-api/internal/model"
)

// SessionRepo is the MySQL implementation of SessionStore. The table
// carries a uniqueness constraint on user_uuid, which closes the
// concurrent-login race: two logins racing past the service-level
// policy check cannot both insert a token for the same user.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// SaveToken inserts a session token row keyed by the token value.
func (r *SessionRepo) SaveToken(ctx context.Context, t *model.SessionToken) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO session_tokens (token, user_uuid, created_at) VALUES (?,?,?)",
		t.Token, t.UserID.String(), t.CreatedAt.UTC())
	return err
}

// GetToken looks a token up by its value.
func (r *SessionRepo) GetToken(ctx context.Context, token string) (*model.SessionToken, error) {
	return r.scanToken(r.DB.QueryRowContext(ctx,
		"SELECT token, user_uuid, created_at FROM session_tokens WHERE token=? LIMIT 1", token))
}

// GetTokenByUser returns the user's live token, if any. The session
// policy check in the service layer relies on this lookup.
func (r *SessionRepo) GetTokenByUser(ctx context.Context, userID uuid.UUID) (*model.SessionToken, error) {
	return r.scanToken(r.DB.QueryRowContext(ctx,
		"SELECT token, user_uuid, created_at FROM session_tokens WHERE user_uuid=? LIMIT 1", userID.String()))
}

// DeleteToken removes a token row. Deleting an absent token reports
// ErrTokenNotFound so logout can distinguish the two outcomes.
func (r *SessionRepo) DeleteToken(ctx context.Context, token string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM session_tokens WHERE token=?", token)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTokenNotFound
	}
	return nil
}

func (r *SessionRepo) scanToken(row *sql.Row) (*model.SessionToken, error) {
	var (
		t  model.SessionToken
		id string
	)
	if err := row.Scan(&t.Token, &id, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	t.UserID = parsed
	return &t, nil
}
