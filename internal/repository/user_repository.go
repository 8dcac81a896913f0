package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/aperture-science/city-lens-api/internal/model"
)

// UserRepo is the MySQL implementation of UserStore.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// CreateUser inserts a user row. Emails are normalized to lower case
// before the insert; a MySQL 1062 duplicate-key error is translated to
// ErrEmailExists.
func (r *UserRepo) CreateUser(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (user_uuid, email, first_name, last_name, password_hash, role) VALUES (?,?,?,?,?,?)",
		u.ID.String(), u.Email, u.FirstName, u.LastName, u.PasswordHash, string(u.Role))
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrEmailExists
		}
		return err
	}
	return nil
}

// GetUserByEmail fetches a user by normalized email.
func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanUser(r.DB.QueryRowContext(ctx,
		"SELECT user_uuid, email, first_name, last_name, password_hash, role FROM users WHERE email=? LIMIT 1",
		email))
}

// GetUserByID fetches a user by id.
func (r *UserRepo) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.scanUser(r.DB.QueryRowContext(ctx,
		"SELECT user_uuid, email, first_name, last_name, password_hash, role FROM users WHERE user_uuid=? LIMIT 1",
		id.String()))
}

// UpdateUser overwrites the mutable columns of an existing user row.
func (r *UserRepo) UpdateUser(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET email=?, first_name=?, last_name=?, password_hash=?, role=? WHERE user_uuid=?",
		u.Email, u.FirstName, u.LastName, u.PasswordHash, string(u.Role), u.ID.String())
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrEmailExists
		}
		return err
	}
	// RowsAffected is zero both when the row is missing and when the
	// update was a no-op, so only the missing row case is checked here.
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetUserByID(ctx, u.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *UserRepo) scanUser(row *sql.Row) (*model.User, error) {
	var (
		u    model.User
		id   string
		role string
	)
	if err := row.Scan(&id, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	u.ID = parsed
	u.Role = model.ParseRole(role)
	return &u, nil
}
