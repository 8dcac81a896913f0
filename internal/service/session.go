package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aperture-science/city-lens-api/internal/model"
	"github.com/aperture-science/city-lens-api/internal/repository"
	"github.com/aperture-science/city-lens-api/internal/utils"
)

// SessionPolicy names the behavior of login when the user already has
// a live session token. The original system was ambiguous here; the
// policy is an explicit configuration choice in this implementation.
type SessionPolicy string

const (
	// PolicyReplace revokes the outstanding token and issues a fresh
	// one. This is the default: it never locks a user out of their
	// own account.
	PolicyReplace SessionPolicy = "replace"
	// PolicyReject refuses the second login while a token is live.
	PolicyReject SessionPolicy = "reject"
)

// ParseSessionPolicy maps a configuration string onto a policy,
// defaulting to PolicyReplace for anything unrecognized.
func ParseSessionPolicy(s string) SessionPolicy {
	if SessionPolicy(strings.ToLower(strings.TrimSpace(s))) == PolicyReject {
		return PolicyReject
	}
	return PolicyReplace
}

// SessionManager issues, resolves and revokes opaque session tokens.
// Tokens are derived through the credential hasher from the user's
// email and the issuance instant, stored keyed by their value, and
// are the sole bearer credential for every protected endpoint.
type SessionManager struct {
	users    repository.UserStore
	sessions repository.SessionStore
	policy   SessionPolicy
	now      func() time.Time
}

// NewSessionManager wires a SessionManager to its storage ports.
func NewSessionManager(users repository.UserStore, sessions repository.SessionStore, policy SessionPolicy) *SessionManager {
	return &SessionManager{users: users, sessions: sessions, policy: policy, now: time.Now}
}

// Issue applies the single-session policy and persists a new token for
// the user. Under PolicyReject an outstanding token aborts the login
// with ErrSessionActive; under PolicyReplace it is revoked first.
func (m *SessionManager) Issue(ctx context.Context, user *model.User) (*model.SessionToken, error) {
	existing, err := m.sessions.GetTokenByUser(ctx, user.ID)
	if err != nil && !errors.Is(err, repository.ErrTokenNotFound) {
		return nil, err
	}
	if existing != nil {
		if m.policy == PolicyReject {
			return nil, ErrSessionActive
		}
		if err := m.sessions.DeleteToken(ctx, existing.Token); err != nil && !errors.Is(err, repository.ErrTokenNotFound) {
			return nil, err
		}
	}

	issuedAt := m.now().UTC()
	token := &model.SessionToken{
		Token:     utils.NewSessionTokenValue(user.Email, issuedAt),
		UserID:    user.ID,
		CreatedAt: issuedAt,
	}
	if err := m.sessions.SaveToken(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

// Resolve maps a bearer token onto its owning user. A missing token
// row or a dangling user reference both come back as ErrUnauthorized;
// the caller learns nothing about which lookup failed.
func (m *SessionManager) Resolve(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	t, err := m.sessions.GetToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	user, err := m.users.GetUserByID(ctx, t.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}

// Revoke deletes a token. Revoking an unknown token reports
// repository.ErrTokenNotFound.
func (m *SessionManager) Revoke(ctx context.Context, token string) error {
	return m.sessions.DeleteToken(ctx, token)
}
