package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/aperture-science/city-lens-api/internal/model"
	"github.com/aperture-science/city-lens-api/internal/repository"
	"github.com/aperture-science/city-lens-api/internal/utils"
)

// AccountService handles registration, login, logout and profile
// reads/updates. Login delegates token issuance (and the single
// session policy) to the SessionManager.
type AccountService struct {
	users      repository.UserStore
	sessions   *SessionManager
	bcryptCost int
}

func NewAccountService(users repository.UserStore, sessions *SessionManager, bcryptCost int) *AccountService {
	return &AccountService{users: users, sessions: sessions, bcryptCost: bcryptCost}
}

// ProfileChanges is a partial update of a user profile. Nil fields are
// left untouched; a provided password is re-hashed before persisting.
type ProfileChanges struct {
	FirstName *string
	LastName  *string
	Email     *string
	Password  *string
}

// Register hashes the password, assigns a new UUID and persists the
// user with the standard role. Email uniqueness is enforced by the
// storage layer and surfaces as repository.ErrEmailExists.
func (s *AccountService) Register(ctx context.Context, firstName, lastName, email, password string) (*model.User, error) {
	hash, err := utils.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		ID:           uuid.New(),
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: hash,
		Role:         model.RoleUser,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies the credentials and issues a session token. An
// unknown email and a wrong password are indistinguishable to the
// caller; both come back as ErrUnauthorized. ErrSessionActive is
// passed through when the reject policy denies a second login.
func (s *AccountService) Login(ctx context.Context, email, password string) (*model.SessionToken, *model.User, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil, ErrUnauthorized
		}
		return nil, nil, err
	}
	if !utils.VerifyPassword(user.PasswordHash, password) {
		return nil, nil, ErrUnauthorized
	}
	token, err := s.sessions.Issue(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return token, user, nil
}

// Logout revokes the token. Unknown tokens surface as
// repository.ErrTokenNotFound.
func (s *AccountService) Logout(ctx context.Context, token string) error {
	return s.sessions.Revoke(ctx, token)
}

// GetProfile resolves the token and returns the full user record. The
// caller already holds the user's own token, so no further ownership
// check applies.
func (s *AccountService) GetProfile(ctx context.Context, token string) (*model.User, error) {
	return s.sessions.Resolve(ctx, token)
}

// UpdateProfile applies the provided (non-nil) fields over the
// existing record and persists it.
func (s *AccountService) UpdateProfile(ctx context.Context, token string, changes ProfileChanges) (*model.User, error) {
	user, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	if changes.FirstName != nil {
		user.FirstName = *changes.FirstName
	}
	if changes.LastName != nil {
		user.LastName = *changes.LastName
	}
	if changes.Email != nil {
		user.Email = *changes.Email
	}
	if changes.Password != nil {
		hash, err := utils.HashPassword(*changes.Password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
