package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aperture-science/city-lens-api/internal/repository"
	"github.com/aperture-science/city-lens-api/internal/service"
)

// UserHandler bundles dependencies for the account endpoints.
type UserHandler struct {
	Accounts *service.AccountService
}

func NewUserHandler(accounts *service.AccountService) *UserHandler {
	return &UserHandler{Accounts: accounts}
}

// ----- DTOs -----

type registerReq struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResp struct {
	Token string   `json:"token"`
	User  userJSON `json:"user"`
}

type updateProfileReq struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`
}

// Register creates an account and returns the public user projection.
// Duplicate emails surface from the storage layer as a conflict.
func (h *UserHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.Accounts.Register(ctx, req.FirstName, req.LastName, req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, publicUser(user))
}

// Login verifies credentials and returns a session token plus the
// public user. A second login while a session is live is governed by
// the configured session policy.
func (h *UserHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	token, user, err := h.Accounts.Login(ctx, req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, loginResp{Token: token.Token, User: publicUser(user)})
}

// Logout revokes the caller's session token. The responses are plain
// text: "session closed" on success, "token not found" when the token
// does not exist.
func (h *UserHandler) Logout(c echo.Context) error {
	token := bearerToken(c)
	if token == "" {
		return c.String(http.StatusUnauthorized, "token not found")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Accounts.Logout(ctx, token); err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return c.String(http.StatusUnauthorized, "token not found")
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.String(http.StatusOK, "session closed")
}

// Me returns the full profile of the token's owner.
func (h *UserHandler) Me(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.Accounts.GetProfile(ctx, bearerToken(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, publicUser(user))
}

// UpdateMe applies a partial profile update. Absent fields keep their
// current value; a provided password is re-hashed before persisting.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	var req updateProfileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.Accounts.UpdateProfile(ctx, bearerToken(c), service.ProfileChanges{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, publicUser(user))
}
