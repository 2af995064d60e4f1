package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/envirowatch/internal/config"
	"github.com/iliyamo/envirowatch/internal/model"
	"github.com/iliyamo/envirowatch/internal/utils"
)

// UserStore is the part of the user repository the auth endpoints use.
type UserStore interface {
	Create(ctx context.Context, email, passwordHash, fullName string, role model.Role) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	UpdateProfile(ctx context.Context, id uint64, fullName, passwordHash *string) (*model.User, error)
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	cfg   config.Config
	users UserStore
	log   *zap.Logger
}

func NewAuthHandler(cfg config.Config, users UserStore, log *zap.Logger) *AuthHandler {
	return &AuthHandler{cfg: cfg, users: users, log: log}
}

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	FullName string `json:"fullName" validate:"required,min=2,max=255"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type profileReq struct {
	FullName        *string `json:"fullName" validate:"omitempty,min=2,max=255"`
	CurrentPassword string  `json:"currentPassword"`
	NewPassword     string  `json:"newPassword" validate:"omitempty,min=6,max=72"`
}

type authResp struct {
	User      *model.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// Register creates a regular user and signs them in.  Admins are promoted
// through the admin panel, never at registration.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if valid, err := bindAndValidate(c, &req); !valid {
		return err
	}

	hash, err := utils.HashPassword(req.Password, h.cfg.BcryptCost)
	if err != nil {
		return failErr(c, h.log, err, "hash password")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	u, err := h.users.Create(ctx, req.Email, hash, strings.TrimSpace(req.FullName), model.RoleUser)
	if err != nil {
		return failErr(c, h.log, err, "create user")
	}
	resp, err := h.issue(u)
	if err != nil {
		return failErr(c, h.log, err, "issue token")
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "message": "User registered successfully", "data": resp})
}

// Login verifies the credentials of an active user and returns a token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if valid, err := bindAndValidate(c, &req); !valid {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	u, err := h.users.GetByEmail(ctx, req.Email)
	if err != nil || !utils.VerifyPassword(u.PasswordHash, req.Password) {
		if err != nil && !isNotFound(err) {
			return failErr(c, h.log, err, "load user")
		}
		return fail(c, http.StatusUnauthorized, "Invalid email or password")
	}
	if !u.IsActive {
		return fail(c, http.StatusForbidden, "Account is deactivated. Please contact administrator.")
	}

	resp, err := h.issue(u)
	if err != nil {
		return failErr(c, h.log, err, "issue token")
	}
	return successMessage(c, "Login successful", resp)
}

// Me returns the caller's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, _ := getUserID(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	u, err := h.users.GetByID(ctx, uid)
	if err != nil {
		return failErr(c, h.log, err, "load user")
	}
	return success(c, http.StatusOK, u)
}

// UpdateProfile changes the caller's name and/or password.  A new password
// requires the current one.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	var req profileReq
	if valid, err := bindAndValidate(c, &req); !valid {
		return err
	}
	uid, _ := getUserID(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	var fullName, hash *string
	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		fullName = &name
	}
	if req.NewPassword != "" {
		if req.CurrentPassword == "" {
			return failFields(c, []FieldError{{Field: "currentPassword", Message: "currentPassword is required to change the password"}})
		}
		u, err := h.users.GetByID(ctx, uid)
		if err != nil {
			return failErr(c, h.log, err, "load user")
		}
		if !utils.VerifyPassword(u.PasswordHash, req.CurrentPassword) {
			return fail(c, http.StatusUnauthorized, "Current password is incorrect")
		}
		h2, err := utils.HashPassword(req.NewPassword, h.cfg.BcryptCost)
		if err != nil {
			return failErr(c, h.log, err, "hash password")
		}
		hash = &h2
	}
	if fullName == nil && hash == nil {
		return fail(c, http.StatusBadRequest, "Nothing to update")
	}

	u, err := h.users.UpdateProfile(ctx, uid, fullName, hash)
	if err != nil {
		return failErr(c, h.log, err, "update profile")
	}
	return successMessage(c, "Profile updated successfully", u)
}

func (h *AuthHandler) issue(u *model.User) (authResp, error) {
	tok, err := utils.NewAccessToken(h.cfg.JWTSecret, u.ID, u.Email, string(u.Role), h.cfg.AccessTTLMin)
	if err != nil {
		return authResp{}, err
	}
	return authResp{User: u, Token: tok.Token, ExpiresAt: tok.Exp}, nil
}
