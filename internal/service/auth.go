package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/iliyamo/marketplace-api/internal/apperr"
	"github.com/iliyamo/marketplace-api/internal/config"
	"github.com/iliyamo/marketplace-api/internal/model"
	"github.com/iliyamo/marketplace-api/internal/queue"
	"github.com/iliyamo/marketplace-api/internal/repository"
	"github.com/iliyamo/marketplace-api/internal/utils"
	"github.com/iliyamo/marketplace-api/internal/validation"
)

var (
	errInvalidCredentials = apperr.Unauthenticated("invalid credentials")
	errInvalidRefresh     = apperr.Unauthenticated("invalid refresh")
	errResetTokenRequired = apperr.BadRequest("Token is required.")
	errInvalidResetToken  = apperr.BadRequest("Invalid or expired reset token.")
)

type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72,bcryptmax"`
	Role     string `json:"role" validate:"omitempty,oneof=buyer seller"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordInput struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordInput is the body of POST /v1/auth/reset-password; the
// token travels in the query string.
type ResetPasswordInput struct {
	NewPassword string `json:"newPassword" validate:"required,min=8,max=72,bcryptmax"`
}

// Session is a freshly issued token pair.
type Session struct {
	User    model.User
	Access  utils.AccessToken
	Refresh utils.RefreshToken
}

// AuthService owns accounts, sessions and password resets.
type AuthService struct {
	cfg       config.Config
	users     UserStore
	tokens    TokenStore
	publisher queue.Publisher
	logger    *slog.Logger
	now       Clock
}

func NewAuthService(cfg config.Config, users UserStore, tokens TokenStore, pub queue.Publisher, logger *slog.Logger) *AuthService {
	return &AuthService{cfg: cfg, users: users, tokens: tokens, publisher: pub, logger: logger, now: systemClock}
}

// Register creates a buyer or seller account and signs it in.  Admin
// accounts are only created from the command line.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Email = repository.NormalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	role := model.RoleBuyer
	if in.Role != "" {
		role = model.Role(in.Role)
	}

	uid, err := s.users.Create(ctx, in.Name, in.Email, in.Password, role, s.cfg.BcryptCost)
	if errors.Is(err, repository.ErrEmailExists) {
		return nil, apperr.Conflict("email already exists")
	}
	if err != nil {
		return nil, apperr.Internal("create user", err)
	}
	s.logger.Info("user registered", "user_id", uid, "role", role)

	user := model.User{ID: uid, Name: in.Name, Email: in.Email, Role: role}
	return s.issue(ctx, user)
}

// Login verifies credentials and returns a new session.  Unknown emails and
// wrong passwords are not told apart.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	in.Email = repository.NormalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	u, err := s.users.GetByEmail(ctx, in.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, apperr.Internal("load user", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, in.Password) {
		return nil, errInvalidCredentials
	}
	return s.issue(ctx, u)
}

// Refresh rotates a refresh token: the presented token is revoked and a
// new pair is issued.  Two concurrent refreshes with the same token cannot
// both succeed.
func (s *AuthService) Refresh(ctx context.Context, raw string) (*Session, error) {
	hash, u, err := s.validateRefresh(ctx, raw)
	if err != nil {
		return nil, err
	}
	err = s.tokens.RevokeByHash(ctx, hash)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errInvalidRefresh
	}
	if err != nil {
		return nil, apperr.Internal("revoke refresh token", err)
	}
	return s.issue(ctx, u)
}

// RefreshAccess returns a new access token without rotating raw.
func (s *AuthService) RefreshAccess(ctx context.Context, raw string) (utils.AccessToken, error) {
	_, u, err := s.validateRefresh(ctx, raw)
	if err != nil {
		return utils.AccessToken{}, err
	}
	access, err := utils.NewAccessToken(s.cfg.JWTSecret, u.ID, u.Role, s.cfg.AccessTTLMin)
	if err != nil {
		return utils.AccessToken{}, apperr.Internal("issue access token", err)
	}
	return access, nil
}

// Logout revokes a single refresh token when raw is set, otherwise every
// refresh token of p.
func (s *AuthService) Logout(ctx context.Context, p *model.Principal, raw string) error {
	raw = strings.TrimSpace(raw)
	switch {
	case raw != "":
		hash := utils.HashToken(raw)
		if _, err := s.tokens.ValidateRefresh(ctx, hash, s.now()); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperr.Unauthenticated("invalid refresh token")
			}
			return apperr.Internal("validate refresh token", err)
		}
		if err := s.tokens.RevokeByHash(ctx, hash); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return apperr.Internal("revoke refresh token", err)
		}
		return nil
	case p != nil:
		if err := s.tokens.RevokeAllForUser(ctx, p.ID); err != nil {
			return apperr.Internal("revoke refresh tokens", err)
		}
		return nil
	}
	return apperr.BadRequest("provide Authorization header or refresh_token")
}

// Me loads the calling user.
func (s *AuthService) Me(ctx context.Context, p *model.Principal) (model.User, error) {
	if p == nil {
		return model.User{}, apperr.Unauthenticated("Unauthorized")
	}
	u, err := s.users.GetByID(ctx, p.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, apperr.Unauthenticated("Unauthorized")
	}
	if err != nil {
		return model.User{}, apperr.Internal("load user", err)
	}
	return u, nil
}

// ForgotPassword issues a reset token for the account behind in.Email and
// publishes it for the mailer.  It reports success whether or not the
// account exists.
func (s *AuthService) ForgotPassword(ctx context.Context, in ForgotPasswordInput) error {
	in.Email = repository.NormalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return err
	}
	u, err := s.users.GetByEmail(ctx, in.Email)
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.Debug("password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return apperr.Internal("load user", err)
	}

	raw, err := utils.NewResetToken()
	if err != nil {
		return apperr.Internal("generate reset token", err)
	}
	now := s.now()
	expires := now.Add(s.cfg.ResetTokenTTL)
	if err := s.users.SetResetToken(ctx, u.ID, utils.HashToken(raw), expires); err != nil {
		return apperr.Internal("store reset token", err)
	}
	s.logger.Info("password reset requested", "user_id", u.ID)

	publish(ctx, s.publisher, s.logger, queue.PasswordResetRequested, queue.PasswordResetRequestedEvent{
		Meta:      queue.NewMeta(now),
		UserID:    u.ID,
		Email:     u.Email,
		Token:     raw,
		ExpiresAt: expires.UTC().Format(time.RFC3339),
	})
	return nil
}

// ResetPassword validates the new password, then consumes token.  The token
// check and the password change are one conditional update, so a token
// works at most once.  Unknown and expired tokens get the same error.
// Every refresh token of the user is revoked afterwards.
func (s *AuthService) ResetPassword(ctx context.Context, token string, in ResetPasswordInput) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return errResetTokenRequired
	}
	hash, err := utils.HashPassword(in.NewPassword, s.cfg.BcryptCost)
	if err != nil {
		return apperr.Internal("hash password", err)
	}
	uid, err := s.users.ResetPassword(ctx, utils.HashToken(token), hash, s.now())
	if errors.Is(err, repository.ErrInvalidResetToken) {
		return errInvalidResetToken
	}
	if err != nil {
		return apperr.Internal("reset password", err)
	}
	s.logger.Info("password reset", "user_id", uid)

	if err := s.tokens.RevokeAllForUser(ctx, uid); err != nil {
		s.logger.Warn("revoke sessions after password reset failed", "user_id", uid, "err", err)
	}
	publish(ctx, s.publisher, s.logger, queue.PasswordReset, queue.PasswordResetEvent{
		Meta:   queue.NewMeta(s.now()),
		UserID: uid,
	})
	return nil
}

func (s *AuthService) validateRefresh(ctx context.Context, raw string) (string, model.User, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", model.User{}, apperr.BadRequest("refresh_token required")
	}
	hash := utils.HashToken(raw)
	uid, err := s.tokens.ValidateRefresh(ctx, hash, s.now())
	if errors.Is(err, repository.ErrNotFound) {
		return "", model.User{}, errInvalidRefresh
	}
	if err != nil {
		return "", model.User{}, apperr.Internal("validate refresh token", err)
	}
	u, err := s.users.GetByID(ctx, uid)
	if errors.Is(err, repository.ErrNotFound) {
		return "", model.User{}, errInvalidRefresh
	}
	if err != nil {
		return "", model.User{}, apperr.Internal("load user", err)
	}
	return hash, u, nil
}

func (s *AuthService) issue(ctx context.Context, u model.User) (*Session, error) {
	access, err := utils.NewAccessToken(s.cfg.JWTSecret, u.ID, u.Role, s.cfg.AccessTTLMin)
	if err != nil {
		return nil, apperr.Internal("issue access token", err)
	}
	refresh, err := utils.NewRefreshToken(s.cfg.RefreshTTLDays)
	if err != nil {
		return nil, apperr.Internal("issue refresh token", err)
	}
	if err := s.tokens.StoreRefresh(ctx, u.ID, utils.HashToken(refresh.Raw), refresh.Exp); err != nil {
		return nil, apperr.Internal("store refresh token", err)
	}
	return &Session{User: u, Access: access, Refresh: refresh}, nil
}
