package handler

import (
	"net/http" // HTTP status codes and primitives
	"time"     // token expiry timestamps in responses

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/iliyamo/marketplace-api/internal/middleware" // principal lookup
	"github.com/iliyamo/marketplace-api/internal/model"      // user type
	"github.com/iliyamo/marketplace-api/internal/service"    // account and session rules
)

// AuthHandler exposes accounts, sessions and password resets.
type AuthHandler struct {
	Auth *service.AuthService
}

func NewAuthHandler(a *service.AuthService) *AuthHandler {
	return &AuthHandler{Auth: a}
}

// ----- DTOs -----

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID    uint64     `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

func newUserPart(u model.User) userPart {
	return userPart{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

func newAuthResp(s *service.Session) authResp {
	return authResp{
		User:    newUserPart(s.User),
		Access:  tokenPart{Token: s.Access.Token, Expires: s.Access.Exp},
		Refresh: tokenPart{Token: s.Refresh.Raw, Expires: s.Refresh.Exp}, // raw back to client
	}
}

// Register: create user and return tokens immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req service.RegisterInput
	if err := c.Bind(&req); err != nil {
		return errInvalidBody
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	sess, err := h.Auth.Register(ctx, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, newAuthResp(sess))
}

// Login: verify and return new pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req service.LoginInput
	if err := c.Bind(&req); err != nil {
		return errInvalidBody
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	sess, err := h.Auth.Login(ctx, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newAuthResp(sess))
}

// Refresh: validate by hash, revoke old, issue new.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil {
		return errInvalidBody
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	sess, err := h.Auth.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newAuthResp(sess))
}

// RefreshAccess returns a new access token without rotating the refresh
// token.
func (h *AuthHandler) RefreshAccess(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil {
		return errInvalidBody
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	access, err := h.Auth.RefreshAccess(ctx, req.RefreshToken)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access": tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Logout revokes the refresh token in the body, or every session of the
// bearer when the body has none.  It runs behind OptionalJWT.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req) // an empty or invalid body just means "no refresh token"

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Auth.Logout(ctx, middleware.PrincipalFrom(c), req.RefreshToken); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Auth.Me(ctx, middleware.PrincipalFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"user": newUserPart(u)})
}

// ForgotPassword always answers 200 so the response does not reveal
// whether an account exists.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req service.ForgotPasswordInput
	if err := c.Bind(&req); err != nil {
		return errInvalidBody
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Auth.ForgotPassword(ctx, req); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "If an account with that email exists, a password reset link has been sent.",
	})
}

// ResetPassword consumes the token in ?token= and stores the new password
// from the body.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req service.ResetPasswordInput
	if err := c.Bind(&req); err != nil {
		return errInvalidBody
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Auth.ResetPassword(ctx, c.QueryParam("token"), req); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Password has been reset successfully."})
}
