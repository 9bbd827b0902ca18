package handler

import (
	"context"  // request-scoped timeouts for DB calls
	"errors"   // errors.Is on issuer sentinels
	"net/http" // HTTP status codes
	"strings"  // trimming and prefix checks
	"time"     // token expiry fields

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/iliyamo/talent-marketplace/internal/identity"
	"github.com/iliyamo/talent-marketplace/internal/middleware"
	"github.com/iliyamo/talent-marketplace/internal/repository"
	"github.com/iliyamo/talent-marketplace/internal/utils"
)

// AuthHandler exposes the identity issuer over HTTP.  The JWT secret is
// needed by Logout, which reads an optional bearer token itself.
type AuthHandler struct {
	Issuer    *identity.Issuer
	JWTSecret string
}

func NewAuthHandler(issuer *identity.Issuer, jwtSecret string) *AuthHandler {
	if issuer == nil {
		panic("nil issuer passed to NewAuthHandler")
	}
	return &AuthHandler{Issuer: issuer, JWTSecret: jwtSecret}
}

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"` // CLIENT | TALENT
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

func grantResp(g identity.Grant) authResp {
	return authResp{
		User:    userPart{ID: g.User.ID, Email: g.User.Email, Role: g.User.Role},
		Access:  tokenPart{Token: g.Access.Token, Expires: g.Access.Exp},
		Refresh: tokenPart{Token: g.Refresh.Raw, Expires: g.Refresh.Exp}, // raw back to client
	}
}

// Register: create user and return tokens immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	g, err := h.Issuer.Register(ctx, req.Email, req.Password, req.Role)
	switch {
	case err == nil:
		return c.JSON(http.StatusCreated, grantResp(g))
	case errors.Is(err, utils.ErrWeakPassword):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
	default:
		c.Logger().Errorf("register: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
}

// Login: verify and return new pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	g, err := h.Issuer.Login(ctx, req.Email, req.Password)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, grantResp(g))
	case errors.Is(err, identity.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	case errors.Is(err, identity.ErrInactiveUser):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "account disabled"})
	default:
		c.Logger().Errorf("login: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
}

// Refresh: validate by hash, revoke old, issue new.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	g, err := h.Issuer.Refresh(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidRefresh) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
		}
		if errors.Is(err, identity.ErrInactiveUser) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "account disabled"})
		}
		c.Logger().Errorf("refresh: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
	}
	return c.JSON(http.StatusOK, grantResp(g))
}

// RefreshAccess: return a new access token WITHOUT rotating the refresh token.
func (h *AuthHandler) RefreshAccess(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, access, err := h.Issuer.RefreshAccess(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidRefresh) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
		}
		if errors.Is(err, identity.ErrInactiveUser) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "account disabled"})
		}
		c.Logger().Errorf("refresh-access: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user":   userPart{ID: u.ID, Email: u.Email, Role: u.Role},
		"access": tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Logout revokes either one refresh token (body) or, when only a valid
// bearer token is supplied, every refresh token of that user.
func (h *AuthHandler) Logout(c echo.Context) error {
	var uid uint64
	if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		if claims, err := utils.ParseAccessToken(h.JWTSecret, strings.TrimPrefix(auth, "Bearer ")); err == nil {
			uid, _ = claims.UserID()
		}
	}

	// Invalid JSON just leaves the token empty; the bearer may suffice.
	var req refreshReq
	_ = c.Bind(&req)
	refreshToken := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	switch {
	case refreshToken != "":
		if err := h.Issuer.Logout(ctx, refreshToken); err != nil {
			if errors.Is(err, identity.ErrInvalidRefresh) {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
		}
		return c.NoContent(http.StatusNoContent)
	case uid != 0:
		if err := h.Issuer.LogoutAll(ctx, uid); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
		}
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "provide Authorization header or refresh_token"})
}

// Me: simple protected endpoint.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user_id": uid,
		"role":    middleware.Role(c),
	})
}
