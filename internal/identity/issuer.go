// Package identity issues and revokes sessions on the server side: it
// verifies credentials, signs access tokens and rotates refresh tokens.
package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/talent-marketplace/internal/model"
	"github.com/iliyamo/talent-marketplace/internal/repository"
	"github.com/iliyamo/talent-marketplace/internal/utils"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRefresh     = errors.New("invalid refresh")
	ErrInactiveUser       = errors.New("user is inactive")
)

// UserStore is the subset of repository.UserRepo the issuer needs.
type UserStore interface {
	Create(ctx context.Context, email, password, role string, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// TokenStore is the subset of repository.TokenRepo the issuer needs.
type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// Settings are the token lifetimes and hashing cost.
type Settings struct {
	JWTSecret      string
	AccessTTLMin   int
	RefreshTTLDays int
	BcryptCost     int
}

// Grant is the result of a successful sign-in or refresh.
type Grant struct {
	User    model.User
	Access  utils.AccessToken
	Refresh utils.RefreshToken
}

// Session converts the grant into the client-side session value.
func (g Grant) Session() model.Session {
	return model.Session{
		UserID:       g.User.ID,
		Role:         g.User.Role,
		AccessToken:  g.Access.Token,
		RefreshToken: g.Refresh.Raw,
		ExpiresAt:    g.Access.Exp,
	}
}

type Issuer struct {
	settings Settings
	users    UserStore
	tokens   TokenStore
}

func NewIssuer(settings Settings, users UserStore, tokens TokenStore) *Issuer {
	if users == nil || tokens == nil {
		panic("nil store passed to NewIssuer")
	}
	return &Issuer{settings: settings, users: users, tokens: tokens}
}

// NormalizeRole maps anything other than TALENT to CLIENT.
func NormalizeRole(role string) string {
	if strings.EqualFold(strings.TrimSpace(role), model.RoleTalent) {
		return model.RoleTalent
	}
	return model.RoleClient
}

// Register creates the user and signs them in immediately.
func (i *Issuer) Register(ctx context.Context, email, password, role string) (Grant, error) {
	if err := utils.CheckPassword(password); err != nil {
		return Grant{}, err
	}
	role = NormalizeRole(role)
	uid, err := i.users.Create(ctx, email, password, role, i.settings.BcryptCost)
	if err != nil {
		return Grant{}, err
	}
	u := model.User{ID: uid, Email: strings.ToLower(strings.TrimSpace(email)), Role: role, IsActive: true}
	return i.issue(ctx, u)
}

// Login verifies the password and issues a new token pair.
func (i *Issuer) Login(ctx context.Context, email, password string) (Grant, error) {
	u, err := i.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return Grant{}, ErrInvalidCredentials
		}
		return Grant{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return Grant{}, ErrInvalidCredentials
	}
	if !u.IsActive {
		return Grant{}, ErrInactiveUser
	}
	return i.issue(ctx, u)
}

// Refresh validates raw, revokes it and issues a new pair (rotation).
func (i *Issuer) Refresh(ctx context.Context, raw string) (Grant, error) {
	u, hash, err := i.renewable(ctx, raw)
	if err != nil {
		return Grant{}, err
	}
	if err := i.tokens.RevokeByHash(ctx, hash); err != nil {
		return Grant{}, err
	}
	return i.issue(ctx, u)
}

// RefreshAccess returns a new access token without rotating raw.
func (i *Issuer) RefreshAccess(ctx context.Context, raw string) (model.User, utils.AccessToken, error) {
	u, _, err := i.renewable(ctx, raw)
	if err != nil {
		return model.User{}, utils.AccessToken{}, err
	}
	access, err := utils.NewAccessToken(i.settings.JWTSecret, u.ID, u.Role, i.settings.AccessTTLMin)
	return u, access, err
}

// Logout revokes a single refresh token.
func (i *Issuer) Logout(ctx context.Context, raw string) error {
	_, hash, err := i.validate(ctx, raw)
	if err != nil {
		return err
	}
	return i.tokens.RevokeByHash(ctx, hash)
}

// LogoutAll revokes every refresh token of the user.
func (i *Issuer) LogoutAll(ctx context.Context, userID uint64) error {
	return i.tokens.RevokeAllForUser(ctx, userID)
}

func (i *Issuer) validate(ctx context.Context, raw string) (model.User, string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return model.User{}, "", ErrInvalidRefresh
	}
	hash := utils.HashRefreshRaw(raw)
	uid, err := i.tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrRefreshInvalid) {
			return model.User{}, "", ErrInvalidRefresh
		}
		return model.User{}, "", err
	}
	u, err := i.users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.User{}, "", ErrInvalidRefresh
		}
		return model.User{}, "", err
	}
	return u, hash, nil
}

// renewable is validate plus the account check Login applies.
func (i *Issuer) renewable(ctx context.Context, raw string) (model.User, string, error) {
	u, hash, err := i.validate(ctx, raw)
	if err != nil {
		return model.User{}, "", err
	}
	if !u.IsActive {
		return model.User{}, "", ErrInactiveUser
	}
	return u, hash, nil
}

func (i *Issuer) issue(ctx context.Context, u model.User) (Grant, error) {
	access, err := utils.NewAccessToken(i.settings.JWTSecret, u.ID, u.Role, i.settings.AccessTTLMin)
	if err != nil {
		return Grant{}, err
	}
	refresh, err := utils.NewRefreshToken(i.settings.RefreshTTLDays)
	if err != nil {
		return Grant{}, err
	}
	if err := i.tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return Grant{}, err
	}
	return Grant{User: u, Access: access, Refresh: refresh}, nil
}
