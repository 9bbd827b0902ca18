package apiclient

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/iliyamo/talent-marketplace/internal/model"
)

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

func (r authResp) session() model.Session {
	return model.Session{
		UserID:       r.User.ID,
		Role:         r.User.Role,
		AccessToken:  r.Access.Token,
		RefreshToken: r.Refresh.Token,
		ExpiresAt:    r.Access.Expires,
	}
}

// SignUp registers a new account and signs it in.
func (c *Client) SignUp(ctx context.Context, email, password, role string) (model.Session, error) {
	var out authResp
	in := map[string]string{"email": email, "password": password, "role": role}
	if err := c.do(ctx, http.MethodPost, "/v1/auth/register", "", in, &out); err != nil {
		return model.Session{}, err
	}
	s := out.session()
	c.set(&s)
	return s, nil
}

// SignIn exchanges credentials for a session.
func (c *Client) SignIn(ctx context.Context, email, password string) (model.Session, error) {
	var out authResp
	in := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/v1/auth/login", "", in, &out); err != nil {
		return model.Session{}, err
	}
	s := out.session()
	c.set(&s)
	return s, nil
}

// Restore seeds a refresh token kept from an earlier run.  The next
// CurrentSession call exchanges it for a session.
func (c *Client) Restore(refreshToken string) {
	c.mu.Lock()
	c.refresh = refreshToken
	c.mu.Unlock()
}

// CurrentSession returns the session, renewing the access token when it
// is about to expire.  A rejected refresh token clears the session.
func (c *Client) CurrentSession(ctx context.Context) (model.Session, bool, error) {
	c.mu.Lock()
	var cur model.Session
	has := c.session != nil
	if has {
		cur = *c.session
	}
	seeded := c.refresh
	c.refresh = ""
	c.mu.Unlock()

	switch {
	case has && time.Until(cur.ExpiresAt) > refreshSkew:
		return cur, true, nil
	case has:
		return c.renewAccess(ctx, cur)
	case seeded != "":
		return c.rotate(ctx, seeded)
	}
	return model.Session{}, false, nil
}

func (c *Client) renewAccess(ctx context.Context, cur model.Session) (model.Session, bool, error) {
	var out struct {
		Access tokenPart `json:"access"`
	}
	err := c.do(ctx, http.MethodPost, "/v1/auth/refresh-access", "", map[string]string{"refresh_token": cur.RefreshToken}, &out)
	if err != nil {
		return c.refreshFailed(err)
	}
	cur.AccessToken = out.Access.Token
	cur.ExpiresAt = out.Access.Expires
	c.set(&cur)
	return cur, true, nil
}

func (c *Client) rotate(ctx context.Context, raw string) (model.Session, bool, error) {
	var out authResp
	if err := c.do(ctx, http.MethodPost, "/v1/auth/refresh", "", map[string]string{"refresh_token": raw}, &out); err != nil {
		return c.refreshFailed(err)
	}
	s := out.session()
	c.set(&s)
	return s, true, nil
}

// refreshFailed drops the session when the server refused the refresh
// token (401) or the account was disabled (403).
func (c *Client) refreshFailed(err error) (model.Session, bool, error) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden) {
		c.set(nil)
		return model.Session{}, false, nil
	}
	return model.Session{}, false, err
}

// SignOut revokes the refresh token on the server and clears the local
// session.  The session is cleared even when the server call fails.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	var raw string
	if c.session != nil {
		raw = c.session.RefreshToken
	}
	c.mu.Unlock()

	var err error
	if raw != "" {
		err = c.do(ctx, http.MethodPost, "/v1/auth/logout", "", map[string]string{"refresh_token": raw}, nil)
	}
	c.set(nil)
	return err
}

// Subscribe registers h for session changes.
func (c *Client) Subscribe(h func(model.Session, bool)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = h
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
}

// set replaces the session and notifies subscribers when presence or
// identity changed.  A plain access renewal is silent.
func (c *Client) set(s *model.Session) {
	c.mu.Lock()
	prev := c.session
	c.session = s
	changed := (prev == nil) != (s == nil) || (prev != nil && s != nil && prev.UserID != s.UserID)
	var hs []func(model.Session, bool)
	if changed {
		for _, h := range c.subs {
			hs = append(hs, h)
		}
	}
	c.mu.Unlock()

	var cur model.Session
	if s != nil {
		cur = *s
	}
	for _, h := range hs {
		h(cur, s != nil)
	}
}
