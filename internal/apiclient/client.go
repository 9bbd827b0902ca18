// Package apiclient adapts the marketplace HTTP API to the core's ports.
// A Client is both the identity provider (sign-up, sign-in, refresh,
// sign-out) and the structured store (profiles, bookings, messages).
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/talent-marketplace/internal/logger"
	"github.com/iliyamo/talent-marketplace/internal/marketplace"
	"github.com/iliyamo/talent-marketplace/internal/model"
)

var (
	_ marketplace.IdentityProvider = (*Client)(nil)
	_ marketplace.Store            = (*Client)(nil)
)

// ErrNoSession is returned by authorized calls made while signed out or
// after the server rejected the session.  It matches
// marketplace.ErrUnauthenticated so the core redirects to sign-in.
var ErrNoSession = fmt.Errorf("%w: no session", marketplace.ErrUnauthenticated)

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// refreshSkew renews the access token slightly before it expires.
const refreshSkew = 30 * time.Second

type Client struct {
	baseURL string
	hc      *http.Client
	log     *logrus.Entry

	mu      sync.Mutex
	session *model.Session
	refresh string // refresh token seeded by Restore, used once on lookup
	subs    map[int]func(model.Session, bool)
	nextSub int
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: timeout},
		log:     logger.WithComponent("apiclient"),
		subs:    make(map[int]func(model.Session, bool)),
	}
}

// ---- transport ----

func (c *Client) do(ctx context.Context, method, path, token string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	c.log.WithFields(logrus.Fields{
		"method":     method,
		"path":       path,
		"status":     resp.StatusCode,
		"request_id": reqID,
	}).Debug("api call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// authorized runs an API call with a fresh access token.
func (c *Client) authorized(ctx context.Context, method, path string, in, out interface{}) error {
	s, ok, err := c.CurrentSession(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoSession
	}
	return c.rejected(c.do(ctx, method, path, s.AccessToken, in, out))
}

// rejected clears the session when the server answers 401 to an
// authorized call.
func (c *Client) rejected(err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
		c.set(nil)
		return fmt.Errorf("%w (%v)", ErrNoSession, err)
	}
	return err
}

type list[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}
