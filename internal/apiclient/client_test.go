package apiclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/talent-marketplace/internal/handler"
	"github.com/iliyamo/talent-marketplace/internal/identity"
	"github.com/iliyamo/talent-marketplace/internal/marketplace"
	"github.com/iliyamo/talent-marketplace/internal/memstore"
	"github.com/iliyamo/talent-marketplace/internal/model"
	"github.com/iliyamo/talent-marketplace/internal/router"
)

const secret = "apiclient-secret"

type backend struct {
	srv   *httptest.Server
	store *memstore.Store
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	store := memstore.New()
	p := int64(50000)
	store.Profiles().Put(model.Profile{ID: 100, FullName: "Aiko", Category: "singer", PricePerProject: &p})
	store.Profiles().Put(model.Profile{ID: 101, FullName: "Ren", Category: "mc"})

	issuer := identity.NewIssuer(identity.Settings{JWTSecret: secret, AccessTTLMin: 5, RefreshTTLDays: 1, BcryptCost: 4}, store.Users(), store.Tokens())
	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(issuer, secret), secret)
	router.RegisterPublic(e, handler.NewTalentHandler(store.Profiles()))
	router.RegisterMarketplace(e,
		handler.NewBookingHandler(store.Profiles(), store.Bookings(), nil),
		handler.NewMessageHandler(store.Messages(), store.Users()),
		secret, func(next echo.HandlerFunc) echo.HandlerFunc { return next })

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return &backend{srv: srv, store: store}
}

func (b *backend) client() *Client { return New(b.srv.URL, 5*time.Second) }

func TestSignUpSignInAndOut(t *testing.T) {
	b := newBackend(t)
	c := b.client()
	ctx := context.Background()

	var events []bool
	unsub := c.Subscribe(func(_ model.Session, ok bool) { events = append(events, ok) })
	defer unsub()

	_, ok, err := c.CurrentSession(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	s, err := c.SignUp(ctx, "client@example.com", "password123", model.RoleClient)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), s.UserID)
	assert.NotEmpty(t, s.AccessToken)
	assert.NotEmpty(t, s.RefreshToken)

	require.NoError(t, c.SignOut(ctx))
	_, ok, err = c.CurrentSession(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.SignIn(ctx, "client@example.com", "bad-password")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	_, err = c.SignIn(ctx, "client@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true}, events)
}

func TestRestoreFromRefreshToken(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	first := b.client()
	s, err := first.SignUp(ctx, "client@example.com", "password123", "")
	require.NoError(t, err)

	second := b.client()
	second.Restore(s.RefreshToken)
	got, ok, err := second.CurrentSession(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, s.UserID, got.UserID)
	assert.NotEqual(t, s.RefreshToken, got.RefreshToken)

	third := b.client()
	third.Restore(s.RefreshToken)
	_, ok, err = third.CurrentSession(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "rotated token must not be reusable")
}

func TestExpiringAccessTokenIsRenewed(t *testing.T) {
	b := newBackend(t)
	c := b.client()
	ctx := context.Background()
	s, err := c.SignUp(ctx, "client@example.com", "password123", "")
	require.NoError(t, err)

	c.mu.Lock()
	c.session.ExpiresAt = time.Now()
	c.session.AccessToken = "stale"
	c.mu.Unlock()

	got, ok, err := c.CurrentSession(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEqual(t, "stale", got.AccessToken)
	assert.Equal(t, s.RefreshToken, got.RefreshToken)
	assert.True(t, got.ExpiresAt.After(time.Now()))
}

func TestRejectedAccessTokenClearsSession(t *testing.T) {
	b := newBackend(t)
	c := b.client()
	ctx := context.Background()
	s, err := c.SignUp(ctx, "client@example.com", "password123", "")
	require.NoError(t, err)

	var signedOut bool
	unsub := c.Subscribe(func(_ model.Session, ok bool) { signedOut = !ok })
	defer unsub()
	c.mu.Lock()
	c.session.AccessToken = "forged"
	c.mu.Unlock()

	_, err = c.InsertBooking(ctx, marketplace.BookingInput{ClientID: s.UserID, TalentID: 100, Amount: 50000})
	assert.ErrorIs(t, err, marketplace.ErrUnauthenticated)
	assert.ErrorIs(t, err, ErrNoSession)
	assert.True(t, signedOut)
	_, ok, err := c.CurrentSession(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreCalls(t *testing.T) {
	b := newBackend(t)
	c := b.client()
	ctx := context.Background()

	profiles, err := c.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 2)

	_, err = c.InsertBooking(ctx, marketplace.BookingInput{ClientID: 1, TalentID: 100, Amount: 50000})
	assert.ErrorIs(t, err, ErrNoSession)

	s, err := c.SignUp(ctx, "client@example.com", "password123", "")
	require.NoError(t, err)

	_, err = c.InsertBooking(ctx, marketplace.BookingInput{ClientID: s.UserID + 1, TalentID: 100, Amount: 50000})
	assert.Error(t, err)

	bk, err := c.InsertBooking(ctx, marketplace.BookingInput{ClientID: s.UserID, TalentID: 100, Amount: 50000, Status: model.BookingStatusPaid})
	require.NoError(t, err)
	assert.Equal(t, int64(50000), bk.Amount)

	_, err = c.InsertBooking(ctx, marketplace.BookingInput{ClientID: s.UserID, TalentID: 100, Amount: 1})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)

	views, err := c.ListBookingsByClient(ctx, s.UserID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.NotNil(t, views[0].TalentName)
	assert.Equal(t, "Aiko", *views[0].TalentName)

	talent := b.client()
	ts, err := talent.SignUp(ctx, "talent@example.com", "password123", model.RoleTalent)
	require.NoError(t, err)

	_, err = c.InsertMessage(ctx, marketplace.MessageInput{SenderID: s.UserID, ReceiverID: ts.UserID, Content: "Hello"})
	require.NoError(t, err)
	_, err = talent.InsertMessage(ctx, marketplace.MessageInput{SenderID: ts.UserID, ReceiverID: s.UserID, Content: "Hi"})
	require.NoError(t, err)

	msgs, err := c.ListThread(ctx, model.NewThreadKey(s.UserID, ts.UserID))
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "Hello", msgs[0].Content)
	assert.Equal(t, "Hi", msgs[1].Content)

	_, err = c.ListThread(ctx, model.NewThreadKey(50, 51))
	assert.Error(t, err)
}
