package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/talent-marketplace/internal/config"
	"github.com/iliyamo/talent-marketplace/internal/model"
	"github.com/iliyamo/talent-marketplace/internal/utils"
)

const secret = "test-secret"

func okHandler(c echo.Context) error {
	uid, _ := UserID(c)
	return c.JSON(http.StatusOK, echo.Map{"user_id": uid, "role": Role(c)})
}

func serve(e *echo.Echo, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthAndRole(t *testing.T) {
	e := echo.New()
	g := e.Group("", JWTAuth(secret))
	g.GET("/any", okHandler)
	g.GET("/talent-only", okHandler, RequireRole(model.RoleTalent))

	client, err := utils.NewAccessToken(secret, 5, model.RoleClient, 5)
	require.NoError(t, err)
	forged, err := utils.NewAccessToken("other", 5, model.RoleClient, 5)
	require.NoError(t, err)

	tests := []struct {
		name  string
		path  string
		token string
		want  int
	}{
		{"no token", "/any", "", http.StatusUnauthorized},
		{"forged token", "/any", forged.Token, http.StatusUnauthorized},
		{"valid token", "/any", client.Token, http.StatusOK},
		{"wrong role", "/talent-only", client.Token, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(e, http.MethodGet, tt.path, tt.token)
			assert.Equal(t, tt.want, rec.Code)
		})
	}

	rec := serve(e, http.MethodGet, "/any", client.Token)
	assert.JSONEq(t, `{"user_id":5,"role":"CLIENT"}`, rec.Body.String())
}

func TestTokenBucket(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            10 * time.Minute,
		KeyStrategy:    "user_route",
		Prefix:         "rl",
	}
	e := echo.New()
	e.POST("/v1/bookings", okHandler, JWTAuth(secret), NewTokenBucket(cfg, rdb))
	tok, err := utils.NewAccessToken(secret, 9, model.RoleClient, 5)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		rec := serve(e, http.MethodPost, "/v1/bookings", tok.Token)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}
	rec := serve(e, http.MethodPost, "/v1/bookings", tok.Token)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.True(t, mr.Exists("rl:user:9:route:POST /v1/bookings"))
}

func TestTokenBucketFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	cfg := config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Minute, TTL: time.Minute, Prefix: "rl"}
	e := echo.New()
	e.POST("/x", okHandler, NewTokenBucket(cfg, rdb))

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(e, http.MethodPost, "/x", "").Code)
	}
}

func TestTokenBucketDisabled(t *testing.T) {
	e := echo.New()
	e.POST("/x", okHandler, NewTokenBucket(config.RateLimitConfig{Enabled: false}, nil))
	assert.Equal(t, http.StatusOK, serve(e, http.MethodPost, "/x", "").Code)
}
