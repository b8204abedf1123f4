package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-registration/internal/config"
)

func runThrough(t *testing.T, mw echo.MiddlewareFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	h := mw(func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"ok": true})
	})
	require.NoError(t, h(c))
	return rec
}

func TestResponseCachePassthroughWithoutRedis(t *testing.T) {
	mw := NewResponseCache(config.CacheConfig{Enabled: true}, nil)
	rec := runThrough(t, mw)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Header().Get("X-Cache"), "passthrough must not claim cache involvement")
}

func TestTokenBucketPassthroughWithoutRedis(t *testing.T) {
	mw := NewTokenBucket(config.RateLimitConfig{Enabled: true, Capacity: 1}, nil)
	rec := runThrough(t, mw)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestPayloadRoundTrip(t *testing.T) {
	status, body, ok := decodePayload(encodePayload(http.StatusOK, []byte(`{"a":1}`)))
	require.True(t, ok)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, `{"a":1}`, string(body))

	_, _, ok = decodePayload([]byte{1, 2})
	require.False(t, ok, "truncated payloads must be rejected")
}
