// app/echoServer/middleware_test.go
package echoServer

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func authSetup(t *testing.T, authHeader string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := BearerAuth("test-token")(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	require.NoError(t, h(c))
	return rec
}

func TestBearerAuth_MissingHeader(t *testing.T) {
	rec := authSetup(t, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBearerAuth_NotBearer(t *testing.T) {
	rec := authSetup(t, "Basic dXNlcjpwYXNz")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBearerAuth_WrongToken(t *testing.T) {
	rec := authSetup(t, "Bearer wrong-token")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBearerAuth_ValidToken(t *testing.T) {
	rec := authSetup(t, "Bearer test-token")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}

func TestBearerAuth_CaseInsensitiveScheme(t *testing.T) {
	rec := authSetup(t, "bearer test-token")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestBorrowRateLimiter_DeniesPastBurst(t *testing.T) {
	e := echo.New()
	h := BorrowRateLimiter(2)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	do := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/books/borrow", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		require.NoError(t, h(c))
		return rec.Code
	}

	require.Equal(t, http.StatusOK, do())
	require.Equal(t, http.StatusOK, do())
	require.Equal(t, http.StatusTooManyRequests, do())
}

func TestBorrowRateLimiter_KeysPerClient(t *testing.T) {
	e := echo.New()
	h := BorrowRateLimiter(1)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	do := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/books/borrow", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		require.NoError(t, h(c))
		return rec.Code
	}

	require.Equal(t, http.StatusOK, do("10.0.0.1:1234"))
	require.Equal(t, http.StatusTooManyRequests, do("10.0.0.1:1234"))
	// a different client has its own bucket
	require.Equal(t, http.StatusOK, do("10.0.0.2:1234"))
}
