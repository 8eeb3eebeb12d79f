package middleware_test

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/NeuralTrust/TrustBook/pkg/common"
	"github.com/NeuralTrust/TrustBook/pkg/infra/jwt"
	"github.com/NeuralTrust/TrustBook/pkg/infra/ratelimit"
	"github.com/NeuralTrust/TrustBook/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestCallerKey(t *testing.T) {
	sum := sha256.Sum256([]byte("token-123"))

	assert.Equal(t, hex.EncodeToString(sum[:]), middleware.CallerKey("Bearer token-123"))
	assert.Equal(t, common.AnonymousCallerKey, middleware.CallerKey(""))
	assert.Equal(t, common.AnonymousCallerKey, middleware.CallerKey("Bearer "))
	assert.Equal(t, common.AnonymousCallerKey, middleware.CallerKey("Basic dXNlcjpwYXNz"))
}

func TestIdentityMiddleware_StoresCallerKey(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.NewIdentityMiddleware().Middleware())
	app.Get("/whoami", func(c *fiber.Ctx) error {
		return c.SendString(middleware.CallerKeyFromCtx(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, common.AnonymousCallerKey, body(t, resp))

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer abc")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, middleware.CallerKey("Bearer abc"), body(t, resp))
}

func newLimitedApp(t *testing.T, maxPerMinute int) *fiber.App {
	t.Helper()
	logger, _ := test.NewNullLogger()
	limiter, err := ratelimit.NewSlidingWindowLimiter(ratelimit.Config{MaxPerMinute: maxPerMinute, MaxPerDay: 100}, nil)
	require.NoError(t, err)

	app := fiber.New()
	app.Use(middleware.NewIdentityMiddleware().Middleware())
	app.Use(middleware.NewRateLimitMiddleware(logger, limiter, []string{"/", "/health"}, []string{"/query"}).Middleware())
	ok := func(c *fiber.Ctx) error { return c.SendString("ok") }
	app.Get("/", ok)
	app.Get("/health", ok)
	app.Get("/api/v1/textbooks/:id", ok)
	app.Post("/api/v1/textbook/:id/query", ok)
	return app
}

func TestRateLimitMiddleware_DeniesOverLimit(t *testing.T) {
	app := newLimitedApp(t, 2)

	var statuses []int
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/textbooks/1", nil))
		require.NoError(t, err)
		statuses = append(statuses, resp.StatusCode)
		if resp.StatusCode == fiber.StatusTooManyRequests {
			assert.JSONEq(t, `{"detail":"Rate limit exceeded"}`, body(t, resp))
		}
	}
	assert.Equal(t, []int{200, 200, 429}, statuses)
}

func TestRateLimitMiddleware_KeysAreIndependent(t *testing.T) {
	app := newLimitedApp(t, 1)

	for _, token := range []string{"a", "b"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/textbooks/1", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
}

func TestRateLimitMiddleware_SkipsConfiguredPaths(t *testing.T) {
	app := newLimitedApp(t, 1)

	for i := 0; i < 3; i++ {
		for _, r := range []*http.Request{
			httptest.NewRequest(http.MethodGet, "/", nil),
			httptest.NewRequest(http.MethodGet, "/health", nil),
			httptest.NewRequest(http.MethodPost, "/api/v1/textbook/1/query", nil),
		} {
			resp, err := app.Test(r)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusOK, resp.StatusCode, r.URL.Path)
		}
	}
}

func TestRateLimitMiddleware_SkipsQueryRouteUnderAnySpelling(t *testing.T) {
	app := newLimitedApp(t, 1)

	for _, path := range []string{
		"/api/v1/textbook/1/query",
		"/api/v1/textbook/1/QUERY",
		"/api/v1/textbook/1/query/",
		"/API/V1/Textbook/1/Query/",
	} {
		for i := 0; i < 2; i++ {
			resp, err := app.Test(httptest.NewRequest(http.MethodPost, path, nil))
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusOK, resp.StatusCode, path)
		}
	}

	for _, path := range []string{"/HEALTH", "/health/"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode, path)
	}
}

func newAdminApp(manager jwt.Manager) *fiber.App {
	logger, _ := test.NewNullLogger()
	app := fiber.New()
	app.Post("/admin", middleware.NewAdminAuthMiddleware(logger, manager).Middleware(), func(c *fiber.Ctx) error {
		subject, _ := c.Locals(common.AdminSubjectContext).(string)
		c.Set("X-Subject", subject)
		return c.SendStatus(fiber.StatusCreated)
	})
	return app
}

func TestAdminAuthMiddleware(t *testing.T) {
	manager := jwt.NewJwtManager("s3cr3t")
	valid, err := manager.CreateToken("admin", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing header", want: fiber.StatusUnauthorized},
		{name: "wrong scheme", header: "Token " + valid, want: fiber.StatusUnauthorized},
		{name: "garbage token", header: "Bearer not-a-jwt", want: fiber.StatusUnauthorized},
		{name: "valid token", header: "Bearer " + valid, want: fiber.StatusCreated},
	}
	app := newAdminApp(manager)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
			if tt.want == fiber.StatusCreated {
				assert.Equal(t, "admin", resp.Header.Get("X-Subject"))
			}
		})
	}
}

func TestAdminAuthMiddleware_DisabledWithoutManager(t *testing.T) {
	resp, err := newAdminApp(nil).Test(httptest.NewRequest(http.MethodPost, "/admin", nil))

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestPanicRecoverMiddleware(t *testing.T) {
	logger, hook := test.NewNullLogger()
	app := fiber.New()
	app.Use(middleware.NewPanicRecoverMiddleware(logger).Middleware())
	app.Get("/boom", func(c *fiber.Ctx) error {
		panic("kaboom")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "http server panic recovered", hook.LastEntry().Message)
}

func TestCORSGlobalMiddleware_Preflight(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.NewCORSGlobalMiddleware([]string{"*"}, []string{"GET", "POST"}, false, nil, "600").Middleware())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://book.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST", resp.Header.Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "600", resp.Header.Get("Access-Control-Max-Age"))
}
