package middleware

import (
	"strings"

	"github.com/NeuralTrust/TrustBook/pkg/infra/ratelimit"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type rateLimitMiddleware struct {
	logger     *logrus.Logger
	limiter    ratelimit.Limiter
	skipPaths  map[string]struct{}
	skipSuffix []string
}

// NewRateLimitMiddleware admits requests through limiter. Exact skipPaths
// and paths ending in one of skipSuffixes bypass it; the query route is
// skipped this way because the orchestrator admits it itself.
func NewRateLimitMiddleware(
	logger *logrus.Logger,
	limiter ratelimit.Limiter,
	skipPaths []string,
	skipSuffixes []string,
) Middleware {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[normalizePath(p)] = struct{}{}
	}
	suffixes := make([]string, 0, len(skipSuffixes))
	for _, s := range skipSuffixes {
		suffixes = append(suffixes, strings.ToLower(strings.TrimRight(s, "/")))
	}
	return &rateLimitMiddleware{
		logger:     logger,
		limiter:    limiter,
		skipPaths:  skip,
		skipSuffix: suffixes,
	}
}

func (m *rateLimitMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m.skipped(c.Path()) {
			return c.Next()
		}
		key := CallerKeyFromCtx(c)
		if !m.limiter.Allow(key) {
			m.logger.WithFields(logrus.Fields{
				"path":   c.Path(),
				"method": c.Method(),
			}).Debug("request denied by rate limiter")
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"detail": "Rate limit exceeded"})
		}
		return c.Next()
	}
}

func (m *rateLimitMiddleware) skipped(path string) bool {
	path = normalizePath(path)
	if _, ok := m.skipPaths[path]; ok {
		return true
	}
	for _, suffix := range m.skipSuffix {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

// normalizePath folds case and trailing slashes the way fiber's default
// router does, so a skipped route cannot be reached under another spelling.
func normalizePath(path string) string {
	path = strings.ToLower(strings.TrimRight(path, "/"))
	if path == "" {
		return "/"
	}
	return path
}
