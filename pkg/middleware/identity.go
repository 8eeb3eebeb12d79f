package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/NeuralTrust/TrustBook/pkg/common"
	"github.com/gofiber/fiber/v2"
)

type identityMiddleware struct{}

// NewIdentityMiddleware derives the caller key used for admission. A bearer
// credential is reduced to its sha256 digest; requests without one share
// the anonymous key.
func NewIdentityMiddleware() Middleware {
	return &identityMiddleware{}
}

func (m *identityMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(common.CallerKeyContext, CallerKey(c.Get(common.AuthorizationHeader)))
		return c.Next()
	}
}

func CallerKey(authHeader string) string {
	if !strings.HasPrefix(authHeader, common.BearerPrefix) {
		return common.AnonymousCallerKey
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, common.BearerPrefix))
	if token == "" {
		return common.AnonymousCallerKey
	}
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// CallerKeyFromCtx returns the key set by the identity middleware.
func CallerKeyFromCtx(c *fiber.Ctx) string {
	if key, ok := c.Locals(common.CallerKeyContext).(string); ok && key != "" {
		return key
	}
	return CallerKey(c.Get(common.AuthorizationHeader))
}
