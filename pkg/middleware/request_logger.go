package middleware

import (
	"time"

	"github.com/NeuralTrust/TrustBook/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type requestLoggerMiddleware struct {
	logger *logrus.Logger
}

func NewRequestLoggerMiddleware(logger *logrus.Logger) Middleware {
	return &requestLoggerMiddleware{logger: logger}
}

func (m *requestLoggerMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		if !m.logger.IsLevelEnabled(logrus.DebugLevel) {
			return err
		}
		client := utils.ParseUserAgent(c.Get(fiber.HeaderUserAgent), c.Get(fiber.HeaderAcceptLanguage))
		m.logger.WithFields(logrus.Fields{
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     c.Response().StatusCode(),
			"latency_ms": time.Since(start).Milliseconds(),
			"device":     client.Device,
			"browser":    client.Browser,
			"os":         client.OS,
			"locale":     client.Locale,
		}).Debug("request served")
		return err
	}
}
