package middleware

import (
	"fmt"
	"time"

	"github.com/NeuralTrust/TrustBook/pkg/infra/prometheus"
	"github.com/gofiber/fiber/v2"
)

type metricsMiddleware struct{}

func NewMetricsMiddleware() Middleware {
	return &metricsMiddleware{}
}

func (m *metricsMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		if prometheus.Config.EnableConnections {
			prometheus.Connections.Inc()
			defer prometheus.Connections.Dec()
		}

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		// Route().Path is the pattern, which keeps label cardinality bounded.
		route := c.Route().Path
		prometheus.RequestTotal.WithLabelValues(c.Method(), route, statusClass(status)).Inc()
		if prometheus.Config.EnableLatency {
			prometheus.RequestLatency.WithLabelValues(route).Observe(float64(time.Since(start).Milliseconds()))
		}
		return err
	}
}

func statusClass(code int) string {
	if code < 100 || code > 599 {
		return "5xx"
	}
	return fmt.Sprintf("%dxx", code/100)
}
