package middleware

import "github.com/gofiber/fiber/v2"

type Middleware interface {
	Middleware() fiber.Handler
}

type Transport struct {
	PanicRecoverMiddleware  Middleware
	CORSMiddleware          Middleware
	RequestLoggerMiddleware Middleware
	MetricsMiddleware       Middleware
	IdentityMiddleware      Middleware
	RateLimitMiddleware     Middleware
	AdminAuthMiddleware     Middleware
}
