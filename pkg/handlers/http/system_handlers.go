package http

import (
	"github.com/NeuralTrust/TrustBook/pkg/infra/ratelimit"
	"github.com/NeuralTrust/TrustBook/pkg/middleware"
	"github.com/NeuralTrust/TrustBook/pkg/version"
	"github.com/gofiber/fiber/v2"
)

const welcomeMessage = "Welcome to the Textbook Generation Backend API"

type rootHandler struct{}

func NewRootHandler() Handler {
	return &rootHandler{}
}

func (h *rootHandler) Handle(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": welcomeMessage})
}

type healthHandler struct{}

func NewHealthHandler() Handler {
	return &healthHandler{}
}

// Handle @Summary Health check
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{} "Service status"
// @Router /health [get]
func (h *healthHandler) Handle(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "healthy", "version": version.Version})
}

type usageHandler struct {
	limiter ratelimit.Limiter
}

func NewUsageHandler(limiter ratelimit.Limiter) Handler {
	return &usageHandler{limiter: limiter}
}

// Handle @Summary Rate limit usage of the caller
// @Description Reports request counts of the last minute and day for the bearer credential
// @Tags System
// @Produce json
// @Success 200 {object} ratelimit.Stats
// @Router /usage [get]
func (h *usageHandler) Handle(c *fiber.Ctx) error {
	return c.JSON(h.limiter.Stats(middleware.CallerKeyFromCtx(c)))
}

type getVersionHandler struct{}

func NewGetVersionHandler() Handler {
	return &getVersionHandler{}
}

// Handle @Summary Get TrustBook version
// @Tags System
// @Produce json
// @Success 200 {object} version.Info
// @Router /version [get]
func (h *getVersionHandler) Handle(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(version.GetInfo())
}
