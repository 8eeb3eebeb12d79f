package http

import (
	"errors"

	"github.com/NeuralTrust/TrustBook/pkg/app/rag"
	"github.com/NeuralTrust/TrustBook/pkg/domain"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	rateLimitExceeded = "Rate limit exceeded"
	internalError     = "Internal server error"
	retrievalFailed   = "Retrieval failed"
	generationFailed  = "Answer generation failed"
)

// respondError maps service errors onto HTTP statuses. Anything it does not
// recognise is logged and reported as a 500 without details.
func respondError(c *fiber.Ctx, logger *logrus.Logger, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		logger.WithError(err).WithField("path", c.Path()).Error("request failed")
		return c.Status(status).JSON(fiber.Map{"detail": internalError})
	}
	if status == fiber.StatusBadGateway {
		logger.WithError(err).WithField("path", c.Path()).Warn("upstream dependency failed")
		detail := retrievalFailed
		if errors.Is(err, rag.ErrGenerationFailure) {
			detail = generationFailed
		}
		return c.Status(status).JSON(fiber.Map{"detail": detail})
	}
	return c.Status(status).JSON(fiber.Map{"detail": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest
	case domain.IsNotFoundError(err):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists):
		return fiber.StatusConflict
	case errors.Is(err, rag.ErrRetrievalFailure), errors.Is(err, rag.ErrGenerationFailure):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func uuidParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	raw := c.Params(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.NewValidationError("invalid %s %q", name, raw)
	}
	return id, nil
}

func badBody(c *fiber.Ctx, logger *logrus.Logger, err error) error {
	logger.WithError(err).Debug("failed to parse request body")
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "invalid request body"})
}
