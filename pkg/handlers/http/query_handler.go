package http

import (
	"github.com/NeuralTrust/TrustBook/pkg/app/rag"
	"github.com/NeuralTrust/TrustBook/pkg/handlers/http/request"
	"github.com/NeuralTrust/TrustBook/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const (
	notReadyDetail = "Textbook not found or RAG index not ready"
	cacheHeader    = "X-Cache"
)

type queryHandler struct {
	logger       *logrus.Logger
	orchestrator rag.Orchestrator
}

func NewQueryHandler(logger *logrus.Logger, orchestrator rag.Orchestrator) Handler {
	return &queryHandler{
		logger:       logger,
		orchestrator: orchestrator,
	}
}

// Handle @Summary Ask a question about a textbook
// @Description Answers from the textbook's RAG index. Answers are cached per textbook and query.
// @Tags RAG
// @Accept json
// @Produce json
// @Param textbook_id path string true "Textbook ID"
// @Param request body request.QueryRequest true "Query"
// @Success 200 {object} rag.QueryResponse
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 404 {object} map[string]interface{} "Textbook not found or RAG index not ready"
// @Failure 429 {object} map[string]interface{} "Rate limit exceeded"
// @Failure 502 {object} map[string]interface{} "Retrieval or generation failed"
// @Router /api/v1/textbook/{textbook_id}/query [post]
func (h *queryHandler) Handle(c *fiber.Ctx) error {
	var req request.QueryRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, h.logger, err)
	}
	if err := req.Validate(); err != nil {
		return respondError(c, h.logger, err)
	}

	result, err := h.orchestrator.AnswerQuery(c.Context(), rag.QueryRequest{
		TextbookID: c.Params("textbook_id"),
		Query:      req.Query,
		UserID:     req.UserID,
		CallerKey:  middleware.CallerKeyFromCtx(c),
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}

	switch result.Outcome {
	case rag.OutcomeDenied:
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"detail": rateLimitExceeded})
	case rag.OutcomeNotReady:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": notReadyDetail})
	}

	if result.Cached {
		c.Set(cacheHeader, "HIT")
	} else {
		c.Set(cacheHeader, "MISS")
	}
	return c.Status(fiber.StatusOK).JSON(result.Response)
}
