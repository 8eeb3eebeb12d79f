package http

import (
	"github.com/NeuralTrust/TrustBook/pkg/app/rag"
	"github.com/NeuralTrust/TrustBook/pkg/handlers/http/request"
	"github.com/NeuralTrust/TrustBook/pkg/infra/auditlogs"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type createRAGIndexHandler struct {
	logger       *logrus.Logger
	indexer      rag.Indexer
	audit        auditlogs.Service
	defaultModel string
}

// NewCreateRAGIndexHandler builds the index synchronously. defaultModel is
// used when the request names no embedding model.
func NewCreateRAGIndexHandler(
	logger *logrus.Logger,
	indexer rag.Indexer,
	audit auditlogs.Service,
	defaultModel string,
) Handler {
	return &createRAGIndexHandler{
		logger:       logger,
		indexer:      indexer,
		audit:        audit,
		defaultModel: defaultModel,
	}
}

// Handle @Summary Build the RAG index of a textbook
// @Tags RAG
// @Accept json
// @Produce json
// @Param Authorization header string false "Admin token"
// @Param request body request.CreateRAGIndexRequest true "Index request"
// @Success 201 {object} ragindex.RAGIndex
// @Failure 404 {object} map[string]interface{} "Textbook not found"
// @Router /api/v1/rag-index [post]
func (h *createRAGIndexHandler) Handle(c *fiber.Ctx) error {
	var req request.CreateRAGIndexRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, h.logger, err)
	}
	if err := req.Validate(); err != nil {
		return respondError(c, h.logger, err)
	}
	model := req.EmbeddingModel
	if model == "" {
		model = h.defaultModel
	}

	index, err := h.indexer.CreateIndex(c.Context(), uuid.MustParse(req.TextbookID), model)
	if err != nil {
		if index != nil {
			event := auditlogs.NewEvent(
				auditlogs.EventTypeRAGIndexBuilt, auditlogs.TargetTypeRAGIndex, index.ID.String(), index.QdrantCollectionID,
			)
			event.Event.Status = auditlogs.StatusFailure
			event.Event.ErrorMessage = err.Error()
			h.audit.Emit(c, event)
		}
		return respondError(c, h.logger, err)
	}
	h.audit.Emit(c, auditlogs.NewEvent(
		auditlogs.EventTypeRAGIndexBuilt, auditlogs.TargetTypeRAGIndex, index.ID.String(), index.QdrantCollectionID,
	))
	return c.Status(fiber.StatusCreated).JSON(index)
}

type getRAGIndexHandler struct {
	logger  *logrus.Logger
	indexer rag.Indexer
}

func NewGetRAGIndexHandler(logger *logrus.Logger, indexer rag.Indexer) Handler {
	return &getRAGIndexHandler{
		logger:  logger,
		indexer: indexer,
	}
}

func (h *getRAGIndexHandler) Handle(c *fiber.Ctx) error {
	textbookID, err := uuidParam(c, "textbook_id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	index, err := h.indexer.GetIndex(c.Context(), textbookID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(index)
}
