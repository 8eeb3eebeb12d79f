package http

import (
	"github.com/NeuralTrust/TrustBook/pkg/app/textbook"
	"github.com/NeuralTrust/TrustBook/pkg/handlers/http/request"
	"github.com/NeuralTrust/TrustBook/pkg/handlers/http/response"
	"github.com/NeuralTrust/TrustBook/pkg/infra/auditlogs"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type createTextbookHandler struct {
	logger  *logrus.Logger
	creator textbook.Creator
	audit   auditlogs.Service
}

func NewCreateTextbookHandler(logger *logrus.Logger, creator textbook.Creator, audit auditlogs.Service) Handler {
	return &createTextbookHandler{
		logger:  logger,
		creator: creator,
		audit:   audit,
	}
}

// Handle @Summary Create a textbook
// @Tags Textbooks
// @Accept json
// @Produce json
// @Param Authorization header string false "Admin token"
// @Param request body request.CreateTextbookRequest true "Textbook data"
// @Success 201 {object} textbook.Textbook
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 404 {object} map[string]interface{} "Author not found"
// @Router /api/v1/textbooks [post]
func (h *createTextbookHandler) Handle(c *fiber.Ctx) error {
	var req request.CreateTextbookRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, h.logger, err)
	}
	entity, err := h.creator.Create(c.Context(), &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	h.audit.Emit(c, auditlogs.NewEvent(
		auditlogs.EventTypeTextbookCreated, auditlogs.TargetTypeTextbook, entity.ID.String(), entity.Title,
	))
	return c.Status(fiber.StatusCreated).JSON(entity)
}

type getTextbookHandler struct {
	logger *logrus.Logger
	finder textbook.Finder
}

func NewGetTextbookHandler(logger *logrus.Logger, finder textbook.Finder) Handler {
	return &getTextbookHandler{
		logger: logger,
		finder: finder,
	}
}

// Handle @Summary Get a textbook
// @Tags Textbooks
// @Produce json
// @Param textbook_id path string true "Textbook ID"
// @Success 200 {object} textbook.Textbook
// @Failure 404 {object} map[string]interface{} "Textbook not found"
// @Router /api/v1/textbooks/{textbook_id} [get]
func (h *getTextbookHandler) Handle(c *fiber.Ctx) error {
	id, err := uuidParam(c, "textbook_id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	entity, err := h.finder.Find(c.Context(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(entity)
}

type updateTextbookHandler struct {
	logger  *logrus.Logger
	updater textbook.Updater
	audit   auditlogs.Service
}

func NewUpdateTextbookHandler(logger *logrus.Logger, updater textbook.Updater, audit auditlogs.Service) Handler {
	return &updateTextbookHandler{
		logger:  logger,
		updater: updater,
		audit:   audit,
	}
}

func (h *updateTextbookHandler) Handle(c *fiber.Ctx) error {
	id, err := uuidParam(c, "textbook_id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var req request.UpdateTextbookRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, h.logger, err)
	}
	entity, err := h.updater.Update(c.Context(), id, &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	h.audit.Emit(c, auditlogs.NewEvent(
		auditlogs.EventTypeTextbookUpdated, auditlogs.TargetTypeTextbook, entity.ID.String(), entity.Title,
	))
	return c.JSON(entity)
}

type listChaptersHandler struct {
	logger *logrus.Logger
	finder textbook.Finder
}

func NewListChaptersHandler(logger *logrus.Logger, finder textbook.Finder) Handler {
	return &listChaptersHandler{
		logger: logger,
		finder: finder,
	}
}

// Handle @Summary List the chapters of a textbook
// @Description Chapters are ordered by chapter number
// @Tags Textbooks
// @Produce json
// @Param textbook_id path string true "Textbook ID"
// @Success 200 {object} response.ChaptersResponse
// @Failure 404 {object} map[string]interface{} "Textbook not found or has no chapters"
// @Router /api/v1/textbooks/{textbook_id}/chapters [get]
func (h *listChaptersHandler) Handle(c *fiber.Ctx) error {
	id, err := uuidParam(c, "textbook_id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	chapters, err := h.finder.FindChapters(c.Context(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if len(chapters) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Textbook not found or has no chapters"})
	}
	return c.JSON(response.ChaptersResponse{Chapters: chapters})
}
