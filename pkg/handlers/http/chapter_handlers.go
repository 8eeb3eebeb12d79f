package http

import (
	"github.com/NeuralTrust/TrustBook/pkg/app/chapter"
	"github.com/NeuralTrust/TrustBook/pkg/handlers/http/request"
	"github.com/NeuralTrust/TrustBook/pkg/handlers/http/response"
	"github.com/NeuralTrust/TrustBook/pkg/infra/auditlogs"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type createChapterHandler struct {
	logger  *logrus.Logger
	service chapter.Service
	audit   auditlogs.Service
}

func NewCreateChapterHandler(logger *logrus.Logger, service chapter.Service, audit auditlogs.Service) Handler {
	return &createChapterHandler{logger: logger, service: service, audit: audit}
}

// Handle @Summary Add a chapter to a textbook
// @Tags Chapters
// @Accept json
// @Produce json
// @Param Authorization header string false "Admin token"
// @Param request body request.CreateChapterRequest true "Chapter data"
// @Success 201 {object} chapter.Chapter
// @Failure 409 {object} map[string]interface{} "Chapter number already taken"
// @Router /api/v1/chapters [post]
func (h *createChapterHandler) Handle(c *fiber.Ctx) error {
	var req request.CreateChapterRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, h.logger, err)
	}
	entity, err := h.service.Create(c.Context(), &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	h.audit.Emit(c, auditlogs.NewEvent(
		auditlogs.EventTypeChapterCreated, auditlogs.TargetTypeChapter, entity.ID.String(), entity.Title,
	))
	return c.Status(fiber.StatusCreated).JSON(entity)
}

type getChapterHandler struct {
	logger  *logrus.Logger
	service chapter.Service
}

func NewGetChapterHandler(logger *logrus.Logger, service chapter.Service) Handler {
	return &getChapterHandler{logger: logger, service: service}
}

func (h *getChapterHandler) Handle(c *fiber.Ctx) error {
	id, err := uuidParam(c, "chapter_id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	entity, err := h.service.Get(c.Context(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(entity)
}

type updateChapterHandler struct {
	logger  *logrus.Logger
	service chapter.Service
	audit   auditlogs.Service
}

func NewUpdateChapterHandler(logger *logrus.Logger, service chapter.Service, audit auditlogs.Service) Handler {
	return &updateChapterHandler{logger: logger, service: service, audit: audit}
}

func (h *updateChapterHandler) Handle(c *fiber.Ctx) error {
	id, err := uuidParam(c, "chapter_id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var req request.UpdateChapterRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, h.logger, err)
	}
	entity, err := h.service.Update(c.Context(), id, &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	h.audit.Emit(c, auditlogs.NewEvent(
		auditlogs.EventTypeChapterUpdated, auditlogs.TargetTypeChapter, entity.ID.String(), entity.Title,
	))
	return c.JSON(entity)
}

type deleteChapterHandler struct {
	logger  *logrus.Logger
	service chapter.Service
	audit   auditlogs.Service
}

func NewDeleteChapterHandler(logger *logrus.Logger, service chapter.Service, audit auditlogs.Service) Handler {
	return &deleteChapterHandler{logger: logger, service: service, audit: audit}
}

// Handle @Summary Delete a chapter
// @Tags Chapters
// @Param Authorization header string false "Admin token"
// @Param chapter_id path string true "Chapter ID"
// @Success 200 {object} response.MessageResponse
// @Failure 404 {object} map[string]interface{} "Chapter not found"
// @Router /api/v1/chapters/{chapter_id} [delete]
func (h *deleteChapterHandler) Handle(c *fiber.Ctx) error {
	id, err := uuidParam(c, "chapter_id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if err := h.service.Delete(c.Context(), id); err != nil {
		return respondError(c, h.logger, err)
	}
	h.audit.Emit(c, auditlogs.NewEvent(auditlogs.EventTypeChapterDeleted, auditlogs.TargetTypeChapter, id.String(), ""))
	return c.JSON(response.MessageResponse{Message: "Chapter deleted successfully"})
}
