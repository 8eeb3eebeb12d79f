package http

import (
	"github.com/NeuralTrust/TrustBook/pkg/app/preference"
	"github.com/NeuralTrust/TrustBook/pkg/handlers/http/request"
	"github.com/NeuralTrust/TrustBook/pkg/handlers/http/response"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func preferenceScope(c *fiber.Ctx) (userID, textbookID uuid.UUID, err error) {
	if userID, err = uuidParam(c, "user_id"); err != nil {
		return
	}
	textbookID, err = uuidParam(c, "textbook_id")
	return
}

type getPreferenceHandler struct {
	logger  *logrus.Logger
	service preference.Service
}

func NewGetPreferenceHandler(logger *logrus.Logger, service preference.Service) Handler {
	return &getPreferenceHandler{logger: logger, service: service}
}

func (h *getPreferenceHandler) Handle(c *fiber.Ctx) error {
	userID, textbookID, err := preferenceScope(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	pref, err := h.service.Get(c.Context(), userID, textbookID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(pref)
}

type setPreferenceHandler struct {
	logger  *logrus.Logger
	service preference.Service
}

func NewSetPreferenceHandler(logger *logrus.Logger, service preference.Service) Handler {
	return &setPreferenceHandler{logger: logger, service: service}
}

// Handle @Summary Store the chapter selection of a user
// @Description Replaces the previous selection for the textbook
// @Tags Preferences
// @Accept json
// @Produce json
// @Param user_id path string true "User ID"
// @Param textbook_id path string true "Textbook ID"
// @Param request body request.SetPreferenceRequest true "Preference"
// @Success 200 {object} preference.UserPreference
// @Router /api/v1/users/{user_id}/textbooks/{textbook_id}/preferences [post]
func (h *setPreferenceHandler) Handle(c *fiber.Ctx) error {
	userID, textbookID, err := preferenceScope(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var req request.SetPreferenceRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, h.logger, err)
	}
	pref, err := h.service.Set(c.Context(), userID, textbookID, &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(pref)
}

type filteredChaptersHandler struct {
	logger  *logrus.Logger
	service preference.Service
}

func NewFilteredChaptersHandler(logger *logrus.Logger, service preference.Service) Handler {
	return &filteredChaptersHandler{logger: logger, service: service}
}

func (h *filteredChaptersHandler) Handle(c *fiber.Ctx) error {
	userID, textbookID, err := preferenceScope(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	chapters, err := h.service.FilteredChapters(c.Context(), userID, textbookID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(response.ChaptersResponse{Chapters: chapters})
}
