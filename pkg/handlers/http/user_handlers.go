package http

import (
	"github.com/NeuralTrust/TrustBook/pkg/app/user"
	"github.com/NeuralTrust/TrustBook/pkg/handlers/http/request"
	"github.com/NeuralTrust/TrustBook/pkg/infra/auditlogs"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type createUserHandler struct {
	logger  *logrus.Logger
	service user.Service
	audit   auditlogs.Service
}

func NewCreateUserHandler(logger *logrus.Logger, service user.Service, audit auditlogs.Service) Handler {
	return &createUserHandler{logger: logger, service: service, audit: audit}
}

// Handle @Summary Register a user
// @Tags Users
// @Accept json
// @Produce json
// @Param request body request.CreateUserRequest true "User data"
// @Success 201 {object} user.User
// @Failure 409 {object} map[string]interface{} "Email already registered"
// @Router /api/v1/users [post]
func (h *createUserHandler) Handle(c *fiber.Ctx) error {
	var req request.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, h.logger, err)
	}
	entity, err := h.service.Create(c.Context(), &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	h.audit.Emit(c, auditlogs.NewEvent(auditlogs.EventTypeUserCreated, auditlogs.TargetTypeUser, entity.ID.String(), entity.Name))
	return c.Status(fiber.StatusCreated).JSON(entity)
}

type getUserHandler struct {
	logger  *logrus.Logger
	service user.Service
}

func NewGetUserHandler(logger *logrus.Logger, service user.Service) Handler {
	return &getUserHandler{logger: logger, service: service}
}

func (h *getUserHandler) Handle(c *fiber.Ctx) error {
	id, err := uuidParam(c, "user_id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	entity, err := h.service.Get(c.Context(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(entity)
}
