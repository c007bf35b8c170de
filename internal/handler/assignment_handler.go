package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/AsadUlm/brainburst-progress-api/internal/dto"
	"github.com/AsadUlm/brainburst-progress-api/internal/service"
	"github.com/AsadUlm/brainburst-progress-api/internal/utils"
)

// AssignmentHandler wires assignment lifecycle HTTP routes.
type AssignmentHandler struct {
	service   service.AssignmentService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAssignmentHandler constructs the handler.
func NewAssignmentHandler(service service.AssignmentService, validator *validator.Validate, logger zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "assignment_handler").Logger(),
	}
}

// Register attaches assignment endpoints to the router group.
func (h *AssignmentHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Patch("/:id/archive", h.archive)
	router.Patch("/:id/unarchive", h.unarchive)
	router.Delete("/:id", h.delete)
}

// RegisterClassRoutes attaches class-scoped listing endpoints.
func (h *AssignmentHandler) RegisterClassRoutes(router fiber.Router) {
	router.Get("/:classId/assignments", h.listByClass)
}

func (h *AssignmentHandler) create(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	var payload dto.AssignmentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, CodeValidationFailed, "invalid request body")
	}

	assignment, err := h.service.Create(c.Context(), actor, payload)
	if err != nil {
		return respondServiceError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "assignment created", assignment)
}

func (h *AssignmentHandler) get(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, CodeValidationFailed, err.Error())
	}

	assignment, err := h.service.Get(c.Context(), actor, id)
	if err != nil {
		return respondServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "assignment retrieved", assignment)
}

func (h *AssignmentHandler) listByClass(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	classID, err := parseUintParam(c, "classId")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, CodeValidationFailed, err.Error())
	}

	assignments, err := h.service.ListByClass(c.Context(), actor, classID)
	if err != nil {
		return respondServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "assignments retrieved", assignments)
}

func (h *AssignmentHandler) archive(c *fiber.Ctx) error {
	return h.setArchived(c, true)
}

func (h *AssignmentHandler) unarchive(c *fiber.Ctx) error {
	return h.setArchived(c, false)
}

func (h *AssignmentHandler) setArchived(c *fiber.Ctx, archived bool) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, CodeValidationFailed, err.Error())
	}

	assignment, err := h.service.SetArchived(c.Context(), actor, id, archived)
	if err != nil {
		return respondServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "assignment archival updated", assignment)
}

func (h *AssignmentHandler) delete(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, CodeValidationFailed, err.Error())
	}

	if err := h.service.Delete(c.Context(), actor, id); err != nil {
		return respondServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "assignment deleted", fiber.Map{"id": id})
}
