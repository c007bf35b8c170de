package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/AsadUlm/brainburst-progress-api/internal/dto"
	"github.com/AsadUlm/brainburst-progress-api/internal/service"
	"github.com/AsadUlm/brainburst-progress-api/internal/utils"
)

// ProgressHandler wires progress transition HTTP routes.
type ProgressHandler struct {
	service   service.ProgressService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewProgressHandler constructs the handler.
func NewProgressHandler(service service.ProgressService, validator *validator.Validate, logger zerolog.Logger) *ProgressHandler {
	return &ProgressHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "progress_handler").Logger(),
	}
}

// Register attaches progress endpoints to the assignment router group.
func (h *ProgressHandler) Register(router fiber.Router) {
	router.Post("/:id/attempts", h.startAttempt)
	router.Post("/:id/submissions", h.recordSubmission)
	router.Post("/:id/students/:studentId/override", h.override)
	router.Post("/:id/students/:studentId/reset", h.reset)
	router.Get("/:id/students/:studentId/progress", h.get)
}

func (h *ProgressHandler) startAttempt(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, CodeValidationFailed, err.Error())
	}

	progress, err := h.service.StartAttempt(c.Context(), actor, assignmentID)
	if err != nil {
		return respondServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "attempt started", progress)
}

func (h *ProgressHandler) recordSubmission(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, CodeValidationFailed, err.Error())
	}

	var payload dto.SubmissionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, CodeValidationFailed, "invalid request body")
	}

	studentID := payload.StudentID
	if actor.IsStudent() {
		studentID = actor.ID
	}
	if studentID == 0 {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, CodeValidationFailed, "student_id is required")
	}

	progress, err := h.service.RecordSubmission(c.Context(), actor, assignmentID, studentID, payload)
	if err != nil {
		return respondServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "submission recorded", progress)
}

func (h *ProgressHandler) override(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, CodeValidationFailed, err.Error())
	}

	studentID, err := parseUintParam(c, "studentId")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, CodeValidationFailed, err.Error())
	}

	var payload dto.OverrideRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, CodeValidationFailed, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return respondServiceError(c, h.logger, err)
	}

	override, err := service.ParseOverride(payload.Status, payload.Grade, payload.Comment)
	if err != nil {
		return respondServiceError(c, h.logger, err)
	}

	progress, err := h.service.Override(c.Context(), actor, assignmentID, studentID, override)
	if err != nil {
		return respondServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "override applied", progress)
}

func (h *ProgressHandler) reset(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, CodeValidationFailed, err.Error())
	}

	studentID, err := parseUintParam(c, "studentId")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, CodeValidationFailed, err.Error())
	}

	progress, err := h.service.Reset(c.Context(), actor, assignmentID, studentID)
	if err != nil {
		return respondServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "progress reset", progress)
}

func (h *ProgressHandler) get(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, CodeValidationFailed, err.Error())
	}

	studentID, err := parseUintParam(c, "studentId")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, CodeValidationFailed, err.Error())
	}

	progress, err := h.service.Get(c.Context(), actor, assignmentID, studentID)
	if err != nil {
		return respondServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "progress retrieved", progress)
}
