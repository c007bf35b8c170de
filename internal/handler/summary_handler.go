package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/AsadUlm/brainburst-progress-api/internal/service"
	"github.com/AsadUlm/brainburst-progress-api/internal/utils"
)

// SummaryHandler exposes aggregation rollups.
type SummaryHandler struct {
	service service.AggregationService
	logger  zerolog.Logger
}

// NewSummaryHandler constructs the handler.
func NewSummaryHandler(service service.AggregationService, logger zerolog.Logger) *SummaryHandler {
	return &SummaryHandler{
		service: service,
		logger:  logger.With().Str("component", "summary_handler").Logger(),
	}
}

// Register attaches the assignment summary endpoint.
func (h *SummaryHandler) Register(router fiber.Router) {
	router.Get("/:id/summary", h.assignmentSummary)
}

// RegisterClassRoutes attaches the class summary endpoint.
func (h *SummaryHandler) RegisterClassRoutes(router fiber.Router) {
	router.Get("/:classId/summary", h.classSummary)
}

func (h *SummaryHandler) assignmentSummary(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, CodeValidationFailed, err.Error())
	}

	summary, err := h.service.AssignmentSummary(c.Context(), actor, assignmentID)
	if err != nil {
		return respondServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "assignment summary computed", summary)
}

func (h *SummaryHandler) classSummary(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	classID, err := parseUintParam(c, "classId")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, CodeValidationFailed, err.Error())
	}

	var studentID *uint
	if raw := c.QueryInt("student_id", 0); raw > 0 {
		value := uint(raw)
		studentID = &value
	}

	summary, err := h.service.ClassSummary(c.Context(), actor, classID, studentID)
	if err != nil {
		return respondServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "class summary computed", summary)
}
