package handler

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/AsadUlm/brainburst-progress-api/internal/service"
	"github.com/AsadUlm/brainburst-progress-api/internal/utils"
)

// Stable error codes surfaced in the response envelope. Each service error
// category maps to exactly one code so clients can branch without parsing
// messages.
const (
	CodeNotFound          = "not_found"
	CodeForbidden         = "forbidden"
	CodeInvalidTransition = "invalid_transition"
	CodeConflict          = "conflict"
	CodeCascadeFailed     = "cascade_failed"
	CodeValidationFailed  = "validation_failed"
	CodeInternal          = "internal_error"
)

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	value := c.Params(name)
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, errors.New("invalid identifier")
	}
	return uint(parsed), nil
}

// actorFromLocals rebuilds the explicit actor identity from the verified JWT
// claims that the middleware stashed on the request.
func actorFromLocals(c *fiber.Ctx) (service.Actor, bool) {
	id, okID := c.Locals("user_id").(uint)
	role, okRole := c.Locals("user_role").(string)
	if !okID || !okRole || role == "" {
		return service.Actor{}, false
	}

	return service.Actor{ID: id, Role: role}, true
}

func requireActor(c *fiber.Ctx) (service.Actor, error) {
	actor, ok := actorFromLocals(c)
	if !ok {
		return service.Actor{}, utils.SendErrorCode(c, fiber.StatusUnauthorized, CodeForbidden, "missing actor identity")
	}
	return actor, nil
}

// respondServiceError translates service errors into the envelope with a
// stable code. Unknown errors are logged and hidden behind a 500.
func respondServiceError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	var invalidTransition *service.InvalidTransitionError
	var cascade *service.CascadeError
	var validationErrors validator.ValidationErrors

	switch {
	case errors.Is(err, service.ErrAssignmentNotFound),
		errors.Is(err, service.ErrProgressNotFound),
		errors.Is(err, service.ErrClassNotFound):
		return utils.SendErrorCode(c, fiber.StatusNotFound, CodeNotFound, err.Error())
	case errors.Is(err, service.ErrForbidden):
		return utils.SendErrorCode(c, fiber.StatusForbidden, CodeForbidden, "forbidden")
	case errors.As(err, &invalidTransition):
		return utils.SendErrorCode(c, fiber.StatusUnprocessableEntity, CodeInvalidTransition, string(invalidTransition.Reason))
	case errors.Is(err, service.ErrConflict):
		return utils.SendErrorCode(c, fiber.StatusConflict, CodeConflict, err.Error())
	case errors.As(err, &cascade):
		logger.Error().Err(err).Msg("cascade deletion failed")
		return utils.SendErrorCode(c, fiber.StatusInternalServerError, CodeCascadeFailed, "assignment deletion failed, no changes applied")
	case errors.As(err, &validationErrors):
		return utils.SendErrorCode(c, fiber.StatusBadRequest, CodeValidationFailed, validationErrors.Error())
	default:
		logger.Error().Err(err).Msg("internal server error")
		return utils.SendErrorCode(c, fiber.StatusInternalServerError, CodeInternal, "internal server error")
	}
}
