package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/AsadUlm/brainburst-progress-api/internal/config"
	"github.com/AsadUlm/brainburst-progress-api/internal/utils"
)

// HealthCheck reports service liveness together with basic build context.
func HealthCheck(cfg config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return utils.SendSuccess(c, "service healthy", fiber.Map{
			"app":       cfg.AppName,
			"env":       cfg.AppEnv,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}
