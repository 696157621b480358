package admin

import (
	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, requireAuth, requireAdmin fiber.Handler) {
	r.Get("/overview", requireAuth, requireAdmin, func(c *fiber.Ctx) error {
		overview, err := svc.Overview(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(overview)
	})
}
