package notification

import (
	"backend-glimpse/internal/auth"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, requireAuth fiber.Handler) {
	r.Get("/", requireAuth, func(c *fiber.Ctx) error {
		identity := auth.IdentityFrom(c)
		notifications, err := svc.List(c.Context(), identity.UserID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if notifications == nil {
			notifications = []Notification{}
		}
		return c.JSON(notifications)
	})

	r.Get("/unread-count", requireAuth, func(c *fiber.Ctx) error {
		identity := auth.IdentityFrom(c)
		count, err := svc.UnreadCount(c.Context(), identity.UserID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"unread": count})
	})

	r.Post("/read-all", requireAuth, func(c *fiber.Ctx) error {
		identity := auth.IdentityFrom(c)
		if err := svc.MarkAllRead(c.Context(), identity.UserID); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
