package follow

import (
	"errors"

	"backend-glimpse/internal/auth"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, requireAuth fiber.Handler) {
	r.Post("/", requireAuth, func(c *fiber.Ctx) error {
		var req FollowRequest
		if err := c.BodyParser(&req); err != nil || req.UserID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "user_id required")
		}
		identity := auth.IdentityFrom(c)
		if err := svc.Follow(c.Context(), identity.UserID, req.UserID); err != nil {
			if errors.Is(err, ErrSelfFollow) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusCreated)
	})

	r.Delete("/:userID", requireAuth, func(c *fiber.Ctx) error {
		identity := auth.IdentityFrom(c)
		if err := svc.Unfollow(c.Context(), identity.UserID, c.Params("userID")); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Get("/status/:userID", requireAuth, func(c *fiber.Ctx) error {
		identity := auth.IdentityFrom(c)
		following, err := svc.IsFollowing(c.Context(), identity.UserID, c.Params("userID"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		followedBy, err := svc.IsFollowing(c.Context(), c.Params("userID"), identity.UserID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"following": following, "followed_by": followedBy})
	})

	r.Get("/followers", requireAuth, func(c *fiber.Ctx) error {
		identity := auth.IdentityFrom(c)
		users, err := svc.Followers(c.Context(), identity.UserID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(users)
	})

	r.Get("/following", requireAuth, func(c *fiber.Ctx) error {
		identity := auth.IdentityFrom(c)
		users, err := svc.Following(c.Context(), identity.UserID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(users)
	})
}
