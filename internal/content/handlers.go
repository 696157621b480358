package content

import (
	"errors"

	"backend-glimpse/internal/auth"
	"backend-glimpse/internal/permission"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

const unlockTokenHeader = "X-Unlock-Token"

func RegisterRoutes(r fiber.Router, svc *Service, eval *permission.Evaluator, requireAuth, optionalAuth fiber.Handler) {
	r.Post("/", requireAuth, func(c *fiber.Ctx) error {
		var req CreateRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		identity := auth.IdentityFrom(c)
		item, err := svc.Create(c.Context(), identity.UserID, req)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(item)
	})

	r.Get("/:id", optionalAuth, func(c *fiber.Ctx) error {
		item, err := svc.Get(c.Context(), c.Params("id"))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fiber.NewError(fiber.StatusNotFound, "content not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "cannot display this content right now")
		}

		viewer := auth.IdentityFrom(c)
		decision, err := eval.Evaluate(c.Context(), item.Descriptor(), viewer)
		if err != nil {
			var evalErr *permission.EvaluationError
			if errors.As(err, &evalErr) {
				return fiber.NewError(fiber.StatusServiceUnavailable, "cannot display this content right now")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "cannot display this content right now")
		}

		switch decision {
		case permission.Allow:
			return c.JSON(item)
		case permission.RequiresSecret:
			if token := c.Get(unlockTokenHeader); token != "" && svc.CheckUnlockToken(token, item.ID) {
				return c.JSON(item)
			}
			// metadata stays renderable; the body waits behind the gate
			return c.JSON(fiber.Map{
				"id":     item.ID,
				"kind":   item.Kind,
				"title":  item.Title,
				"nsfw":   item.NSFW,
				"locked": true,
			})
		default:
			// deliberately content-shape-free: a deny must not leak more than
			// public metadata already does
			return fiber.NewError(fiber.StatusForbidden, "access denied")
		}
	})

	r.Patch("/:id", requireAuth, func(c *fiber.Ctx) error {
		var req UpdateRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		identity := auth.IdentityFrom(c)
		item, err := svc.Update(c.Context(), c.Params("id"), identity.UserID, req)
		if err != nil {
			switch {
			case errors.Is(err, pgx.ErrNoRows):
				return fiber.NewError(fiber.StatusNotFound, "content not found")
			case errors.Is(err, ErrNotOwner):
				return fiber.NewError(fiber.StatusForbidden, err.Error())
			case errors.Is(err, ErrUnknownVisibility), errors.Is(err, ErrSecretRequired):
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			default:
				return fiber.NewError(fiber.StatusInternalServerError, err.Error())
			}
		}
		return c.JSON(item)
	})

	r.Delete("/:id", requireAuth, func(c *fiber.Ctx) error {
		identity := auth.IdentityFrom(c)
		if err := svc.Delete(c.Context(), c.Params("id"), identity.UserID); err != nil {
			if errors.Is(err, ErrNotOwner) {
				return fiber.NewError(fiber.StatusForbidden, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/:id/images", requireAuth, func(c *fiber.Ctx) error {
		var body struct {
			ImageURL string `json:"image_url"`
		}
		if err := c.BodyParser(&body); err != nil || body.ImageURL == "" {
			return fiber.NewError(fiber.StatusBadRequest, "image_url required")
		}
		identity := auth.IdentityFrom(c)
		img, err := svc.AddImage(c.Context(), c.Params("id"), identity.UserID, body.ImageURL)
		if err != nil {
			switch {
			case errors.Is(err, pgx.ErrNoRows):
				return fiber.NewError(fiber.StatusNotFound, "content not found")
			case errors.Is(err, ErrNotOwner):
				return fiber.NewError(fiber.StatusForbidden, err.Error())
			default:
				return fiber.NewError(fiber.StatusInternalServerError, err.Error())
			}
		}
		return c.Status(fiber.StatusCreated).JSON(img)
	})

	r.Post("/:id/unlock", func(c *fiber.Ctx) error {
		var req UnlockRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		result, err := svc.VerifySecret(c.Context(), c.Params("id"), req.Secret)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fiber.NewError(fiber.StatusNotFound, "content not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "cannot verify this content right now")
		}
		switch result {
		case Unlocked:
			token, err := svc.IssueUnlockToken(c.Params("id"))
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, err.Error())
			}
			return c.JSON(fiber.Map{"status": "unlocked", "unlock_token": token})
		case NotPasswordProtected:
			return fiber.NewError(fiber.StatusBadRequest, "content is not password protected")
		default:
			return fiber.NewError(fiber.StatusForbidden, "wrong password")
		}
	})
}

// RegisterFeedRoutes mounts the authenticated home feed.
func RegisterFeedRoutes(r fiber.Router, svc *Service, requireAuth fiber.Handler) {
	r.Get("/", requireAuth, func(c *fiber.Ctx) error {
		identity := auth.IdentityFrom(c)
		feed, err := svc.Feed(c.Context(), identity.UserID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if feed == nil {
			feed = []Content{}
		}
		return c.JSON(feed)
	})
}
