package preview

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

// RegisterRoutes mounts the unauthenticated preview endpoint. It never goes
// through the permission evaluator: the card is public metadata by design and
// returns the same shape to every caller.
func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Get("/:id", func(c *fiber.Ctx) error {
		card, err := svc.Card(c.Context(), c.Params("id"))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fiber.NewError(fiber.StatusNotFound, "content not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "cannot build preview right now")
		}
		return c.JSON(card)
	})
}
