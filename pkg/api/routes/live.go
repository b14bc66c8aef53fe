package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	"github.com/transitdb/transitdb/pkg/livedata"
)

func LiveRouter(router fiber.Router) {
	router.Get("/positions", getLivePositions)
}

func getLivePositions(c *fiber.Ctx) error {
	provider, err := livedata.Get(requestCity(c))
	if err != nil {
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	positions, err := provider.GetLivePositions(c.Context())
	if err != nil {
		c.SendStatus(fiber.StatusBadGateway)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	positionsReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"live"},
	}, positions)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Could not reduce positions",
		})
	}

	return c.JSON(positionsReduced)
}
