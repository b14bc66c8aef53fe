package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/transitdb/transitdb/pkg/storage"
	"github.com/transitdb/transitdb/pkg/transit"
)

// RequireCity resolves the :city path parameter and stashes the city and its
// storage partition in the request context for the route handlers.
func RequireCity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		city, ok := transit.ParseCity(c.Params("city"))
		if !ok {
			c.SendStatus(fiber.StatusNotFound)
			return c.JSON(fiber.Map{
				"error": "Unknown city",
			})
		}

		cityStorage, err := storage.Global.Get(city)
		if err != nil {
			c.SendStatus(fiber.StatusInternalServerError)
			return c.JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		c.Locals("city", city)
		c.Locals("cityStorage", cityStorage)

		return c.Next()
	}
}

func requestCity(c *fiber.Ctx) transit.City {
	return c.Locals("city").(transit.City)
}

func requestStorage(c *fiber.Ctx) storage.CityStorage {
	return c.Locals("cityStorage").(storage.CityStorage)
}

func parseVehicleType(c *fiber.Ctx) (transit.VehicleType, bool) {
	switch c.Query("type") {
	case "":
		return transit.VehicleTypeNone, true
	case "bus":
		return transit.VehicleTypeBus, true
	case "tram":
		return transit.VehicleTypeTram, true
	}

	return transit.VehicleTypeNone, false
}
