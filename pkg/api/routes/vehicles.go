package routes

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	"github.com/transitdb/transitdb/pkg/livedata"
	"github.com/transitdb/transitdb/pkg/transit"
)

func VehiclesRouter(router fiber.Router) {
	router.Get("/", listVehicles)
	router.Get("/with_live_info", listVehiclesWithLiveInfo)
	router.Get("/by_side_no/:sideno", getVehicleBySideNo)
	router.Get("/by_gtfs_id/:id", getVehicleByGtfsID)
	router.Get("/by_unique_id/:id", getVehicleByUniqueID)
}

func listVehicles(c *fiber.Ctx) error {
	vehicleType, ok := parseVehicleType(c)
	if !ok {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Vehicle type must be bus or tram",
		})
	}

	vehicles, err := requestStorage(c).GetAllVehicles(c.Context(), vehicleType)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	vehiclesReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic"},
	}, vehicles)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Could not reduce vehicles",
		})
	}

	return c.JSON(vehiclesReduced)
}

func listVehiclesWithLiveInfo(c *fiber.Ctx) error {
	vehicleType, ok := parseVehicleType(c)
	if !ok {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Vehicle type must be bus or tram",
		})
	}

	provider, err := livedata.Get(requestCity(c))
	if err != nil {
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	vehicles, err := provider.GetVehiclesWithLiveInfo(c.Context(), vehicleType)
	if err != nil {
		c.SendStatus(fiber.StatusBadGateway)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	vehiclesReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic", "live"},
	}, vehicles)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Could not reduce vehicles",
		})
	}

	return c.JSON(vehiclesReduced)
}

func getVehicleBySideNo(c *fiber.Ctx) error {
	vehicle, err := requestStorage(c).GetVehicleBySideNo(c.Context(), c.Params("sideno"))

	return respondVehicle(c, vehicle, err)
}

func getVehicleByGtfsID(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Vehicle ID must be numeric",
		})
	}

	vehicleType, ok := parseVehicleType(c)
	if !ok {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Vehicle type must be bus or tram",
		})
	}

	vehicle, lookupErr := requestStorage(c).GetVehicleByGtfsID(c.Context(), id, vehicleType)

	return respondVehicle(c, vehicle, lookupErr)
}

func getVehicleByUniqueID(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Vehicle ID must be numeric",
		})
	}

	vehicleType, ok := parseVehicleType(c)
	if !ok {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Vehicle type must be bus or tram",
		})
	}

	vehicle, lookupErr := requestStorage(c).GetVehicleByUniqueID(c.Context(), id, vehicleType)

	return respondVehicle(c, vehicle, lookupErr)
}

func respondVehicle(c *fiber.Ctx, vehicle *transit.Vehicle, err error) error {
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if vehicle == nil {
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": "Could not find a vehicle matching the identifier",
		})
	}

	vehicleReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic"},
	}, vehicle)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Could not reduce vehicle",
		})
	}

	return c.JSON(vehicleReduced)
}
