package routes

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

const defaultSearchLimit = 25

func StopGroupsRouter(router fiber.Router) {
	router.Get("/search", searchStopGroups)
}

func searchStopGroups(c *fiber.Ctx) error {
	query := c.Query("query")
	if query == "" {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "A search query must be provided",
		})
	}

	limit := defaultSearchLimit
	if limitQuery := c.Query("limit"); limitQuery != "" {
		parsed, err := strconv.Atoi(limitQuery)
		if err != nil || parsed < 1 {
			c.SendStatus(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"error": "Limit must be a positive number",
			})
		}
		limit = parsed
	}

	groups, err := requestStorage(c).FindStopGroups(c.Context(), query, limit)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(groups)
}
