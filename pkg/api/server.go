package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/transitdb/transitdb/pkg/api/routes"
)

func SetupServer(listen string) error {
	webApp := fiber.New()
	webApp.Use(NewLogger())

	group := webApp.Group("/core")

	group.Get("version", routes.APIVersion)

	cityGroup := group.Group("/:city", routes.RequireCity())

	routes.VehiclesRouter(cityGroup.Group("/vehicles"))
	routes.StopGroupsRouter(cityGroup.Group("/stop_groups"))
	routes.LiveRouter(cityGroup.Group("/live"))

	return webApp.Listen(listen)
}
