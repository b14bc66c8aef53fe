package api

import (
	"github.com/transitdb/transitdb/pkg/cachedfetch"
	"github.com/transitdb/transitdb/pkg/cityclient"
	"github.com/transitdb/transitdb/pkg/util"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "web-api",
		Usage: "Provides the core web API",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run web api server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Value: ":8080",
						Usage: "listen target for the web server",
					},
				},
				Action: func(c *cli.Context) error {
					env := util.GetEnvironmentVariables()

					if err := cityclient.Connect(env["STORAGE_BACKEND"]); err != nil {
						return err
					}

					// Registers the live data providers the vehicle routes
					// join against.
					if _, err := cityclient.Setup(cachedfetch.NewClient()); err != nil {
						return err
					}

					return SetupServer(c.String("listen"))
				},
			},
		},
	}
}
