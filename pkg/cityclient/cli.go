package cityclient

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/transitdb/transitdb/pkg/cachedfetch"
	"github.com/transitdb/transitdb/pkg/database"
	"github.com/transitdb/transitdb/pkg/redis_client"
	"github.com/transitdb/transitdb/pkg/refresher"
	"github.com/transitdb/transitdb/pkg/storage"
	"github.com/transitdb/transitdb/pkg/util"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "data-refresher",
		Usage: "Keeps the vehicle and stop databases in sync with the city data sources",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run the periodic refresh loop",
				Action: func(c *cli.Context) error {
					env := util.GetEnvironmentVariables()

					if err := Connect(env["STORAGE_BACKEND"]); err != nil {
						return err
					}

					downloaders, err := Setup(cachedfetch.NewClient())
					if err != nil {
						return err
					}

					ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
					defer stop()

					manager := refresher.NewManager(downloaders)

					log.Info().Int("cities", len(downloaders)).Msg("Starting refresh loop")

					if err := manager.Run(ctx); err != context.Canceled {
						return err
					}

					return nil
				},
			},
			{
				Name:  "run-once",
				Usage: "refresh every city a single time and exit",
				Action: func(c *cli.Context) error {
					env := util.GetEnvironmentVariables()

					if err := Connect(env["STORAGE_BACKEND"]); err != nil {
						return err
					}

					downloaders, err := Setup(cachedfetch.NewClient())
					if err != nil {
						return err
					}

					refresher.NewManager(downloaders).RefreshAll(context.Background())

					return nil
				},
			},
		},
	}
}

// Connect brings up the shared infrastructure every service needs: Redis for
// the fetch cache always, MongoDB only when it is the storage backend.
func Connect(storageBackend string) error {
	if err := redis_client.Connect(); err != nil {
		return err
	}

	if storageBackend == "mongodb" {
		if err := database.Connect(); err != nil {
			return err
		}
	}

	return storage.Setup(storageBackend)
}
