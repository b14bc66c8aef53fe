package krakow

import (
	"context"

	"github.com/kr/pretty"
	"github.com/transitdb/transitdb/pkg/cachedfetch"
	"github.com/transitdb/transitdb/pkg/matcher"
	"github.com/transitdb/transitdb/pkg/redis_client"
	"github.com/transitdb/transitdb/pkg/transit"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "krakow",
		Usage: "Krakow specific debugging helpers",
		Subcommands: []*cli.Command{
			{
				Name:  "match-preview",
				Usage: "run one identity resolution pass and dump the outcome without storing it",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "type",
						Value: "tram",
						Usage: "vehicle category to resolve, bus or tram",
					},
				},
				Action: func(c *cli.Context) error {
					vehicleType := transit.VehicleType(c.String("type"))

					if err := redis_client.Connect(); err != nil {
						return err
					}

					cache := cachedfetch.NewClient()
					ttss := &TTSSClient{Cache: cache}
					gtfsRt := &GtfsRtClient{}
					kokon := &KokonClient{Cache: cache}
					rulesClient := &MatchRulesClient{Cache: cache}

					ctx := context.Background()

					rules, err := rulesClient.GetRuleTable(ctx, vehicleType)
					if err != nil {
						return err
					}

					vehiclesInfo, err := ttss.GetVehiclesInfo(ctx, vehicleType)
					if err != nil {
						return err
					}

					feedObservations, err := gtfsRt.GetFeedObservations(ctx, vehicleType)
					if err != nil {
						return err
					}

					positionObservations, err := kokon.GetPositions(ctx, vehicleType)
					if err != nil {
						return err
					}

					result, err := matcher.New(rules, vehicleType).Match(vehiclesInfo.TrackingObservations(), feedObservations, positionObservations, nil)
					if err != nil {
						return err
					}

					pretty.Println(result)

					return nil
				},
			},
		},
	}
}
