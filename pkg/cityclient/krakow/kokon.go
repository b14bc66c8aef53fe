package krakow

import (
	"context"
	"time"

	"github.com/transitdb/transitdb/pkg/cachedfetch"
	"github.com/transitdb/transitdb/pkg/matcher"
	"github.com/transitdb/transitdb/pkg/transit"
	"golang.org/x/exp/slices"
)

const kokonPositionsURL = "http://91.223.13.52:3000/v_complete_all_vehs_pos?lat=not.is.null&lon=not.is.null&veh_ts=not.is.null"

// KokonClient reads the fleet management position export. It is the third,
// independent position source used by the geographic fallback: it reports
// depot labels instead of tracking or feed IDs.
type KokonClient struct {
	Cache *cachedfetch.Client
}

type kokonPosition struct {
	SideNo    string  `json:"veh_no"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	IsBus     bool    `json:"is_bus"`
	Variant   string  `json:"variant"`
	Direction string  `json:"direction"`
	NextStop  string  `json:"next_stop"`
}

// GetPositions returns one position per depot label, filtered to labels the
// matcher can decode, restricted to vehicleType and sorted by vehicle number.
func (c *KokonClient) GetPositions(ctx context.Context, vehicleType transit.VehicleType) ([]matcher.PositionObservation, error) {
	rows, err := cachedfetch.GetJSON[[]kokonPosition](ctx, c.Cache, "krakow:kokon:positions", 10*time.Second, func(ctx context.Context) (string, error) {
		return httpGetString(ctx, kokonPositionsURL)
	})
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var observations []matcher.PositionObservation

	for _, row := range rows {
		label, ok := matcher.ParseVehicleLabel(row.SideNo)
		if !ok || label.Type != vehicleType {
			continue
		}
		if seen[row.SideNo] {
			continue
		}
		seen[row.SideNo] = true

		observations = append(observations, matcher.PositionObservation{
			Label: row.SideNo,
			Coords: transit.Coords{
				Latitude:  row.Latitude,
				Longitude: row.Longitude,
			},
		})
	}

	slices.SortFunc(observations, func(a, b matcher.PositionObservation) int {
		labelA, _ := matcher.ParseVehicleLabel(a.Label)
		labelB, _ := matcher.ParseVehicleLabel(b.Label)
		return int(labelA.Number - labelB.Number)
	})

	return observations, nil
}
