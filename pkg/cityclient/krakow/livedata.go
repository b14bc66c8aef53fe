package krakow

import (
	"context"
	"strconv"

	"github.com/transitdb/transitdb/pkg/storage"
	"github.com/transitdb/transitdb/pkg/transit"
)

// LiveDataProvider exposes the live-tracking positions for Krakow, keyed by
// the tracking-space vehicle ID the stored identities use.
type LiveDataProvider struct {
	ttss    *TTSSClient
	storage storage.CityStorage
}

func (p *LiveDataProvider) City() transit.City {
	return transit.CityKrakow
}

func (p *LiveDataProvider) GetLivePositions(ctx context.Context) ([]transit.VehicleLiveInfo, error) {
	var positions []transit.VehicleLiveInfo

	for _, vehicleType := range []transit.VehicleType{transit.VehicleTypeBus, transit.VehicleTypeTram} {
		info, err := p.ttss.GetVehiclesInfo(ctx, vehicleType)
		if err != nil {
			return nil, err
		}

		positions = append(positions, liveInfoFromTTSS(info, vehicleType)...)
	}

	return positions, nil
}

// GetVehiclesWithLiveInfo joins the stored identities with the current live
// positions. Vehicles not reporting right now come back with a nil LiveInfo.
func (p *LiveDataProvider) GetVehiclesWithLiveInfo(ctx context.Context, vehicleType transit.VehicleType) ([]transit.VehicleWithLiveInfo, error) {
	vehicles, err := p.storage.GetAllVehicles(ctx, vehicleType)
	if err != nil {
		return nil, err
	}

	positions, err := p.GetLivePositions(ctx)
	if err != nil {
		return nil, err
	}

	byVehicleID := map[int64]transit.VehicleLiveInfo{}
	for _, position := range positions {
		byVehicleID[position.VehicleID] = position
	}

	withLiveInfo := make([]transit.VehicleWithLiveInfo, 0, len(vehicles))
	for _, vehicle := range vehicles {
		entry := transit.VehicleWithLiveInfo{Vehicle: vehicle}
		if position, ok := byVehicleID[vehicle.UniqueID]; ok {
			entry.LiveInfo = &position
		}
		withLiveInfo = append(withLiveInfo, entry)
	}

	return withLiveInfo, nil
}

func liveInfoFromTTSS(info *ttssVehiclesInfo, vehicleType transit.VehicleType) []transit.VehicleLiveInfo {
	headings := map[int64]int{}
	for _, vehicle := range info.Vehicles {
		if vehicle.Heading == nil {
			continue
		}
		if id, err := strconv.ParseInt(vehicle.ID, 10, 64); err == nil {
			headings[id] = *vehicle.Heading
		}
	}

	var positions []transit.VehicleLiveInfo

	for _, observation := range info.TrackingObservations() {
		name := observation.Line
		if observation.Direction != "" {
			name = name + " " + observation.Direction
		}

		positions = append(positions, transit.VehicleLiveInfo{
			VehicleID: observation.ID,
			TripID:    observation.TripKey,
			Name:      name,
			Coords:    observation.Coords,
			Heading:   headings[observation.ID],
			Type:      vehicleType,
		})
	}

	return positions
}
