package storage

import (
	"context"
	"sync"

	"github.com/transitdb/transitdb/pkg/transit"
	"github.com/transitdb/transitdb/pkg/util"
)

// MemoryCityStorage keeps everything in process memory. It is the default
// backend for development and for single instance deployments that can
// afford to rebuild the vehicle database on startup.
type MemoryCityStorage struct {
	city transit.City

	mutex      sync.RWMutex
	vehicles   map[string]transit.Vehicle
	stops      map[string]transit.Stop
	stopGroups map[string]transit.StopGroup
}

func NewMemoryCityStorage(city transit.City) CityStorage {
	return &MemoryCityStorage{
		city:       city,
		vehicles:   map[string]transit.Vehicle{},
		stops:      map[string]transit.Stop{},
		stopGroups: map[string]transit.StopGroup{},
	}
}

func (s *MemoryCityStorage) City() transit.City {
	return s.city
}

func (s *MemoryCityStorage) AddOrUpdateVehicle(ctx context.Context, vehicle transit.Vehicle, previous map[string]transit.Vehicle) (AddUpdateResult, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	result := AddUpdateResultAdded

	if old, ok := previous[vehicle.SideNo]; ok {
		if old.GtfsID == vehicle.GtfsID && old.UniqueID == vehicle.UniqueID {
			return AddUpdateResultSkipped, nil
		}

		result = AddUpdateResultUpdated

		// The side number changed hands; drop every row the new identity
		// supersedes so the unique keys stay unique.
		for sideNo, stored := range s.vehicles {
			if stored.Model.Type != vehicle.Model.Type {
				continue
			}
			if stored.GtfsID == vehicle.GtfsID || stored.UniqueID == vehicle.UniqueID ||
				stored.GtfsID == old.GtfsID || stored.UniqueID == old.UniqueID ||
				sideNo == vehicle.SideNo {
				delete(s.vehicles, sideNo)
			}
		}
	}

	s.vehicles[vehicle.SideNo] = vehicle

	return result, nil
}

func (s *MemoryCityStorage) GetAllVehicles(ctx context.Context, vehicleType transit.VehicleType) ([]transit.Vehicle, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var vehicles []transit.Vehicle
	for _, vehicle := range s.vehicles {
		if vehicleType == transit.VehicleTypeNone || vehicle.Model.Type == vehicleType {
			vehicles = append(vehicles, vehicle)
		}
	}

	return vehicles, nil
}

func (s *MemoryCityStorage) GetVehicleByUniqueID(ctx context.Context, uniqueID int64, vehicleType transit.VehicleType) (*transit.Vehicle, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for _, vehicle := range s.vehicles {
		if vehicle.UniqueID == uniqueID && (vehicleType == transit.VehicleTypeNone || vehicle.Model.Type == vehicleType) {
			return &vehicle, nil
		}
	}

	return nil, nil
}

func (s *MemoryCityStorage) GetVehicleByGtfsID(ctx context.Context, gtfsID int64, vehicleType transit.VehicleType) (*transit.Vehicle, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for _, vehicle := range s.vehicles {
		if vehicle.GtfsID == gtfsID && (vehicleType == transit.VehicleTypeNone || vehicle.Model.Type == vehicleType) {
			return &vehicle, nil
		}
	}

	return nil, nil
}

func (s *MemoryCityStorage) GetVehicleBySideNo(ctx context.Context, sideNo string) (*transit.Vehicle, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if vehicle, ok := s.vehicles[sideNo]; ok {
		return &vehicle, nil
	}

	return nil, nil
}

func (s *MemoryCityStorage) AddStops(ctx context.Context, stops []transit.Stop) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, stop := range stops {
		s.stops[stop.GtfsID] = stop
	}

	return nil
}

func (s *MemoryCityStorage) RemoveStops(ctx context.Context, gtfsIDs []string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, id := range gtfsIDs {
		delete(s.stops, id)
	}

	return nil
}

func (s *MemoryCityStorage) GetStopIDsByType(ctx context.Context, vehicleType transit.VehicleType) ([]string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var ids []string
	for _, stop := range s.stops {
		if vehicleType == transit.VehicleTypeNone || stop.Type == vehicleType {
			ids = append(ids, stop.GtfsID)
		}
	}

	return ids, nil
}

func (s *MemoryCityStorage) CountStops(ctx context.Context) (int, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return len(s.stops), nil
}

func (s *MemoryCityStorage) AddStopGroups(ctx context.Context, groups []transit.StopGroup) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, group := range groups {
		s.stopGroups[group.GroupID] = group
	}

	return nil
}

func (s *MemoryCityStorage) RemoveStopGroups(ctx context.Context, groupIDs []string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, id := range groupIDs {
		delete(s.stopGroups, id)
	}

	return nil
}

func (s *MemoryCityStorage) GetAllStopGroupIDs(ctx context.Context) ([]string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var ids []string
	for id := range s.stopGroups {
		ids = append(ids, id)
	}

	return ids, nil
}

func (s *MemoryCityStorage) FindStopGroups(ctx context.Context, query string, limit int) ([]transit.StopGroup, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var groups []transit.StopGroup
	for _, group := range s.stopGroups {
		if util.MatchesQuery(group.Name, query) {
			groups = append(groups, group)
			if limit > 0 && len(groups) >= limit {
				break
			}
		}
	}

	return groups, nil
}
