package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/transitdb/transitdb/pkg/transit"
)

type AddUpdateResult int

const (
	AddUpdateResultSkipped AddUpdateResult = iota
	AddUpdateResultAdded
	AddUpdateResultUpdated
)

func (r AddUpdateResult) String() string {
	switch r {
	case AddUpdateResultAdded:
		return "added"
	case AddUpdateResultUpdated:
		return "updated"
	default:
		return "skipped"
	}
}

// CityStorage is one city's partition of the durable store. Vehicle rows are
// keyed by side number; AddOrUpdateVehicle consults the previous-run index
// built with SideNoIndex to decide between adding, superseding and skipping.
type CityStorage interface {
	City() transit.City

	AddOrUpdateVehicle(ctx context.Context, vehicle transit.Vehicle, previous map[string]transit.Vehicle) (AddUpdateResult, error)
	GetAllVehicles(ctx context.Context, vehicleType transit.VehicleType) ([]transit.Vehicle, error)
	GetVehicleByUniqueID(ctx context.Context, uniqueID int64, vehicleType transit.VehicleType) (*transit.Vehicle, error)
	GetVehicleByGtfsID(ctx context.Context, gtfsID int64, vehicleType transit.VehicleType) (*transit.Vehicle, error)
	GetVehicleBySideNo(ctx context.Context, sideNo string) (*transit.Vehicle, error)

	AddStops(ctx context.Context, stops []transit.Stop) error
	RemoveStops(ctx context.Context, gtfsIDs []string) error
	GetStopIDsByType(ctx context.Context, vehicleType transit.VehicleType) ([]string, error)
	CountStops(ctx context.Context) (int, error)

	AddStopGroups(ctx context.Context, groups []transit.StopGroup) error
	RemoveStopGroups(ctx context.Context, groupIDs []string) error
	GetAllStopGroupIDs(ctx context.Context) ([]string, error)
	FindStopGroups(ctx context.Context, query string, limit int) ([]transit.StopGroup, error)
}

// Constructor builds a city's storage partition. The mapping from city to
// constructor is fixed at startup, there is no runtime backend discovery.
type Constructor func(city transit.City) CityStorage

type DataStorage struct {
	mutex        sync.Mutex
	constructors map[transit.City]Constructor
	stores       map[transit.City]CityStorage
}

var Global *DataStorage

func NewDataStorage(constructors map[transit.City]Constructor) *DataStorage {
	return &DataStorage{
		constructors: constructors,
		stores:       map[transit.City]CityStorage{},
	}
}

// Setup initialises the global store registry with the named backend for
// every known city. Backends: "memory" (default) and "mongodb".
func Setup(backend string) error {
	var constructor Constructor

	switch backend {
	case "", "memory":
		constructor = NewMemoryCityStorage
	case "mongodb":
		constructor = NewMongoCityStorage
	default:
		return fmt.Errorf("unknown storage backend %q", backend)
	}

	constructors := map[transit.City]Constructor{}
	for _, city := range transit.AllCities {
		constructors[city] = constructor
	}

	Global = NewDataStorage(constructors)

	return nil
}

func (d *DataStorage) Get(city transit.City) (CityStorage, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if store, ok := d.stores[city]; ok {
		return store, nil
	}

	constructor, ok := d.constructors[city]
	if !ok {
		return nil, fmt.Errorf("no storage registered for city %q", city)
	}

	store := constructor(city)
	d.stores[city] = store

	return store, nil
}

// SideNoIndex builds the previous-identity lookup AddOrUpdateVehicle
// reconciles against. Two previous identities sharing a side number is a
// data quality fault: the non-heuristic one wins when exactly one side is
// heuristic, otherwise the first seen stays and the conflict is logged.
func SideNoIndex(vehicles []transit.Vehicle) map[string]transit.Vehicle {
	index := map[string]transit.Vehicle{}

	for _, vehicle := range vehicles {
		existing, ok := index[vehicle.SideNo]
		if !ok {
			index[vehicle.SideNo] = vehicle
			continue
		}

		if existing.IsHeuristic != vehicle.IsHeuristic {
			if existing.IsHeuristic {
				index[vehicle.SideNo] = vehicle
			}
			continue
		}

		log.Warn().
			Str("sideno", vehicle.SideNo).
			Bool("heuristic", vehicle.IsHeuristic).
			Int64("keptuniqueid", existing.UniqueID).
			Int64("droppeduniqueid", vehicle.UniqueID).
			Msg("Duplicate side number in stored identities")
	}

	return index
}
