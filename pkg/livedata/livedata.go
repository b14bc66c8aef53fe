package livedata

import (
	"context"
	"fmt"
	"sync"

	"github.com/transitdb/transitdb/pkg/transit"
)

// Provider serves the current live-tracking positions for one city.
type Provider interface {
	City() transit.City
	GetLivePositions(ctx context.Context) ([]transit.VehicleLiveInfo, error)
	GetVehiclesWithLiveInfo(ctx context.Context, vehicleType transit.VehicleType) ([]transit.VehicleWithLiveInfo, error)
}

var (
	mutex     sync.RWMutex
	providers = map[transit.City]Provider{}
)

func Register(provider Provider) {
	mutex.Lock()
	defer mutex.Unlock()

	providers[provider.City()] = provider
}

func Get(city transit.City) (Provider, error) {
	mutex.RLock()
	defer mutex.RUnlock()

	provider, ok := providers[city]
	if !ok {
		return nil, fmt.Errorf("no live data provider registered for city %q", city)
	}

	return provider, nil
}
