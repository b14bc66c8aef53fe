// Package cityclient wires up the per-city data source clients. Each city
// package knows how to refresh its own partition; this package only knows
// which cities exist.
package cityclient

import (
	"github.com/transitdb/transitdb/pkg/cachedfetch"
	"github.com/transitdb/transitdb/pkg/cityclient/krakow"
	"github.com/transitdb/transitdb/pkg/cityclient/wroclaw"
	"github.com/transitdb/transitdb/pkg/livedata"
	"github.com/transitdb/transitdb/pkg/refresher"
	"github.com/transitdb/transitdb/pkg/storage"
	"github.com/transitdb/transitdb/pkg/transit"
)

// Setup builds the downloader for every supported city and registers the live
// data providers the cities expose.
func Setup(cache *cachedfetch.Client) ([]refresher.Downloader, error) {
	krakowStorage, err := storage.Global.Get(transit.CityKrakow)
	if err != nil {
		return nil, err
	}

	wroclawStorage, err := storage.Global.Get(transit.CityWroclaw)
	if err != nil {
		return nil, err
	}

	krakowDownloader := krakow.NewDownloader(krakowStorage, cache)
	livedata.Register(krakowDownloader.LiveDataProvider())

	return []refresher.Downloader{
		krakowDownloader,
		wroclaw.NewDownloader(wroclawStorage, cache),
	}, nil
}
