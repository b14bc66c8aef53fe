package krakow

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
	"github.com/transitdb/transitdb/pkg/cachedfetch"
	"github.com/transitdb/transitdb/pkg/storage"
	"github.com/transitdb/transitdb/pkg/transit"
)

type stopEntry struct {
	ID        string  `csv:"stop_id"`
	Name      string  `csv:"stop_name"`
	Latitude  float64 `csv:"stop_lat"`
	Longitude float64 `csv:"stop_lon"`
}

// GroupID strips the per-pole suffix off a schedule stop ID. Stop IDs look
// like "stop_123_12345" where the last one or two digits of the trailing
// number pick the pole within the stop group.
func (e stopEntry) GroupID() string {
	parts := strings.Split(e.ID, "_")
	if len(parts) < 3 {
		return e.ID
	}

	stopNr := parts[2]
	cut := len(stopNr)
	if cut > 2 {
		cut = 2
	}

	return stopNr[:len(stopNr)-cut]
}

// Downloader keeps the Krakow partition fresh: vehicle identities for both
// categories plus the stop and stop group inventory from the schedule zips.
type Downloader struct {
	storage storage.CityStorage

	ttss   *TTSSClient
	gtfsRt *GtfsRtClient
	kokon  *KokonClient
	rules  *MatchRulesClient
}

func NewDownloader(cityStorage storage.CityStorage, cache *cachedfetch.Client) *Downloader {
	return &Downloader{
		storage: cityStorage,

		ttss:   &TTSSClient{Cache: cache},
		gtfsRt: &GtfsRtClient{},
		kokon:  &KokonClient{Cache: cache},
		rules:  &MatchRulesClient{Cache: cache},
	}
}

func (d *Downloader) City() transit.City {
	return transit.CityKrakow
}

func (d *Downloader) LiveDataProvider() *LiveDataProvider {
	return &LiveDataProvider{ttss: d.ttss, storage: d.storage}
}

// RefreshIfNeeded runs one full refresh. A failed category keeps its previous
// identities and does not stop the other category or the stop sync.
func (d *Downloader) RefreshIfNeeded(ctx context.Context) error {
	builder := &VehicleDBBuilder{
		TTSS:    d.ttss,
		GtfsRt:  d.gtfsRt,
		Kokon:   d.kokon,
		Rules:   d.rules,
		Storage: d.storage,
	}

	if err := builder.Build(ctx, transit.VehicleTypeBus); err != nil {
		log.Error().Err(err).Msg("Failed to build the bus vehicle database, continuing with the previous one")
	}
	if err := builder.Build(ctx, transit.VehicleTypeTram); err != nil {
		log.Error().Err(err).Msg("Failed to build the tram vehicle database, continuing with the previous one")
	}

	busGroups, err := d.syncStops(ctx, busScheduleFile, transit.VehicleTypeBus)
	if err != nil {
		return err
	}

	tramGroups, err := d.syncStops(ctx, tramScheduleFile, transit.VehicleTypeTram)
	if err != nil {
		return err
	}

	if err := d.syncStopGroups(ctx, busGroups, tramGroups); err != nil {
		return err
	}

	stopCount, err := d.storage.CountStops(ctx)
	if err != nil {
		return err
	}

	log.Info().Int("stops", stopCount).Msg("Krakow refresh finished")

	return nil
}

// syncStops reconciles one category's stops against the schedule zip and
// returns the stop groups the zip defines.
func (d *Downloader) syncStops(ctx context.Context, file string, vehicleType transit.VehicleType) (map[string]transit.StopGroup, error) {
	entries, err := d.fetchScheduleStops(ctx, file)
	if err != nil {
		return nil, err
	}

	stops := map[string]transit.Stop{}
	groups := map[string]transit.StopGroup{}

	for _, entry := range entries {
		stop := transit.Stop{
			GtfsID:    entry.ID,
			GroupID:   entry.GroupID(),
			Name:      entry.Name,
			Latitude:  entry.Latitude,
			Longitude: entry.Longitude,
			Type:      vehicleType,
		}
		stops[stop.GtfsID] = stop

		if _, ok := groups[stop.GroupID]; !ok {
			groups[stop.GroupID] = transit.StopGroup{
				GroupID: stop.GroupID,
				Name:    stop.Name,
				Types:   []transit.VehicleType{vehicleType},
			}
		}
	}

	existingIDs, err := d.storage.GetStopIDsByType(ctx, vehicleType)
	if err != nil {
		return nil, err
	}

	var toRemove []string
	for _, id := range existingIDs {
		if _, ok := stops[id]; !ok {
			toRemove = append(toRemove, id)
		}
	}

	existing := map[string]bool{}
	for _, id := range existingIDs {
		existing[id] = true
	}

	var toAdd []transit.Stop
	for id, stop := range stops {
		if !existing[id] {
			toAdd = append(toAdd, stop)
		}
	}

	if err := d.storage.RemoveStops(ctx, toRemove); err != nil {
		return nil, err
	}
	if err := d.storage.AddStops(ctx, toAdd); err != nil {
		return nil, err
	}

	return groups, nil
}

func (d *Downloader) syncStopGroups(ctx context.Context, busGroups, tramGroups map[string]transit.StopGroup) error {
	merged := map[string]transit.StopGroup{}
	for id, group := range busGroups {
		merged[id] = group
	}
	for id, group := range tramGroups {
		if existing, ok := merged[id]; ok {
			existing.Types = append(existing.Types, group.Types...)
			merged[id] = existing
			continue
		}
		merged[id] = group
	}

	previousIDs, err := d.storage.GetAllStopGroupIDs(ctx)
	if err != nil {
		return err
	}

	previous := map[string]bool{}
	for _, id := range previousIDs {
		previous[id] = true
	}

	var toRemove []string
	for _, id := range previousIDs {
		if _, ok := merged[id]; !ok {
			toRemove = append(toRemove, id)
		}
	}

	var toAdd []transit.StopGroup
	for id, group := range merged {
		if !previous[id] {
			toAdd = append(toAdd, group)
		}
	}

	if err := d.storage.RemoveStopGroups(ctx, toRemove); err != nil {
		return err
	}

	return d.storage.AddStopGroups(ctx, toAdd)
}

func (d *Downloader) fetchScheduleStops(ctx context.Context, file string) ([]stopEntry, error) {
	body, err := httpGetBytesWithRetry(ctx, ztpBaseURL+file)
	if err != nil {
		return nil, err
	}

	zipReader, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return nil, err
	}

	for _, zipFile := range zipReader.File {
		if zipFile.Name != "stops.txt" {
			continue
		}

		fileReader, err := zipFile.Open()
		if err != nil {
			return nil, err
		}
		defer fileReader.Close()

		// Some schedule exports ship rows with missing columns.
		gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
			r := csv.NewReader(in)
			r.FieldsPerRecord = -1
			return r
		})

		var entries []stopEntry
		if err := gocsv.Unmarshal(fileReader, &entries); err != nil {
			return nil, err
		}

		return entries, nil
	}

	return nil, fmt.Errorf("schedule zip %s has no stops.txt", file)
}
