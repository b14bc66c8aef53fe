package wroclaw

import (
	"context"
	"strconv"
	"unicode"

	"github.com/rs/zerolog/log"
	"github.com/transitdb/transitdb/pkg/cachedfetch"
	"github.com/transitdb/transitdb/pkg/storage"
	"github.com/transitdb/transitdb/pkg/transit"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Downloader keeps the Wroclaw partition fresh. The operator publishes its
// own vehicle inventory, so identities here are trivial: the published
// vehicle ID serves as tracking ID, feed ID and side number at once.
type Downloader struct {
	storage storage.CityStorage
	impk    *IMPKClient
}

func NewDownloader(cityStorage storage.CityStorage, cache *cachedfetch.Client) *Downloader {
	return &Downloader{
		storage: cityStorage,
		impk:    &IMPKClient{Cache: cache},
	}
}

func (d *Downloader) City() transit.City {
	return transit.CityWroclaw
}

func (d *Downloader) RefreshIfNeeded(ctx context.Context) error {
	if err := d.refreshVehicles(ctx); err != nil {
		return err
	}

	return d.refreshStops(ctx)
}

func (d *Downloader) refreshVehicles(ctx context.Context) error {
	impkVehicles, err := d.impk.GetVehicles(ctx)
	if err != nil {
		return err
	}

	previous, err := d.storage.GetAllVehicles(ctx, transit.VehicleTypeNone)
	if err != nil {
		return err
	}
	previousIndex := storage.SideNoIndex(previous)

	models := map[string]transit.VehicleModel{}
	added := 0
	updated := 0

	for _, impkVehicle := range impkVehicles {
		model, ok := models[impkVehicle.Model]
		if !ok {
			model = transit.VehicleModel{
				Name:     impkVehicle.Model,
				LowFloor: impkVehicle.LowFloor(),
				Type:     impkVehicle.VehicleType(),
			}
			models[impkVehicle.Model] = model
		}

		vehicle := transit.Vehicle{
			UniqueID: impkVehicle.VehicleID,
			GtfsID:   impkVehicle.VehicleID,
			SideNo:   strconv.FormatInt(impkVehicle.VehicleID, 10),
			Model:    model,
		}

		outcome, err := d.storage.AddOrUpdateVehicle(ctx, vehicle, previousIndex)
		if err != nil {
			return err
		}

		switch outcome {
		case storage.AddUpdateResultAdded:
			added += 1
		case storage.AddUpdateResultUpdated:
			updated += 1
		}
	}

	log.Info().
		Int("vehicles", len(impkVehicles)).
		Int("added", added).
		Int("updated", updated).
		Msg("Wroclaw vehicle inventory refreshed")

	return nil
}

func (d *Downloader) refreshStops(ctx context.Context) error {
	impkStops, err := d.impk.GetStops(ctx)
	if err != nil {
		return err
	}

	stops := map[string]transit.Stop{}
	groups := map[string]transit.StopGroup{}

	for _, impkStop := range impkStops {
		name := decapsify(impkStop.Name)

		groups[impkStop.StopID] = transit.StopGroup{
			GroupID: impkStop.StopID,
			Name:    name,
			Types:   stopTypes(impkStop.Type),
		}

		for _, post := range impkStop.Posts {
			postType := transit.VehicleTypeNone
			if types := stopTypes(post.Type); len(types) == 1 {
				postType = types[0]
			}

			stops[post.PostID] = transit.Stop{
				GtfsID:    post.PostID,
				GroupID:   impkStop.StopID,
				Name:      name,
				Latitude:  post.Latitude,
				Longitude: post.Longitude,
				Type:      postType,
			}
		}
	}

	if err := d.reconcileStops(ctx, stops); err != nil {
		return err
	}

	return d.reconcileStopGroups(ctx, groups)
}

func (d *Downloader) reconcileStops(ctx context.Context, stops map[string]transit.Stop) error {
	existingIDs, err := d.storage.GetStopIDsByType(ctx, transit.VehicleTypeNone)
	if err != nil {
		return err
	}

	existing := map[string]bool{}
	var toRemove []string
	for _, id := range existingIDs {
		existing[id] = true
		if _, ok := stops[id]; !ok {
			toRemove = append(toRemove, id)
		}
	}

	var toAdd []transit.Stop
	for id, stop := range stops {
		if !existing[id] {
			toAdd = append(toAdd, stop)
		}
	}

	if err := d.storage.RemoveStops(ctx, toRemove); err != nil {
		return err
	}

	return d.storage.AddStops(ctx, toAdd)
}

func (d *Downloader) reconcileStopGroups(ctx context.Context, groups map[string]transit.StopGroup) error {
	existingIDs, err := d.storage.GetAllStopGroupIDs(ctx)
	if err != nil {
		return err
	}

	existing := map[string]bool{}
	var toRemove []string
	for _, id := range existingIDs {
		existing[id] = true
		if _, ok := groups[id]; !ok {
			toRemove = append(toRemove, id)
		}
	}

	var toAdd []transit.StopGroup
	for id, group := range groups {
		if !existing[id] {
			toAdd = append(toAdd, group)
		}
	}

	if err := d.storage.RemoveStopGroups(ctx, toRemove); err != nil {
		return err
	}

	return d.storage.AddStopGroups(ctx, toAdd)
}

var titleCaser = cases.Title(language.Polish)

// decapsify turns the operator's ALL CAPS stop names into title case while
// leaving mixed case names alone.
func decapsify(name string) string {
	for _, r := range name {
		if unicode.IsLetter(r) && unicode.IsLower(r) {
			return name
		}
	}

	return titleCaser.String(name)
}
