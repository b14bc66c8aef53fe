package krakow

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/transitdb/transitdb/pkg/matcher"
	"github.com/transitdb/transitdb/pkg/storage"
	"github.com/transitdb/transitdb/pkg/transit"
)

// VehicleDBBuilder runs one identity resolution pass for one vehicle
// category: fetch everything, run the matcher, reconcile the outcome into
// city storage.
type VehicleDBBuilder struct {
	TTSS    *TTSSClient
	GtfsRt  *GtfsRtClient
	Kokon   *KokonClient
	Rules   *MatchRulesClient
	Storage storage.CityStorage
}

// Build resolves identities for vehicleType. The rule catalogue is mandatory,
// without it no side number can be synthesized, so its failure aborts the
// whole pass. An ambiguous or impossible offset aborts too, poisoning stored
// identities is worse than skipping a run.
func (b *VehicleDBBuilder) Build(ctx context.Context, vehicleType transit.VehicleType) error {
	rules, err := b.Rules.GetRuleTable(ctx, vehicleType)
	if err != nil {
		return err
	}

	var trackingObservations []matcher.TrackingObservation
	var feedObservations []matcher.FeedObservation
	var positionObservations []matcher.PositionObservation

	fetchPool := pool.New().WithErrors().WithContext(ctx).WithMaxGoroutines(3)
	fetchPool.Go(func(ctx context.Context) error {
		vehiclesInfo, err := b.TTSS.GetVehiclesInfo(ctx, vehicleType)
		if err != nil {
			return err
		}
		trackingObservations = vehiclesInfo.TrackingObservations()
		return nil
	})
	fetchPool.Go(func(ctx context.Context) error {
		observations, err := b.GtfsRt.GetFeedObservations(ctx, vehicleType)
		if err != nil {
			return err
		}
		feedObservations = observations
		return nil
	})
	fetchPool.Go(func(ctx context.Context) error {
		observations, err := b.Kokon.GetPositions(ctx, vehicleType)
		if err != nil {
			return err
		}
		positionObservations = observations
		return nil
	})
	if err := fetchPool.Wait(); err != nil {
		return err
	}

	previous, err := b.Storage.GetAllVehicles(ctx, vehicleType)
	if err != nil {
		return err
	}

	result, err := matcher.New(rules, vehicleType).Match(trackingObservations, feedObservations, positionObservations, previous)
	if err != nil {
		if errors.Is(err, matcher.ErrNoObservations) {
			log.Warn().
				Str("type", string(vehicleType)).
				Msg("Skipping vehicle database build, no observations to resolve an offset from")
			return nil
		}
		return err
	}

	previousIndex := storage.SideNoIndex(previous)

	added := 0
	updated := 0
	skipped := 0

	for _, vehicle := range result.Vehicles {
		vehicle.Model = b.lookupModel(rules, vehicle, vehicleType)

		outcome, err := b.Storage.AddOrUpdateVehicle(ctx, vehicle, previousIndex)
		if err != nil {
			return err
		}

		switch outcome {
		case storage.AddUpdateResultAdded:
			added += 1
		case storage.AddUpdateResultUpdated:
			updated += 1
		case storage.AddUpdateResultSkipped:
			skipped += 1
		}
	}

	log.Info().
		Str("type", string(vehicleType)).
		Int64("offset", result.Offset).
		Int("direct", result.DirectCount).
		Int("heuristic", result.HeuristicCount).
		Int("failed", result.FailedCount).
		Int("unresolvedgroups", result.UnresolvedGroups).
		Int("added", added).
		Int("updated", updated).
		Int("skipped", skipped).
		Msg("Vehicle database build finished")

	return nil
}

func (b *VehicleDBBuilder) lookupModel(rules *matcher.RuleTable, vehicle transit.Vehicle, vehicleType transit.VehicleType) transit.VehicleModel {
	if rule, ok := rules.Lookup(vehicle.GtfsID); ok {
		if model, ok := rules.Model(rule.ModelName); ok {
			return model
		}
	}

	log.Warn().
		Int64("gtfsid", vehicle.GtfsID).
		Str("sideno", vehicle.SideNo).
		Msg("No model in the match rule catalogue for vehicle")

	return transit.VehicleModel{Type: vehicleType}
}
