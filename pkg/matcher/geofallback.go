package matcher

import (
	"github.com/rs/zerolog/log"
	"github.com/transitdb/transitdb/pkg/transit"
)

// Score assigned to a fallback match: better than a thin adjacency guess,
// worse than a direct match.
const geoFallbackScore = 80

// matchByProximity is Phase D, the last resort for tracking vehicles nothing
// else could place. A vehicle is matched only when exactly one third-source
// position lies within the proximity threshold; zero candidates tell us
// nothing and two or more cannot be told apart.
func (m *Matcher) matchByProximity(unresolved []TrackingObservation, positions []PositionObservation, byGtfsID map[int64]transit.Vehicle, matched *[]transit.Vehicle, result *Result) {
	for _, observation := range unresolved {
		var candidate PositionObservation
		candidateCount := 0
		for _, position := range positions {
			if position.Coords.DistanceTo(observation.Coords) < m.ProximityThresholdMetres {
				candidate = position
				candidateCount++
			}
		}

		if candidateCount != 1 {
			result.FailedCount++
			continue
		}

		label, ok := ParseVehicleLabel(candidate.Label)
		if !ok {
			result.FailedCount++
			continue
		}

		if _, ok := byGtfsID[label.Number]; ok {
			// Another vehicle already resolved to this feed ID; trusting the
			// proximity hit would produce a duplicate identity.
			log.Warn().
				Int64("trackingid", observation.ID).
				Str("label", candidate.Label).
				Msg("Proximity fallback collides with an already matched feed ID")
			result.FailedCount++
			continue
		}

		*matched = append(*matched, transit.Vehicle{
			UniqueID:       observation.ID,
			GtfsID:         label.Number,
			SideNo:         candidate.Label,
			IsHeuristic:    true,
			HeuristicScore: geoFallbackScore,
		})
		result.HeuristicCount++
	}
}
