package matcher

import (
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/transitdb/transitdb/pkg/transit"
	"golang.org/x/exp/slices"
)

// DefaultProximityThresholdMetres bounds the geographic fallback phase: a
// third-source position only counts as a candidate within this distance.
const DefaultProximityThresholdMetres = 10.0

// The tracking system hands out vehicle IDs in steps of two, which is what
// the arithmetic-adjacency phase leans on.
const trackingIDStep = 2

// maxAdjacencySteps bounds how far the adjacency search walks away from an
// unmatched tracking ID before giving up.
const maxAdjacencySteps = 9

var ErrNoObservations = errors.New("no trip observations on one side, cannot resolve an offset")

// Matcher resolves tracking-space vehicle IDs to feed-space vehicle IDs for
// one vehicle category of one city. All phases are pure; persistence is the
// caller's business.
type Matcher struct {
	Rules       *RuleTable
	VehicleType transit.VehicleType

	ProximityThresholdMetres float64
}

func New(rules *RuleTable, vehicleType transit.VehicleType) *Matcher {
	return &Matcher{
		Rules:       rules,
		VehicleType: vehicleType,

		ProximityThresholdMetres: DefaultProximityThresholdMetres,
	}
}

// Result carries the identities one resolution run produced plus the counts
// worth logging.
type Result struct {
	Vehicles []transit.Vehicle

	Offset           int64
	DirectCount      int
	HeuristicCount   int
	FailedCount      int
	UnresolvedGroups int
}

type groupPair struct {
	feedKey  int64
	feed     []FeedObservation
	tracking []TrackingObservation
}

// Match runs the four phase pipeline over one category's observations.
//
// Phase A pairs trip groups that are 1:1 after applying the resolved offset.
// Phase B breaks one-to-many groups by geographic proximity. Phase C places
// still-unmatched tracking IDs using the arithmetic structure of the ID
// space, anchored on direct matches and on the previous run's non-heuristic
// identities. Phase D falls back to proximity against the third position
// source. Iteration order is fixed (ascending IDs and trip keys) so equal
// scores always break the same way.
func (m *Matcher) Match(tracking []TrackingObservation, feed []FeedObservation, positions []PositionObservation, previous []transit.Vehicle) (*Result, error) {
	trackingTrips := map[int64][]TrackingObservation{}
	for _, observation := range tracking {
		trackingTrips[observation.TripKey] = append(trackingTrips[observation.TripKey], observation)
	}

	feedTrips := map[int64][]FeedObservation{}
	for _, observation := range feed {
		feedTrips[observation.TripKey] = append(feedTrips[observation.TripKey], observation)
	}

	offset, ok, err := FindBestOffset(trackingTrips, feedTrips)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoObservations
	}

	result := &Result{Offset: offset}

	// Phase A

	var matched []transit.Vehicle
	var deferred []groupPair
	unmatchedFeed := map[int64]FeedObservation{}
	consumedTrackingKeys := map[int64]struct{}{}

	for _, feedKey := range sortedKeys(feedTrips) {
		feedGroup := feedTrips[feedKey]
		trackingKey := feedKey + offset

		trackingGroup, ok := trackingTrips[trackingKey]
		if !ok {
			for _, observation := range feedGroup {
				unmatchedFeed[observation.ID] = observation
			}
			continue
		}

		consumedTrackingKeys[trackingKey] = struct{}{}

		if len(feedGroup) > 1 || len(trackingGroup) > 1 {
			deferred = append(deferred, groupPair{feedKey: feedKey, feed: feedGroup, tracking: trackingGroup})
			continue
		}

		matched = append(matched, transit.Vehicle{
			UniqueID: trackingGroup[0].ID,
			GtfsID:   feedGroup[0].ID,
			SideNo:   feedGroup[0].Number,
		})
		result.DirectCount++
	}

	var unmatchedTracking []TrackingObservation
	for _, trackingKey := range sortedKeys(trackingTrips) {
		if _, ok := consumedTrackingKeys[trackingKey]; ok {
			continue
		}

		unmatchedTracking = append(unmatchedTracking, trackingTrips[trackingKey]...)
	}

	byUniqueID := map[int64]transit.Vehicle{}
	byGtfsID := map[int64]transit.Vehicle{}
	for _, vehicle := range matched {
		byUniqueID[vehicle.UniqueID] = vehicle
		byGtfsID[vehicle.GtfsID] = vehicle
	}

	// Phase B

	for _, pair := range deferred {
		switch {
		case len(pair.feed) == 1:
			winner, losers := closestTracking(pair.feed[0], pair.tracking)

			matched = append(matched, transit.Vehicle{
				UniqueID:       winner.ID,
				GtfsID:         pair.feed[0].ID,
				SideNo:         pair.feed[0].Number,
				IsHeuristic:    true,
				HeuristicScore: 100/len(pair.tracking) + 10,
			})
			result.HeuristicCount++

			unmatchedTracking = append(unmatchedTracking, losers...)

		case len(pair.tracking) == 1:
			winner, losers := closestFeed(pair.tracking[0], pair.feed)

			matched = append(matched, transit.Vehicle{
				UniqueID:       pair.tracking[0].ID,
				GtfsID:         winner.ID,
				SideNo:         winner.Number,
				IsHeuristic:    true,
				HeuristicScore: 100/len(pair.feed) + 10,
			})
			result.HeuristicCount++

			for _, observation := range losers {
				unmatchedFeed[observation.ID] = observation
			}

		default:
			// Many-to-many trip groups have no defined pairing. Guessing one
			// would poison the stored identities, so the whole group stays
			// unresolved this run.
			log.Error().
				Int64("feedtripkey", pair.feedKey).
				Int("feedvehicles", len(pair.feed)).
				Int("trackingvehicles", len(pair.tracking)).
				Msg("Unresolvable many-to-many trip group")
			result.UnresolvedGroups++
		}
	}

	slices.SortFunc(unmatchedTracking, func(a, b TrackingObservation) int {
		return compareInt64(a.ID, b.ID)
	})

	// Phase C

	leftover := m.matchByAdjacency(matched[:result.DirectCount], unmatchedTracking, unmatchedFeed, byUniqueID, byGtfsID, previous, &matched, result)

	// Phase D

	m.matchByProximity(leftover, positions, byGtfsID, &matched, result)

	result.Vehicles = matched

	return result, nil
}

// matchByAdjacency is Phase C. Tracking IDs increment in fixed steps of two
// per sequential vehicle; an unmatched tracking ID can therefore be projected
// onto a feed ID from its nearest already-known neighbours. Returns the
// observations no candidate could be derived for.
func (m *Matcher) matchByAdjacency(direct []transit.Vehicle, unmatchedTracking []TrackingObservation, unmatchedFeed map[int64]FeedObservation, byUniqueID, byGtfsID map[int64]transit.Vehicle, previous []transit.Vehicle, matched *[]transit.Vehicle, result *Result) []TrackingObservation {
	if len(direct) == 0 {
		// No direct matches means no floor and no trustworthy anchors.
		return unmatchedTracking
	}

	// The first plausible feed ID, projected back from the direct match with
	// the lowest feed ID. Neighbours below this floor belong to an unrelated
	// numbering block and must not anchor a projection.
	lowest := direct[0]
	for _, vehicle := range direct[1:] {
		if vehicle.GtfsID < lowest.GtfsID {
			lowest = vehicle
		}
	}
	firstPlausibleFeedID := lowest.UniqueID - lowest.GtfsID*trackingIDStep - trackingIDStep

	// Non-heuristic identities from the previous run keep anchoring
	// projections across runs even when those vehicles are not out today.
	for _, vehicle := range previous {
		if vehicle.IsHeuristic || vehicle.Model.Type != m.VehicleType {
			continue
		}

		_, haveUnique := byUniqueID[vehicle.UniqueID]
		_, haveGtfs := byGtfsID[vehicle.GtfsID]
		if !haveUnique && !haveGtfs {
			byUniqueID[vehicle.UniqueID] = vehicle
			byGtfsID[vehicle.GtfsID] = vehicle
		}
	}

	var leftover []TrackingObservation

	for _, observation := range unmatchedTracking {
		if _, ok := byUniqueID[observation.ID]; ok {
			continue
		}

		closestUp, closestDown := 0, 0
		skipUp, skipDown := 0, 0
		for i := 1; i <= maxAdjacencySteps; i++ {
			up := observation.ID + int64(i*trackingIDStep)
			down := observation.ID - int64(i*trackingIDStep)

			if closestUp == 0 {
				if neighbour, ok := byUniqueID[up]; ok {
					if neighbour.GtfsID < firstPlausibleFeedID {
						skipUp++
					} else {
						closestUp = i
					}
				}
			}

			if closestDown == 0 {
				if neighbour, ok := byUniqueID[down]; ok {
					if neighbour.GtfsID < firstPlausibleFeedID {
						skipDown++
					} else {
						closestDown = i
					}
				}
			}

			if closestDown != 0 && closestUp != 0 {
				break
			}
		}

		confidence := 0
		candidateFeedID := int64(0)

		if closestDown > 0 {
			// The skip re-indexing can point at an ID nothing is known for.
			// A missing entry means the anchor cannot be trusted at all.
			if anchor, ok := byUniqueID[observation.ID-int64((closestDown-skipDown)*trackingIDStep)]; ok {
				confidence += 25
				candidateFeedID = anchor.GtfsID + int64(closestDown)
				if _, ok := unmatchedFeed[candidateFeedID]; ok {
					confidence += 25
				}
			}
		}

		if closestUp > 0 {
			if anchor, ok := byUniqueID[observation.ID+int64((closestUp-skipUp)*trackingIDStep)]; ok {
				confidence += 25
				projected := anchor.GtfsID - int64(closestUp)

				if candidateFeedID == 0 {
					candidateFeedID = projected
				} else if candidateFeedID != projected {
					// The two anchors disagree, neither projection can be
					// trusted.
					confidence = 0
					candidateFeedID = 0
				}

				if _, ok := unmatchedFeed[candidateFeedID]; ok && candidateFeedID != 0 {
					confidence += 25
				}
			}
		}

		if candidateFeedID <= 0 || confidence <= 0 {
			leftover = append(leftover, observation)
			continue
		}

		if feedObservation, ok := unmatchedFeed[candidateFeedID]; ok {
			*matched = append(*matched, transit.Vehicle{
				UniqueID:       observation.ID,
				GtfsID:         candidateFeedID,
				SideNo:         feedObservation.Number,
				IsHeuristic:    true,
				HeuristicScore: confidence,
			})
			delete(unmatchedFeed, candidateFeedID)
		} else {
			// The projected vehicle is not out right now, synthesize its
			// painted number from the rule catalogue. Confidence drops hard
			// when not even a rule covers the ID.
			sideNo, haveRule := m.Rules.SideNo(candidateFeedID)
			if !haveRule {
				confidence /= 4
			}

			*matched = append(*matched, transit.Vehicle{
				UniqueID:       observation.ID,
				GtfsID:         candidateFeedID,
				SideNo:         sideNo,
				IsHeuristic:    true,
				HeuristicScore: confidence,
			})
		}
		result.HeuristicCount++
	}

	return leftover
}

func closestTracking(target FeedObservation, candidates []TrackingObservation) (TrackingObservation, []TrackingObservation) {
	ordered := slices.Clone(candidates)
	slices.SortFunc(ordered, func(a, b TrackingObservation) int {
		return compareInt64(a.ID, b.ID)
	})

	bestIndex := 0
	bestDistance := target.Coords.DistanceTo(ordered[0].Coords)
	for i, candidate := range ordered[1:] {
		distance := target.Coords.DistanceTo(candidate.Coords)
		if distance < bestDistance {
			bestDistance = distance
			bestIndex = i + 1
		}
	}

	return ordered[bestIndex], append(ordered[:bestIndex:bestIndex], ordered[bestIndex+1:]...)
}

func closestFeed(target TrackingObservation, candidates []FeedObservation) (FeedObservation, []FeedObservation) {
	ordered := slices.Clone(candidates)
	slices.SortFunc(ordered, func(a, b FeedObservation) int {
		return compareInt64(a.ID, b.ID)
	})

	bestIndex := 0
	bestDistance := target.Coords.DistanceTo(ordered[0].Coords)
	for i, candidate := range ordered[1:] {
		distance := target.Coords.DistanceTo(candidate.Coords)
		if distance < bestDistance {
			bestDistance = distance
			bestIndex = i + 1
		}
	}

	return ordered[bestIndex], append(ordered[:bestIndex:bestIndex], ordered[bestIndex+1:]...)
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	return keys
}
