package matcher

import (
	"errors"
	"fmt"
)

// ErrAmbiguousOffset aborts a resolution run: two or more offsets explain the
// observed trips equally well so no mapping can be trusted this cycle.
var ErrAmbiguousOffset = errors.New("ambiguous trip offset")

// FindBestOffset determines the integer offset between the feed and tracking
// trip numbering schemes: the one where the largest number of feed trip keys
// have a tracking counterpart at feedKey+offset.
//
// Candidates are exactly the pairwise differences between the two key sets -
// any other offset cannot match a single pair. Cost is O(len(tracking) *
// len(feed)) over distinct trip keys, which is small compared to vehicle
// counts.
//
// An empty side yields ok=false with no error; the caller can still run the
// phases that do not need an offset. A tie for the best match count yields
// ErrAmbiguousOffset.
func FindBestOffset(trackingTripKeys map[int64][]TrackingObservation, feedTripKeys map[int64][]FeedObservation) (int64, bool, error) {
	if len(trackingTripKeys) == 0 || len(feedTripKeys) == 0 {
		return 0, false, nil
	}

	possibleOffsets := map[int64]struct{}{}
	for trackingKey := range trackingTripKeys {
		for feedKey := range feedTripKeys {
			possibleOffsets[trackingKey-feedKey] = struct{}{}
		}
	}

	bestMatch := 0
	bestOffset := int64(0)
	options := 0
	for offset := range possibleOffsets {
		matchCount := 0
		for feedKey := range feedTripKeys {
			if _, ok := trackingTripKeys[feedKey+offset]; ok {
				matchCount++
			}
		}

		if matchCount > bestMatch {
			bestOffset = offset
			bestMatch = matchCount
			options = 1
		} else if matchCount == bestMatch {
			options++
		}
	}

	if options != 1 {
		return 0, false, fmt.Errorf("%w: %d offsets share the best match count of %d", ErrAmbiguousOffset, options, bestMatch)
	}

	return bestOffset, true, nil
}
