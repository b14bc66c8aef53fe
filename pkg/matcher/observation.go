package matcher

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/transitdb/transitdb/pkg/transit"
)

// TrackingObservation is one vehicle as reported by the live-tracking system.
// IDs and trip keys live in the tracking number space.
type TrackingObservation struct {
	ID        int64
	TripKey   int64
	Line      string
	Direction string
	Coords    transit.Coords
}

// FeedObservation is one vehicle as reported by the GTFS-RT feed. IDs and
// trip keys live in the feed number space, unrelated to the tracking one.
type FeedObservation struct {
	ID        int64
	Number    string
	TripKey   int64
	Coords    transit.Coords
	Timestamp uint64
}

// PositionObservation is a position report from the independent third source,
// identified only by a depot label.
type PositionObservation struct {
	Label  string
	Coords transit.Coords
}

// DecodeTripKey collapses a composite feed trip ID of the form
// "block_<N>_trip_<M>" into a single comparable integer. Any other shape is
// not an error, the record simply cannot take part in trip matching.
func DecodeTripKey(feedTripID string) (int64, bool) {
	parts := strings.Split(feedTripID, "_")
	if len(parts) < 4 || parts[0] != "block" || parts[2] != "trip" {
		return 0, false
	}

	block, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, false
	}

	trip, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil {
		return 0, false
	}

	return 4096*block + trip, true
}

var vehicleLabelRegex = regexp.MustCompile(`^[PBDHR][A-Z][0-9]{3}$`)

var busDepots = []byte{'B', 'P', 'D'}
var tramDepots = []byte{'H', 'R'}

// VehicleLabel is a decoded depot label: depot marking, model marking and the
// painted vehicle number.
type VehicleLabel struct {
	Depot  byte
	Model  byte
	Number int64
	Type   transit.VehicleType
}

func (l VehicleLabel) String() string {
	return fmt.Sprintf("%c%c%03d", l.Depot, l.Model, l.Number)
}

// ParseVehicleLabel decodes a 5 character depot label. The first character
// identifies the depot and with it the vehicle category, the trailing three
// digits are the vehicle number.
func ParseVehicleLabel(label string) (VehicleLabel, bool) {
	if !vehicleLabelRegex.MatchString(label) {
		return VehicleLabel{}, false
	}

	number, err := strconv.ParseInt(label[2:5], 10, 64)
	if err != nil {
		return VehicleLabel{}, false
	}

	decoded := VehicleLabel{
		Depot:  label[0],
		Model:  label[1],
		Number: number,
	}

	for _, depot := range busDepots {
		if decoded.Depot == depot {
			decoded.Type = transit.VehicleTypeBus
		}
	}
	for _, depot := range tramDepots {
		if decoded.Depot == depot {
			decoded.Type = transit.VehicleTypeTram
		}
	}

	return decoded, true
}
