package krakow

import (
	"context"
	"fmt"
	"strconv"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/rs/zerolog/log"
	"github.com/transitdb/transitdb/pkg/matcher"
	"github.com/transitdb/transitdb/pkg/transit"
	"google.golang.org/protobuf/proto"
)

const ztpBaseURL = "https://gtfs.ztp.krakow.pl/"

const busPositionsFile = "VehiclePositions_A.pb"
const tramPositionsFile = "VehiclePositions_T.pb"

const busScheduleFile = "GTFS_KRK_A.zip"
const tramScheduleFile = "GTFS_KRK_T.zip"

// GtfsRtClient reads the official GTFS-Realtime vehicle position feeds.
type GtfsRtClient struct{}

// GetFeedObservations fetches and decodes one category's position feed.
// Records whose trip ID does not carry the block and trip numbers are
// dropped, they cannot take part in trip matching.
func (c *GtfsRtClient) GetFeedObservations(ctx context.Context, vehicleType transit.VehicleType) ([]matcher.FeedObservation, error) {
	file := ""
	switch vehicleType {
	case transit.VehicleTypeBus:
		file = busPositionsFile
	case transit.VehicleTypeTram:
		file = tramPositionsFile
	default:
		return nil, fmt.Errorf("no position feed for vehicle type %q", vehicleType)
	}

	body, err := httpGetBytesWithRetry(ctx, ztpBaseURL+file)
	if err != nil {
		return nil, err
	}

	feedMessage := &gtfs.FeedMessage{}
	if err := proto.Unmarshal(body, feedMessage); err != nil {
		return nil, err
	}

	var observations []matcher.FeedObservation
	dropped := 0

	for _, entity := range feedMessage.Entity {
		vehiclePosition := entity.GetVehicle()
		if vehiclePosition == nil {
			continue
		}

		descriptor := vehiclePosition.GetVehicle()
		position := vehiclePosition.GetPosition()
		if descriptor == nil || position == nil {
			continue
		}

		id, err := strconv.ParseInt(descriptor.GetId(), 10, 64)
		if err != nil {
			dropped += 1
			continue
		}

		tripKey, ok := matcher.DecodeTripKey(vehiclePosition.GetTrip().GetTripId())
		if !ok {
			dropped += 1
			continue
		}

		observations = append(observations, matcher.FeedObservation{
			ID:      id,
			Number:  descriptor.GetLicensePlate(),
			TripKey: tripKey,
			Coords: transit.Coords{
				Latitude:  float64(position.GetLatitude()),
				Longitude: float64(position.GetLongitude()),
			},
			Timestamp: vehiclePosition.GetTimestamp(),
		})
	}

	if dropped > 0 {
		log.Debug().
			Str("type", string(vehicleType)).
			Int("dropped", dropped).
			Msg("Dropped position feed records with undecodable IDs")
	}

	return observations, nil
}
