package krakow

import (
	"testing"
)

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

func TestTrackingObservations(t *testing.T) {
	info := &ttssVehiclesInfo{
		Vehicles: []ttssVehicle{
			{
				ID:        "100",
				TripID:    "8192",
				Name:      "52 Czerwone Maki P+R",
				Latitude:  int64Ptr(180221400),
				Longitude: int64Ptr(71762400),
				Heading:   intPtr(90),
			},
			// Deleted records carry no usable payload.
			{ID: "102", IsDeleted: true},
			// Missing position.
			{ID: "104", TripID: "8200", Name: "1 Salwator"},
			// Missing trip.
			{ID: "106", Name: "3 Nowy Bieżanów", Latitude: int64Ptr(180221400), Longitude: int64Ptr(71762400)},
			// Non-numeric tracking ID.
			{ID: "abc", TripID: "8300", Name: "8 Borek Fałęcki", Latitude: int64Ptr(180221400), Longitude: int64Ptr(71762400)},
		},
	}

	observations := info.TrackingObservations()
	if len(observations) != 1 {
		t.Fatalf("observations = %d, want 1", len(observations))
	}

	observation := observations[0]
	if observation.ID != 100 || observation.TripKey != 8192 {
		t.Errorf("unexpected observation: %+v", observation)
	}
	if observation.Line != "52" || observation.Direction != "Czerwone" {
		t.Errorf("line/direction = %q/%q", observation.Line, observation.Direction)
	}

	// 180221400 milliarcseconds is 50.0615 degrees.
	if observation.Coords.Latitude < 50.06 || observation.Coords.Latitude > 50.07 {
		t.Errorf("latitude = %f, want about 50.06", observation.Coords.Latitude)
	}
	if observation.Coords.Longitude < 19.93 || observation.Coords.Longitude > 19.94 {
		t.Errorf("longitude = %f, want about 19.93", observation.Coords.Longitude)
	}
}
