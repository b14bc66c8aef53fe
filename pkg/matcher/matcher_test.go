package matcher

import (
	"errors"
	"testing"

	"github.com/transitdb/transitdb/pkg/transit"
)

func testRules(t *testing.T) *RuleTable {
	t.Helper()

	raw := "<<<'END'\n1\t600\tDA\tTest Model\nEND\n"
	table, err := ParseRuleTable(raw, transit.VehicleTypeBus)
	if err != nil {
		t.Fatalf("building rule table: %v", err)
	}

	return table
}

func findVehicle(t *testing.T, vehicles []transit.Vehicle, uniqueID int64) transit.Vehicle {
	t.Helper()

	for _, vehicle := range vehicles {
		if vehicle.UniqueID == uniqueID {
			return vehicle
		}
	}

	t.Fatalf("no vehicle with unique ID %d in %+v", uniqueID, vehicles)
	return transit.Vehicle{}
}

func TestMatchDirect(t *testing.T) {
	m := New(testRules(t), transit.VehicleTypeBus)

	tracking := []TrackingObservation{
		{ID: 100, TripKey: 100},
	}
	feed := []FeedObservation{
		{ID: 5, Number: "DA005", TripKey: 98},
	}

	result, err := m.Match(tracking, feed, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Offset != 2 {
		t.Errorf("offset = %d, want 2", result.Offset)
	}
	if result.DirectCount != 1 || result.HeuristicCount != 0 {
		t.Errorf("counts = direct %d heuristic %d, want 1/0", result.DirectCount, result.HeuristicCount)
	}

	vehicle := findVehicle(t, result.Vehicles, 100)
	if vehicle.GtfsID != 5 || vehicle.SideNo != "DA005" {
		t.Errorf("unexpected identity: %+v", vehicle)
	}
	if vehicle.IsHeuristic {
		t.Error("direct match must not be heuristic")
	}
}

func TestMatchNoObservations(t *testing.T) {
	m := New(testRules(t), transit.VehicleTypeBus)

	_, err := m.Match(nil, []FeedObservation{{ID: 5, TripKey: 98}}, nil, nil)
	if !errors.Is(err, ErrNoObservations) {
		t.Fatalf("expected ErrNoObservations, got %v", err)
	}
}

func TestMatchAmbiguousOffset(t *testing.T) {
	m := New(testRules(t), transit.VehicleTypeBus)

	tracking := []TrackingObservation{
		{ID: 100, TripKey: 10},
	}
	feed := []FeedObservation{
		{ID: 5, TripKey: 4},
		{ID: 7, TripKey: 6},
	}

	_, err := m.Match(tracking, feed, nil, nil)
	if !errors.Is(err, ErrAmbiguousOffset) {
		t.Fatalf("expected ErrAmbiguousOffset, got %v", err)
	}
}

func TestMatchProximityDisambiguation(t *testing.T) {
	m := New(testRules(t), transit.VehicleTypeBus)

	// Three tracking vehicles share one trip with a single feed vehicle; the
	// geographically closest one wins and the score reflects the crowd size.
	tracking := []TrackingObservation{
		{ID: 100, TripKey: 100, Coords: transit.Coords{Latitude: 50.07, Longitude: 19.94}},
		{ID: 102, TripKey: 100, Coords: transit.Coords{Latitude: 50.060001, Longitude: 19.94}},
		{ID: 104, TripKey: 100, Coords: transit.Coords{Latitude: 50.05, Longitude: 19.94}},
	}
	feed := []FeedObservation{
		{ID: 5, Number: "DA005", TripKey: 98, Coords: transit.Coords{Latitude: 50.06, Longitude: 19.94}},
	}

	result, err := m.Match(tracking, feed, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	vehicle := findVehicle(t, result.Vehicles, 102)
	if vehicle.GtfsID != 5 || vehicle.SideNo != "DA005" {
		t.Errorf("unexpected identity: %+v", vehicle)
	}
	if !vehicle.IsHeuristic {
		t.Error("proximity match must be heuristic")
	}
	if vehicle.HeuristicScore != 100/3+10 {
		t.Errorf("score = %d, want %d", vehicle.HeuristicScore, 100/3+10)
	}

	if result.HeuristicCount != 1 {
		t.Errorf("heuristic count = %d, want 1", result.HeuristicCount)
	}
	// The two losing tracking vehicles cannot be placed by anything else.
	if result.FailedCount != 2 {
		t.Errorf("failed count = %d, want 2", result.FailedCount)
	}
}

func TestMatchAdjacencyBothAnchors(t *testing.T) {
	m := New(testRules(t), transit.VehicleTypeBus)

	// Direct matches at tracking 1000 and 1004 sandwich the unmatched 1002;
	// both projections agree on feed ID 500 and the feed vehicle is out, full
	// score.
	tracking := []TrackingObservation{
		{ID: 1000, TripKey: 10},
		{ID: 1004, TripKey: 12},
		{ID: 1002, TripKey: 50},
	}
	feed := []FeedObservation{
		{ID: 499, Number: "DA499", TripKey: 10},
		{ID: 501, Number: "DA501", TripKey: 12},
		{ID: 500, Number: "DA500", TripKey: 60},
	}

	result, err := m.Match(tracking, feed, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Offset != 0 {
		t.Fatalf("offset = %d, want 0", result.Offset)
	}
	if result.DirectCount != 2 {
		t.Errorf("direct count = %d, want 2", result.DirectCount)
	}

	vehicle := findVehicle(t, result.Vehicles, 1002)
	if vehicle.GtfsID != 500 || vehicle.SideNo != "DA500" {
		t.Errorf("unexpected identity: %+v", vehicle)
	}
	if !vehicle.IsHeuristic || vehicle.HeuristicScore != 100 {
		t.Errorf("score = %d, want 100", vehicle.HeuristicScore)
	}
}

func TestMatchAdjacencySynthesizedSideNo(t *testing.T) {
	m := New(testRules(t), transit.VehicleTypeBus)

	// Same sandwich, but feed ID 500 is not reporting. The side number comes
	// from the rule catalogue and the confidence only counts the anchors.
	tracking := []TrackingObservation{
		{ID: 1000, TripKey: 10},
		{ID: 1004, TripKey: 12},
		{ID: 1002, TripKey: 50},
	}
	feed := []FeedObservation{
		{ID: 499, Number: "DA499", TripKey: 10},
		{ID: 501, Number: "DA501", TripKey: 12},
	}

	result, err := m.Match(tracking, feed, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	vehicle := findVehicle(t, result.Vehicles, 1002)
	if vehicle.GtfsID != 500 || vehicle.SideNo != "DA500" {
		t.Errorf("unexpected identity: %+v", vehicle)
	}
	if vehicle.HeuristicScore != 50 {
		t.Errorf("score = %d, want 50", vehicle.HeuristicScore)
	}
}

func TestMatchAdjacencyDisagreeingAnchors(t *testing.T) {
	m := New(testRules(t), transit.VehicleTypeBus)

	// The down anchor projects feed ID 500, the up anchor projects 502.
	// Neither projection is trustworthy and the vehicle stays unmatched.
	tracking := []TrackingObservation{
		{ID: 1000, TripKey: 10},
		{ID: 1004, TripKey: 12},
		{ID: 1002, TripKey: 50},
	}
	feed := []FeedObservation{
		{ID: 499, Number: "DA499", TripKey: 10},
		{ID: 503, Number: "DA503", TripKey: 12},
	}

	result, err := m.Match(tracking, feed, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, vehicle := range result.Vehicles {
		if vehicle.UniqueID == 1002 {
			t.Fatalf("vehicle 1002 must stay unmatched, got %+v", vehicle)
		}
	}
	if result.FailedCount != 1 {
		t.Errorf("failed count = %d, want 1", result.FailedCount)
	}
}

func TestMatchAdjacencyUsesPreviousAnchors(t *testing.T) {
	m := New(testRules(t), transit.VehicleTypeBus)

	// The up anchor comes from a stored non-heuristic identity of a vehicle
	// that is not out right now.
	tracking := []TrackingObservation{
		{ID: 1000, TripKey: 10},
		{ID: 1006, TripKey: 13},
		{ID: 1002, TripKey: 50},
	}
	feed := []FeedObservation{
		{ID: 499, Number: "DA499", TripKey: 10},
		{ID: 502, Number: "DA502", TripKey: 13},
	}
	previous := []transit.Vehicle{
		{UniqueID: 1004, GtfsID: 501, SideNo: "DA501", Model: transit.VehicleModel{Type: transit.VehicleTypeBus}},
	}

	result, err := m.Match(tracking, feed, nil, previous)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	vehicle := findVehicle(t, result.Vehicles, 1002)
	if vehicle.GtfsID != 500 || vehicle.SideNo != "DA500" {
		t.Errorf("unexpected identity: %+v", vehicle)
	}
	if vehicle.HeuristicScore != 50 {
		t.Errorf("score = %d, want 50", vehicle.HeuristicScore)
	}
}

func TestMatchAdjacencyAnchorGapStaysUnmatched(t *testing.T) {
	m := New(testRules(t), transit.VehicleTypeBus)

	// The neighbour one step down belongs to an older numbering block and is
	// skipped; the accepted anchor sits three steps down, but the re-indexed
	// lookup lands on an ID nothing is known for. No identity may be invented
	// from that gap.
	tracking := []TrackingObservation{
		{ID: 2420, TripKey: 10},
		{ID: 2418, TripKey: 12},
		{ID: 2396, TripKey: 50},
	}
	feed := []FeedObservation{
		{ID: 1009, Number: "DA1009", TripKey: 10},
		{ID: 1008, Number: "DA1008", TripKey: 12},
		{ID: 3, Number: "DA003", TripKey: 70},
	}
	previous := []transit.Vehicle{
		{UniqueID: 2394, GtfsID: 10, SideNo: "DA010", Model: transit.VehicleModel{Type: transit.VehicleTypeBus}},
		{UniqueID: 2390, GtfsID: 900, SideNo: "DA900", Model: transit.VehicleModel{Type: transit.VehicleTypeBus}},
	}

	result, err := m.Match(tracking, feed, nil, previous)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, vehicle := range result.Vehicles {
		if vehicle.UniqueID == 2396 {
			t.Fatalf("vehicle 2396 must stay unmatched, got %+v", vehicle)
		}
		if vehicle.GtfsID == 3 {
			t.Fatalf("feed vehicle 3 must stay unconsumed, got %+v", vehicle)
		}
	}
	if result.FailedCount != 1 {
		t.Errorf("failed count = %d, want 1", result.FailedCount)
	}
}

func TestMatchGeoFallback(t *testing.T) {
	m := New(testRules(t), transit.VehicleTypeBus)

	// Tracking 200 is too far from any anchor for adjacency, but exactly one
	// depot position sits within the proximity threshold.
	tracking := []TrackingObservation{
		{ID: 100, TripKey: 100, Coords: transit.Coords{Latitude: 50.06, Longitude: 19.94}},
		{ID: 102, TripKey: 103, Coords: transit.Coords{Latitude: 50.06, Longitude: 19.94}},
		{ID: 104, TripKey: 110, Coords: transit.Coords{Latitude: 50.06, Longitude: 19.94}},
		{ID: 200, TripKey: 555, Coords: transit.Coords{Latitude: 50.1, Longitude: 20.0}},
	}
	feed := []FeedObservation{
		{ID: 5, Number: "DA005", TripKey: 98},
		{ID: 6, Number: "DA006", TripKey: 101},
		{ID: 7, Number: "DA007", TripKey: 108},
	}
	positions := []PositionObservation{
		{Label: "BA010", Coords: transit.Coords{Latitude: 50.1, Longitude: 20.0}},
		{Label: "BA020", Coords: transit.Coords{Latitude: 51.0, Longitude: 21.0}},
	}

	result, err := m.Match(tracking, feed, positions, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	vehicle := findVehicle(t, result.Vehicles, 200)
	if vehicle.GtfsID != 10 || vehicle.SideNo != "BA010" {
		t.Errorf("unexpected identity: %+v", vehicle)
	}
	if !vehicle.IsHeuristic || vehicle.HeuristicScore != 80 {
		t.Errorf("score = %d, want 80", vehicle.HeuristicScore)
	}
}

func TestMatchGeoFallbackNeedsExactlyOneCandidate(t *testing.T) {
	m := New(testRules(t), transit.VehicleTypeBus)

	tracking := []TrackingObservation{
		{ID: 100, TripKey: 100, Coords: transit.Coords{Latitude: 50.06, Longitude: 19.94}},
		{ID: 102, TripKey: 103, Coords: transit.Coords{Latitude: 50.06, Longitude: 19.94}},
		{ID: 104, TripKey: 110, Coords: transit.Coords{Latitude: 50.06, Longitude: 19.94}},
		{ID: 200, TripKey: 555, Coords: transit.Coords{Latitude: 50.1, Longitude: 20.0}},
	}
	feed := []FeedObservation{
		{ID: 5, Number: "DA005", TripKey: 98},
		{ID: 6, Number: "DA006", TripKey: 101},
		{ID: 7, Number: "DA007", TripKey: 108},
	}
	// Two depot vehicles parked next to each other, no way to tell which one
	// the tracking record belongs to.
	positions := []PositionObservation{
		{Label: "BA010", Coords: transit.Coords{Latitude: 50.1, Longitude: 20.0}},
		{Label: "BA011", Coords: transit.Coords{Latitude: 50.100001, Longitude: 20.0}},
	}

	result, err := m.Match(tracking, feed, positions, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, vehicle := range result.Vehicles {
		if vehicle.UniqueID == 200 {
			t.Fatalf("vehicle 200 must stay unmatched, got %+v", vehicle)
		}
	}
	if result.FailedCount != 1 {
		t.Errorf("failed count = %d, want 1", result.FailedCount)
	}
}

func TestMatchManyToManyGroupStaysUnresolved(t *testing.T) {
	m := New(testRules(t), transit.VehicleTypeBus)

	tracking := []TrackingObservation{
		{ID: 100, TripKey: 100},
		{ID: 102, TripKey: 100},
		{ID: 104, TripKey: 103},
	}
	feed := []FeedObservation{
		{ID: 5, Number: "DA005", TripKey: 98},
		{ID: 6, Number: "DA006", TripKey: 98},
		{ID: 7, Number: "DA007", TripKey: 101},
	}

	result, err := m.Match(tracking, feed, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.UnresolvedGroups != 1 {
		t.Errorf("unresolved groups = %d, want 1", result.UnresolvedGroups)
	}
	for _, vehicle := range result.Vehicles {
		if vehicle.UniqueID == 100 || vehicle.UniqueID == 102 {
			t.Fatalf("many-to-many members must stay unmatched, got %+v", vehicle)
		}
	}
}
