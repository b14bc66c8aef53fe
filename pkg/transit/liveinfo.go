package transit

// VehicleLiveInfo is a single position report from a city's live-tracking
// system, keyed by the tracking-space vehicle ID.
type VehicleLiveInfo struct {
	VehicleID int64       `groups:"live" json:"vehicle_id"`
	TripID    int64       `groups:"live" json:"trip_id"`
	Name      string      `groups:"live" json:"name"`
	Coords    Coords      `groups:"live" json:"coords"`
	Heading   int         `groups:"live" json:"heading"`
	Type      VehicleType `groups:"live" json:"type"`
}
