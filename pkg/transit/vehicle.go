package transit

type VehicleType string

const (
	VehicleTypeNone VehicleType = ""
	VehicleTypeBus  VehicleType = "bus"
	VehicleTypeTram VehicleType = "tram"
)

type LowFloor int

const (
	LowFloorUnknown LowFloor = iota
	LowFloorNone
	LowFloorPartial
	LowFloorFull
)

type VehicleModel struct {
	Name     string      `groups:"basic" json:"name"`
	LowFloor LowFloor    `groups:"basic" json:"low_floor"`
	Type     VehicleType `groups:"basic" json:"type"`
}

// Vehicle is a resolved identity linking a live-tracking vehicle ID to the ID
// the city publishes in its GTFS feeds. UniqueID is the tracking-space ID and
// is the durable key the rest of the platform refers to.
type Vehicle struct {
	UniqueID int64        `groups:"basic" json:"unique_id" bson:"uniqueid"`
	GtfsID   int64        `groups:"basic" json:"gtfs_id" bson:"gtfsid"`
	SideNo   string       `groups:"basic" json:"side_no" bson:"sideno"`
	Model    VehicleModel `groups:"basic" json:"model" bson:"model"`

	// IsHeuristic marks identities that were not obtained from a direct 1:1
	// trip match. HeuristicScore (0-100) only carries meaning when set.
	IsHeuristic    bool `groups:"basic" json:"is_heuristic" bson:"isheuristic"`
	HeuristicScore int  `groups:"basic" json:"heuristic_score" bson:"heuristicscore"`
}

type VehicleWithLiveInfo struct {
	Vehicle `groups:"basic"`

	LiveInfo *VehicleLiveInfo `groups:"live" json:"live_info"`
}
