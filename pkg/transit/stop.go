package transit

type Stop struct {
	GtfsID    string      `groups:"basic" json:"gtfs_id" bson:"gtfsid"`
	GroupID   string      `groups:"basic" json:"group_id" bson:"groupid"`
	Name      string      `groups:"basic" json:"name" bson:"name"`
	Latitude  float64     `groups:"basic" json:"latitude" bson:"latitude"`
	Longitude float64     `groups:"basic" json:"longitude" bson:"longitude"`
	Type      VehicleType `groups:"basic" json:"type" bson:"type"`
}

// StopGroup is a set of stop posts sharing one passenger-facing name, the
// granularity the search endpoints work at.
type StopGroup struct {
	GroupID string        `groups:"basic" json:"group_id" bson:"groupid"`
	Name    string        `groups:"basic" json:"name" bson:"name"`
	Types   []VehicleType `groups:"basic" json:"types" bson:"types"`
}
