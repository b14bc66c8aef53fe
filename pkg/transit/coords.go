package transit

import "math"

const earthRadiusMetres = 6371000

type Coords struct {
	Latitude  float64 `groups:"basic" json:"latitude"`
	Longitude float64 `groups:"basic" json:"longitude"`
}

// DistanceTo returns the great-circle distance between two points in metres.
func (c Coords) DistanceTo(other Coords) float64 {
	phi1 := c.Latitude * math.Pi / 180
	phi2 := other.Latitude * math.Pi / 180
	deltaPhi := (other.Latitude - c.Latitude) * math.Pi / 180
	deltaLambda := (other.Longitude - c.Longitude) * math.Pi / 180

	a := math.Sin(deltaPhi/2)*math.Sin(deltaPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(deltaLambda/2)*math.Sin(deltaLambda/2)
	c2 := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMetres * c2
}

func (c Coords) IsZero() bool {
	return c.Latitude == 0 && c.Longitude == 0
}
