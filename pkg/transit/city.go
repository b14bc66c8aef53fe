package transit

import "strings"

type City string

const (
	CityKrakow  City = "krakow"
	CityWroclaw City = "wroclaw"
)

var AllCities = []City{CityKrakow, CityWroclaw}

// ParseCity maps a user supplied city name onto a known City. Matching is
// case-insensitive; unknown names return false.
func ParseCity(value string) (City, bool) {
	switch strings.ToLower(value) {
	case "krakow", "kraków":
		return CityKrakow, true
	case "wroclaw", "wrocław":
		return CityWroclaw, true
	}

	return "", false
}
