package wroclaw

import (
	"testing"

	"github.com/transitdb/transitdb/pkg/transit"
)

func TestDecapsify(t *testing.T) {
	testCases := []struct {
		input string
		want  string
	}{
		{"DWORZEC GŁÓWNY", "Dworzec Główny"},
		{"PL. GRUNWALDZKI", "Pl. Grunwaldzki"},
		{"Rynek", "Rynek"},
		{"pl. Jana Pawła II", "pl. Jana Pawła II"},
	}

	for _, testCase := range testCases {
		if got := decapsify(testCase.input); got != testCase.want {
			t.Errorf("decapsify(%q) = %q, want %q", testCase.input, got, testCase.want)
		}
	}
}

func TestStopTypes(t *testing.T) {
	if types := stopTypes("b"); len(types) != 1 || types[0] != transit.VehicleTypeBus {
		t.Errorf("stopTypes(b) = %v", types)
	}
	if types := stopTypes("t"); len(types) != 1 || types[0] != transit.VehicleTypeTram {
		t.Errorf("stopTypes(t) = %v", types)
	}
	if types := stopTypes("o"); len(types) != 2 {
		t.Errorf("stopTypes(o) = %v, want both categories", types)
	}
	if types := stopTypes("x"); types != nil {
		t.Errorf("stopTypes(x) = %v, want nil", types)
	}
}

func TestVehicleModelDecoding(t *testing.T) {
	vehicle := impkVehicle{VehicleID: 2505, FloorType: "l", Model: "Skoda 16T", Type: impkTypeTram}

	if vehicle.LowFloor() != transit.LowFloorFull {
		t.Errorf("low floor = %v, want full", vehicle.LowFloor())
	}
	if vehicle.VehicleType() != transit.VehicleTypeTram {
		t.Errorf("type = %v, want tram", vehicle.VehicleType())
	}

	unknown := impkVehicle{FloorType: "?", Type: 99}
	if unknown.LowFloor() != transit.LowFloorUnknown {
		t.Errorf("low floor = %v, want unknown", unknown.LowFloor())
	}
	if unknown.VehicleType() != transit.VehicleTypeNone {
		t.Errorf("type = %v, want none", unknown.VehicleType())
	}
}
