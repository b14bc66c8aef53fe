package matcher

import (
	"errors"
	"testing"

	"github.com/transitdb/transitdb/pkg/transit"
)

const tramRulesFixture = "$types = <<<'END'\n" +
	"1\t100\tHA\tBombardier NGT6\t2\n" +
	"101\t200\tHB\tStadler Lajkonik\t3\n" +
	"150\t250\tHZ\tOverlapping Series\t3\n" +
	"END\n" +
	"more php below\n"

func TestParseRuleTable(t *testing.T) {
	table, err := ParseRuleTable(tramRulesFixture, transit.VehicleTypeTram)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rule, ok := table.Lookup(50)
	if !ok {
		t.Fatal("expected a rule for feed ID 50")
	}
	if rule.Symbol != "HA" || rule.ModelName != "Bombardier NGT6" {
		t.Errorf("unexpected rule: %+v", rule)
	}

	model, ok := table.Model("Bombardier NGT6")
	if !ok {
		t.Fatal("expected a model for Bombardier NGT6")
	}
	if model.LowFloor != transit.LowFloorPartial || model.Type != transit.VehicleTypeTram {
		t.Errorf("unexpected model: %+v", model)
	}

	if _, ok := table.Lookup(500); ok {
		t.Error("expected no rule for feed ID 500")
	}
}

func TestParseRuleTableFirstMatchWins(t *testing.T) {
	table, err := ParseRuleTable(tramRulesFixture, transit.VehicleTypeTram)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 180 sits in both the HB and the HZ range; table order decides.
	rule, ok := table.Lookup(180)
	if !ok {
		t.Fatal("expected a rule for feed ID 180")
	}
	if rule.Symbol != "HB" {
		t.Errorf("rule symbol = %q, want HB", rule.Symbol)
	}
}

func TestParseRuleTableBusLowFloor(t *testing.T) {
	raw := "<<<'END'\n1\t50\tDA\tSolaris Urbino 12\nEND\n"

	table, err := ParseRuleTable(raw, transit.VehicleTypeBus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	model, ok := table.Model("Solaris Urbino 12")
	if !ok {
		t.Fatal("expected a model for Solaris Urbino 12")
	}
	if model.LowFloor != transit.LowFloorFull {
		t.Errorf("bus low floor = %v, want LowFloorFull", model.LowFloor)
	}
}

func TestParseRuleTableMalformedLine(t *testing.T) {
	raw := "<<<'END'\n1\t100\tHA\nEND\n"

	if _, err := ParseRuleTable(raw, transit.VehicleTypeTram); err == nil {
		t.Fatal("expected an error for a line with missing fields")
	}

	raw = "<<<'END'\nx\t100\tHA\tModel\t2\nEND\n"
	if _, err := ParseRuleTable(raw, transit.VehicleTypeTram); err == nil {
		t.Fatal("expected an error for a non-numeric range bound")
	}
}

func TestParseRuleTableEmpty(t *testing.T) {
	_, err := ParseRuleTable("no markers at all", transit.VehicleTypeTram)
	if !errors.Is(err, ErrEmptyRuleTable) {
		t.Fatalf("expected ErrEmptyRuleTable, got %v", err)
	}

	_, err = ParseRuleTable("<<<'END'\nEND\n", transit.VehicleTypeTram)
	if !errors.Is(err, ErrEmptyRuleTable) {
		t.Fatalf("expected ErrEmptyRuleTable, got %v", err)
	}
}

func TestRuleTableSideNo(t *testing.T) {
	table, err := ParseRuleTable(tramRulesFixture, transit.VehicleTypeTram)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sideNo, ok := table.SideNo(6)
	if !ok || sideNo != "HA006" {
		t.Errorf("SideNo(6) = (%q, %v), want (HA006, true)", sideNo, ok)
	}

	sideNo, ok = table.SideNo(123)
	if !ok || sideNo != "HB123" {
		t.Errorf("SideNo(123) = (%q, %v), want (HB123, true)", sideNo, ok)
	}

	sideNo, ok = table.SideNo(999)
	if ok {
		t.Error("expected no rule for feed ID 999")
	}
	if sideNo != "-999" {
		t.Errorf("SideNo(999) = %q, want -999", sideNo)
	}
}
