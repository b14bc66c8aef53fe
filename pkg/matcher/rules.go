package matcher

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/transitdb/transitdb/pkg/transit"
)

// MatchRule maps a closed range of feed IDs onto a vehicle model. The symbol
// is the letter prefix painted on the vehicles of that series.
type MatchRule struct {
	FromID    int64
	ToID      int64
	Symbol    string
	ModelName string
}

// RuleTable is an immutable catalogue of match rules built once per
// resolution run. Ranges may overlap; the first rule in table order wins.
type RuleTable struct {
	rules  []MatchRule
	models map[string]transit.VehicleModel
}

const ruleTableStartMarker = "<<<'END'"
const ruleTableEndMarker = "END"

var ErrEmptyRuleTable = errors.New("match rule catalogue contained no rules")

// ParseRuleTable reads the external match-rule catalogue. Payload lines sit
// between a start and an end marker and carry tab separated fields:
// fromId, toId, symbol, model name and an optional low floor code.
// Buses do not report a low floor code, the whole fleet is low floor.
func ParseRuleTable(raw string, vehicleType transit.VehicleType) (*RuleTable, error) {
	table := &RuleTable{
		models: map[string]transit.VehicleModel{},
	}

	gotStart := false
	for _, line := range strings.Split(raw, "\n") {
		if !gotStart {
			if strings.Contains(line, ruleTableStartMarker) {
				gotStart = true
			}

			continue
		}

		if strings.Contains(line, ruleTableEndMarker) {
			break
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 4 {
			return nil, fmt.Errorf("match rule line %q: expected at least 4 fields", line)
		}

		fromID, err := strconv.ParseInt(strings.TrimSpace(fields[0]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("match rule line %q: %w", line, err)
		}

		toID, err := strconv.ParseInt(strings.TrimSpace(fields[1]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("match rule line %q: %w", line, err)
		}

		modelName := strings.TrimSpace(fields[3])

		lowFloor := transit.LowFloorUnknown
		if len(fields) > 4 {
			code, err := strconv.Atoi(strings.TrimSpace(fields[4]))
			if err != nil {
				return nil, fmt.Errorf("match rule line %q: %w", line, err)
			}
			lowFloor = transit.LowFloor(code)
		}
		if vehicleType == transit.VehicleTypeBus {
			lowFloor = transit.LowFloorFull
		}

		table.rules = append(table.rules, MatchRule{
			FromID:    fromID,
			ToID:      toID,
			Symbol:    strings.TrimSpace(fields[2]),
			ModelName: modelName,
		})

		if _, ok := table.models[modelName]; !ok {
			table.models[modelName] = transit.VehicleModel{
				Name:     modelName,
				LowFloor: lowFloor,
				Type:     vehicleType,
			}
		}
	}

	if len(table.rules) == 0 {
		return nil, ErrEmptyRuleTable
	}

	return table, nil
}

// Lookup returns the first rule whose range contains the feed ID.
func (t *RuleTable) Lookup(feedID int64) (MatchRule, bool) {
	for _, rule := range t.rules {
		if rule.FromID <= feedID && rule.ToID >= feedID {
			return rule, true
		}
	}

	return MatchRule{}, false
}

// Model returns the vehicle model registered under a rule's model name.
func (t *RuleTable) Model(modelName string) (transit.VehicleModel, bool) {
	model, ok := t.models[modelName]
	return model, ok
}

// SideNo synthesizes the canonical painted number for a feed ID, used when a
// vehicle was placed heuristically and no feed record carries its real one.
func (t *RuleTable) SideNo(feedID int64) (string, bool) {
	rule, ok := t.Lookup(feedID)
	symbol := rule.Symbol
	if !ok {
		symbol = "-"
	}

	return fmt.Sprintf("%s%03d", symbol, feedID), ok
}
