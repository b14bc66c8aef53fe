package krakow

import (
	"context"
	"fmt"
	"time"

	"github.com/transitdb/transitdb/pkg/cachedfetch"
	"github.com/transitdb/transitdb/pkg/matcher"
	"github.com/transitdb/transitdb/pkg/transit"
)

const busMatchRulesURL = "https://raw.githubusercontent.com/domints/mpk-ttss-mapping/master/lib/BusTypes.php"
const tramMatchRulesURL = "https://raw.githubusercontent.com/domints/mpk-ttss-mapping/master/lib/TramTypes.php"

// The community catalogue changes rarely, a daily refresh is plenty.
const matchRulesTTL = 24 * time.Hour

// MatchRulesClient fetches the community maintained catalogue that maps feed
// ID ranges to side number prefixes and vehicle models.
type MatchRulesClient struct {
	Cache *cachedfetch.Client
}

func (c *MatchRulesClient) GetRuleTable(ctx context.Context, vehicleType transit.VehicleType) (*matcher.RuleTable, error) {
	url := ""
	switch vehicleType {
	case transit.VehicleTypeBus:
		url = busMatchRulesURL
	case transit.VehicleTypeTram:
		url = tramMatchRulesURL
	default:
		return nil, fmt.Errorf("no match rule catalogue for vehicle type %q", vehicleType)
	}

	cacheKey := fmt.Sprintf("krakow:matchrules:%s", vehicleType)
	raw, err := c.Cache.GetString(ctx, cacheKey, matchRulesTTL, func(ctx context.Context) (string, error) {
		return httpGetString(ctx, url)
	})
	if err != nil {
		return nil, err
	}

	return matcher.ParseRuleTable(raw, vehicleType)
}
