package wroclaw

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/transitdb/transitdb/pkg/cachedfetch"
	"github.com/transitdb/transitdb/pkg/transit"
)

const impkAPIURL = "https://62.233.178.84:8088/mobile"

// IMPKClient talks to the mobile API of the Wroclaw operator. Every call is
// the same endpoint with a different function parameter.
type IMPKClient struct {
	Cache *cachedfetch.Client
}

type impkVehicle struct {
	VehicleID int64  `json:"v"`
	FloorType string `json:"f"`
	Model     string `json:"m"`
	Type      int    `json:"a"`
}

type impkStop struct {
	Name   string         `json:"n"`
	StopID string         `json:"s"`
	Type   string         `json:"t"`
	Posts  []impkStopPost `json:"p"`
}

type impkStopPost struct {
	PostID    string  `json:"s"`
	Longitude float64 `json:"x"`
	Latitude  float64 `json:"y"`
	Type      string  `json:"t"`
}

const (
	impkTypeBus  = 1
	impkTypeTram = 2
)

func (c *IMPKClient) GetVehicles(ctx context.Context) ([]impkVehicle, error) {
	return impkCall[[]impkVehicle](ctx, c, "getVehiclesInfo", time.Hour)
}

func (c *IMPKClient) GetStops(ctx context.Context) ([]impkStop, error) {
	return impkCall[[]impkStop](ctx, c, "getPosts", time.Hour)
}

func impkCall[T any](ctx context.Context, c *IMPKClient, function string, ttl time.Duration) (T, error) {
	cacheKey := fmt.Sprintf("wroclaw:impk:%s", function)

	return cachedfetch.GetJSON[T](ctx, c.Cache, cacheKey, ttl, func(ctx context.Context) (string, error) {
		requestURL := impkAPIURL + "?" + url.Values{"function": {function}}.Encode()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return "", err
		}

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return "", err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("iMPK %s returned %s", function, resp.Status)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", err
		}

		// Reject bodies that are not JSON before they poison the cache.
		if !json.Valid(body) {
			return "", fmt.Errorf("iMPK %s returned a non-JSON body", function)
		}

		return string(body), nil
	})
}

func (v impkVehicle) LowFloor() transit.LowFloor {
	switch v.FloorType {
	case "h":
		return transit.LowFloorNone
	case "p":
		return transit.LowFloorPartial
	case "l":
		return transit.LowFloorFull
	}

	return transit.LowFloorUnknown
}

func (v impkVehicle) VehicleType() transit.VehicleType {
	switch v.Type {
	case impkTypeBus:
		return transit.VehicleTypeBus
	case impkTypeTram:
		return transit.VehicleTypeTram
	}

	return transit.VehicleTypeNone
}

// stopTypes decodes the stop type marker. "o" marks a shared bus and tram
// stop.
func stopTypes(marker string) []transit.VehicleType {
	switch marker {
	case "b":
		return []transit.VehicleType{transit.VehicleTypeBus}
	case "t":
		return []transit.VehicleType{transit.VehicleTypeTram}
	case "o":
		return []transit.VehicleType{transit.VehicleTypeBus, transit.VehicleTypeTram}
	}

	return nil
}
