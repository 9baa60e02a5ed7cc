package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/kelvins/geocoder"
)

// Station is the canonical station identity all facet URLs are built from.
// It is resolved once per client lifetime.
type Station struct {
	AreaID    string
	Name      string
	Code      string
	Latitude  float64
	Longitude float64

	// Raw keeps the merged location+station record for diagnostics.
	Raw map[string]any
}

// DisplayCode prefers the short code, falling back to the display name.
func (s *Station) DisplayCode() string {
	if s.Code != "" {
		return s.Code
	}
	return s.Name
}

// ResolveStation resolves a geographic query to a station. Exactly one
// branch executes: explicit area id (unless the "auto" sentinel), explicit
// coordinates, or the configured default coordinates. Having none of the
// three is an ErrInvalidArguments.
func (c *Client) ResolveStation(ctx context.Context, areaID string, lat, lng *float64) (*Station, error) {
	pms := map[string]any{"method": "stationinfo"}
	switch {
	case areaID != "" && areaID != "auto":
		pms["areaid"] = areaID
	case lat != nil && lng != nil:
		pms["lat"] = *lat
		pms["lng"] = *lng
	case c.defaultLat != nil && c.defaultLng != nil:
		pms["lat"] = *c.defaultLat
		pms["lng"] = *c.defaultLng
	default:
		return nil, fmt.Errorf("%w: need an area id or coordinates", ErrInvalidArguments)
	}

	query, err := json.Marshal(pms)
	if err != nil {
		return nil, err
	}
	api := c.APIURL("geong/v1/api", "d7", true)
	api += "&params=" + url.QueryEscape(string(query))

	status, body, err := c.get(ctx, api)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStationLookup, err)
	}
	if body == "" {
		return nil, fmt.Errorf("%w: empty response from %s (status %d)", ErrStationLookup, api, status)
	}

	var dat struct {
		Location map[string]any `json:"location"`
		Data     struct {
			Station map[string]any `json:"station"`
		} `json:"data"`
	}
	if err := json.Unmarshal([]byte(body), &dat); err != nil {
		return nil, fmt.Errorf("%w: %v: %s", ErrStationLookup, err, body)
	}
	if len(dat.Data.Station) == 0 {
		return nil, fmt.Errorf("%w: no station record in response: %s", ErrStationLookup, body)
	}

	// merge location and station records, station fields win
	merged := make(map[string]any, len(dat.Location)+len(dat.Data.Station))
	for k, v := range dat.Location {
		merged[k] = v
	}
	for k, v := range dat.Data.Station {
		merged[k] = v
	}

	st := &Station{
		AreaID: str(merged["areaid"]),
		Name:   str(merged["namecn"]),
		Code:   str(merged["nameen"]),
		Raw:    merged,
	}
	st.Latitude, _ = parseFloat(merged["lat"])
	st.Longitude, _ = parseFloat(merged["lng"])
	return st, nil
}

// SearchAreas runs a free-text lookup against the provider's search
// endpoint and returns area id to display label. Used by the configuration
// surface only, never by the polling core, so it gets the retry/breaker
// treatment a scheduled job must not have.
func (c *Client) SearchAreas(ctx context.Context, name string) (map[string]string, error) {
	api := c.APIURL("search", "toy1", true)
	api += "&cityname=" + url.QueryEscape(name)

	body, err := c.getWithResilience(ctx, api)
	if err != nil {
		return nil, err
	}
	if body == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptyBody, api)
	}

	// the endpoint wraps its JSON array in parentheses
	var refs []struct {
		Ref string `json:"ref"`
	}
	trimmed := strings.Trim(strings.TrimSpace(body), "()")
	if err := json.Unmarshal([]byte(trimmed), &refs); err != nil {
		return nil, fmt.Errorf("search response unparseable: %w", err)
	}

	out := map[string]string{}
	for _, v := range refs {
		if v.Ref == "" {
			continue
		}
		arr := strings.Split(v.Ref, "~")
		areaID := arr[0]
		if len(areaID) > 9 || len(arr) < 10 {
			continue
		}
		out[areaID] = arr[9] + "-" + arr[2]
	}
	return out, nil
}

// GeocodeCoordinates resolves a configured city/country pair to default
// coordinates through Google's geocoding API. Optional convenience for
// deployments that configure an address instead of raw coordinates.
func GeocodeCoordinates(apiKey, city, country string) (float64, float64, error) {
	geocoder.ApiKey = apiKey
	loc, err := geocoder.Geocoding(geocoder.Address{City: city, Country: country})
	if err != nil {
		return 0, 0, fmt.Errorf("geocoding %s, %s: %w", city, country, err)
	}
	return loc.Latitude, loc.Longitude, nil
}
