package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/i474232898/tianqi-aggregator/internal/extract"
	"github.com/i474232898/tianqi-aggregator/internal/store"
)

// FetchResult is one facet fetch's outcome. A non-200 answer fills
// DegradedBody and parses nothing, so the previous structured values stay
// untouched; a 200 answer fills Facets with whatever markers were present.
type FetchResult struct {
	Facets       map[store.Facet]any
	DegradedBody string
}

func (r *FetchResult) put(f store.Facet, v any) {
	if r.Facets == nil {
		r.Facets = make(map[store.Facet]any)
	}
	r.Facets[f] = v
}

// fetchPage GETs a facet page and applies the shared degraded/empty-body
// handling. ok is false when the caller should not parse the body.
func (c *Client) fetchPage(ctx context.Context, api string) (body string, res FetchResult, ok bool, err error) {
	status, body, err := c.get(ctx, api)
	if err != nil {
		return "", res, false, err
	}
	if body == "" {
		return "", res, false, fmt.Errorf("%w: %s", ErrEmptyBody, api)
	}
	if status != http.StatusOK {
		res.DegradedBody = body
		return body, res, false, nil
	}
	return body, res, true, nil
}

// FetchSummary pulls the current-conditions page carrying both the dataSK
// record and the dataZS living indices.
func (c *Client) FetchSummary(ctx context.Context, areaID string) (FetchResult, error) {
	api := c.APIURL("weather_index/"+areaID+".html", "d1", true)
	body, res, ok, err := c.fetchPage(ctx, api)
	if !ok {
		return res, err
	}

	sk, err := extract.Object(body, extract.DataSK)
	if err != nil {
		res.DegradedBody = body
		return res, err
	}
	if sk != nil {
		res.put(store.FacetCurrent, sk)
	}

	zs, err := extract.Object(body, extract.DataZS)
	if err != nil {
		res.DegradedBody = body
		return res, err
	}
	if zs != nil {
		inner, _ := zs["zs"].(map[string]any)
		if inner == nil {
			inner = map[string]any{}
		}
		res.put(store.FacetIndices, inner)
	}
	return res, nil
}

// FetchAlarms pulls the active weather alarm list.
func (c *Client) FetchAlarms(ctx context.Context, areaID string) (FetchResult, error) {
	api := c.APIURL("dingzhi/"+areaID+".html", "d1", true)
	body, res, ok, err := c.fetchPage(ctx, api)
	if !ok {
		return res, err
	}

	obj, err := extract.Object(body, extract.AlarmDZ)
	if err != nil {
		res.DegradedBody = body
		return res, err
	}
	if obj != nil {
		lst, _ := obj["w"].([]any)
		if lst == nil {
			lst = []any{}
		}
		res.put(store.FacetAlarms, lst)
	}
	return res, nil
}

// FetchDailies pulls the multi-day forecast list.
func (c *Client) FetchDailies(ctx context.Context, areaID string) (FetchResult, error) {
	api := c.APIURL("weixinfc/"+areaID+".html", "d1", true)
	body, res, ok, err := c.fetchPage(ctx, api)
	if !ok {
		return res, err
	}

	obj, err := extract.Object(body, extract.DailyFC)
	if err != nil {
		res.DegradedBody = body
		return res, err
	}
	if obj != nil {
		lst, _ := obj["f"].([]any)
		if lst == nil {
			lst = []any{}
		}
		res.put(store.FacetDaily, lst)
	}
	return res, nil
}

// FetchHourlies pulls the 180-hour forecast list.
func (c *Client) FetchHourlies(ctx context.Context, areaID string) (FetchResult, error) {
	api := c.APIURL("wap_180h/"+areaID+".html", "d1", true)
	body, res, ok, err := c.fetchPage(ctx, api)
	if !ok {
		return res, err
	}

	obj, err := extract.Object(body, extract.HourlyFC)
	if err != nil {
		res.DegradedBody = body
		return res, err
	}
	if obj != nil {
		lst, _ := obj["jh"].([]any)
		if lst == nil {
			lst = []any{}
		}
		res.put(store.FacetHourly, lst)
	}
	return res, nil
}

// FetchMinutely pulls the sub-hourly precipitation forecast. Unlike the
// page endpoints, the whole body is JSON.
func (c *Client) FetchMinutely(ctx context.Context, st *Station) (FetchResult, error) {
	api := c.APIURL("webgis_rain_new/webgis/minute", "d3", true)
	api += "&lat=" + url.QueryEscape(strconv.FormatFloat(st.Latitude, 'f', -1, 64))
	api += "&lon=" + url.QueryEscape(strconv.FormatFloat(st.Longitude, 'f', -1, 64))

	body, res, ok, err := c.fetchPage(ctx, api)
	if !ok {
		return res, err
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(body), &obj); err != nil {
		res.DegradedBody = body
		return res, fmt.Errorf("%w: minutely: %v", extract.ErrMalformedPayload, err)
	}
	res.put(store.FacetMinutely, obj)
	return res, nil
}

// FetchObserve pulls the 24h observation page and reconstructs absolute
// timestamps for its hour-of-day records. A malformed base timestamp
// degrades the facet to an error record instead of raising.
func (c *Client) FetchObserve(ctx context.Context, areaID string) (FetchResult, error) {
	api := c.APIURL("weather/"+areaID+".shtml", "www", true)
	body, res, ok, err := c.fetchPage(ctx, api)
	if !ok {
		return res, err
	}

	obj, err := extract.Object(body, extract.Observe24)
	if err != nil {
		res.DegradedBody = body
		return res, err
	}
	if obj == nil {
		return res, nil
	}

	od, _ := obj["od"].(map[string]any)
	recs, rerr := reconstructObservations(od)
	if rerr != nil {
		record, _ := json.Marshal(map[string]any{
			"error": rerr.Error(),
			"api":   api,
			"data":  od,
		})
		c.log.Warn("observation reconstruction failed", "area", areaID, "error", rerr)
		res.DegradedBody = string(record)
		return res, nil
	}
	if len(recs) > 0 {
		res.put(store.FacetObserve, recs)
	}
	return res, nil
}
