package convert

import (
	"strconv"
	"time"

	"github.com/i474232898/tianqi-aggregator/internal/store"
)

const timestampLayout = "200601021504"

// ForecastDaily synthesizes normalized daily forecast records from the
// daily facet, patching today's precipitation from the current-conditions
// facet when available. It reads multiple facets, so it receives the whole
// snapshot.
type ForecastDaily struct{}

func (ForecastDaily) Spec() Spec {
	return Spec{Attr: "forecast_daily", WholeSnapshot: true}
}

func (ForecastDaily) Decode(ctx *Context, payload Payload, value any) error {
	snap, _ := value.(map[string]any)
	dailies, ok := snap[string(store.FacetDaily)].([]any)
	if !ok {
		return nil
	}
	now := ctx.now()

	lst := make([]map[string]any, 0, len(dailies))
	for _, item := range dailies {
		v, _ := item.(map[string]any)
		info, ok := conditionCodes["d"+str(v["fa"])]
		if !ok {
			continue
		}
		day, err := time.Parse("01/02", str(v["fi"]))
		if err != nil {
			continue
		}
		tim := time.Date(now.Year(), day.Month(), day.Day(), 0, 0, 0, 0, now.Location())

		rec := map[string]any{
			"datetime":      tim.Format("2006-01-02"),
			"condition":     string(info.Condition),
			"skycon":        info.Skycon,
			"precipitation": info.Precip,
			"wind_bearing":  v["fe"],
		}
		if tim.Month() == now.Month() && tim.Day() == now.Day() {
			if rain, ok := parseFloat(ctx.Facet(store.FacetCurrent)["rain"]); ok {
				rec["precipitation"] = rain
			}
		}
		if f, ok := parseFloat(v["fn"]); ok {
			rec["humidity"] = f
		}
		if f, ok := parseFloat(v["fc"]); ok {
			rec["temperature"] = f
		}
		if f, ok := parseFloat(v["fd"]); ok {
			rec["templow"] = f
		}
		lst = append(lst, rec)
	}
	payload["forecast_daily"] = lst
	return nil
}

// ForecastHourly synthesizes hourly forecast records from the hourly facet,
// enriched with precipitation and wind bearing from the matching
// observation-history record.
type ForecastHourly struct{}

func (ForecastHourly) Spec() Spec {
	return Spec{Attr: "forecast_hourly", WholeSnapshot: true}
}

func (ForecastHourly) Decode(ctx *Context, payload Payload, value any) error {
	snap, _ := value.(map[string]any)
	hourlies, ok := snap[string(store.FacetHourly)].([]any)
	if !ok {
		return nil
	}
	observed, _ := snap[string(store.FacetObserve)].(map[string]any)
	now := ctx.now()

	var lst []map[string]any
	for _, item := range hourlies {
		if len(lst) >= 48 {
			break
		}
		v, _ := item.(map[string]any)
		info, ok := conditionCodes["d"+str(v["ja"])]
		if !ok {
			continue
		}
		ts := str(v["jf"])
		tim, err := time.ParseInLocation(timestampLayout, ts, now.Location())
		if err != nil {
			continue
		}
		// keep the current hour but drop rows that are clearly in the past
		if now.Sub(tim) > 90*time.Minute {
			continue
		}

		rec := map[string]any{
			"datetime":      ts,
			"condition":     string(info.Condition),
			"skycon":        info.Skycon,
			"precipitation": info.Precip,
		}
		if obs, ok := observed[ts].(map[string]any); ok {
			rec["precipitation"] = obs["rain"]
			rec["wind_bearing"] = obs["wind"]
		}
		if f, ok := parseFloat(v["jb"]); ok {
			rec["temperature"] = f
		}
		if f, ok := parseFloat(v["je"]); ok {
			rec["humidity"] = f
		}
		if f, ok := parseFloat(v["jj"]); ok {
			rec["pressure"] = f
		}
		if f, ok := parseFloat(v["jg"]); ok {
			rec["wind_speed"] = f
		}
		lst = append(lst, rec)
	}
	payload["forecast_hourly"] = lst
	return nil
}

func parseFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case nil:
		return 0, false
	}
	f, err := strconv.ParseFloat(str(v), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
