package provider

import (
	"fmt"
	"strconv"
	"time"
)

// timestampLayout is the provider's YYYYMMDDhhmm batch timestamp format.
const timestampLayout = "200601021504"

// reconstructObservations turns the raw 24h observation batch into a map
// keyed by absolute timestamp. The raw od2 list is newest-first and each
// record carries only an hour-of-day; walking oldest to newest, the hour is
// set onto a running clock seeded from the od0 base timestamp, advancing a
// day whenever the hour goes backwards (midnight rollover). Records whose
// numeric fields fail to parse are dropped without aborting the batch.
func reconstructObservations(od map[string]any) (map[string]any, error) {
	base, err := time.Parse(timestampLayout, str(od["od0"]))
	if err != nil {
		return nil, fmt.Errorf("bad base timestamp %q: %w", str(od["od0"]), err)
	}
	lst, _ := od["od2"].([]any)

	out := map[string]any{}
	running := base
	for i := len(lst) - 1; i >= 0; i-- {
		v, _ := lst[i].(map[string]any)
		// a record with an unparseable hour must not advance the running
		// clock; a substituted hour would misplace every later record
		hour, ok := parseFloat(v["od21"])
		if !ok {
			continue
		}

		tim := time.Date(running.Year(), running.Month(), running.Day(),
			int(hour), running.Minute(), 0, 0, running.Location())
		if tim.Before(running) {
			tim = tim.AddDate(0, 0, 1)
		}
		running = tim

		temp, okTemp := parseFloat(v["od22"])
		humi, okHumi := parseFloat(v["od27"])
		rain, okRain := parseFloatOrZero(v["od26"])
		windLevel, okWL := parseFloatOrZero(v["od25"])
		windAngle, okWA := parseFloatOrZero(v["od23"])
		if !okTemp || !okHumi || !okRain || !okWL || !okWA {
			continue
		}

		out[tim.Format(timestampLayout)] = map[string]any{
			"aqi":        v["od28"],
			"temp":       temp,
			"humi":       humi,
			"rain":       rain,
			"wind":       v["od24"],
			"wind_level": windLevel,
			"wind_angle": windAngle,
		}
	}
	return out, nil
}

func str(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
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

// parseFloatOrZero treats a missing or empty value as zero but still fails
// on garbage, matching the per-record drop policy.
func parseFloatOrZero(v any) (float64, bool) {
	if v == nil || str(v) == "" {
		return 0, true
	}
	return parseFloat(v)
}
