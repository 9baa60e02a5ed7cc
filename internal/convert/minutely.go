package convert

import (
	"fmt"

	"github.com/i474232898/tianqi-aggregator/internal/store"
)

// Minutely zips the sub-hourly forecast's parallel time/value arrays into a
// per-minute precipitation map. Mismatched array lengths yield an empty map
// because pairing would be meaningless.
type Minutely struct{}

func (Minutely) Spec() Spec {
	return Spec{
		Attr:       "minutely_precipitation",
		Facet:      store.FacetMinutely,
		WholeFacet: true,
		Children:   []string{"minutely_summary"},
	}
}

func (Minutely) Decode(_ *Context, payload Payload, value any) error {
	m, _ := value.(map[string]any)
	if msg, ok := m["msg"]; ok {
		payload["minutely_summary"] = msg
	}

	times, _ := m["time"].([]any)
	values, _ := m["precipitation"].([]any)
	out := map[string]any{}
	if len(times) == len(values) {
		for i, ts := range times {
			out[fmt.Sprint(ts)] = values[i]
		}
	}
	payload["minutely_precipitation"] = out
	return nil
}
