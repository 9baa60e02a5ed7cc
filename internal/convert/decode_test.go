package convert

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/i474232898/tianqi-aggregator/internal/store"
)

func snapshotCtx(snap map[string]any) *Context {
	return &Context{
		Snapshot: snap,
		Now: func() time.Time {
			return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		},
	}
}

func TestDecodeSkipsAbsentFacets(t *testing.T) {
	r := DefaultRegistry()
	payload := r.Decode(snapshotCtx(map[string]any{}))

	// no facet has data yet; only whole-snapshot converters may run and
	// they must not invent attributes either
	for _, attr := range []string{"temperature", "humidity", "wind_speed", "warning"} {
		if _, present := payload[attr]; present {
			t.Fatalf("attribute %s produced without source data", attr)
		}
	}
}

func TestDecodeCurrentConditions(t *testing.T) {
	r := DefaultRegistry()
	snap := map[string]any{
		"current": map[string]any{
			"temp":        "23.45",
			"sd":          "45%",
			"wse":         "12.3km/h",
			"WD":          "北风",
			"wde":         "N",
			"WS":          "3级",
			"weathercode": "d00",
			"weather":     "晴",
		},
	}
	payload := r.Decode(snapshotCtx(snap))

	if payload["temperature"] != 23.5 {
		t.Fatalf("expected temperature 23.5, got %v", payload["temperature"])
	}
	if payload["humidity"] != 45.0 {
		t.Fatalf("expected humidity 45, got %v", payload["humidity"])
	}
	if payload["wind_speed"] != 12.3 {
		t.Fatalf("expected wind_speed 12.3, got %v", payload["wind_speed"])
	}
	if payload["wind_direction"] != "北风" || payload["wind_direction_code"] != "N" {
		t.Fatalf("wind direction group missing: %v", payload)
	}
	if payload["condition"] != "sunny" || payload["skycon"] != "CLEAR_DAY" {
		t.Fatalf("condition mapping wrong: %v / %v", payload["condition"], payload["skycon"])
	}
}

func TestDecodeIdempotent(t *testing.T) {
	r := DefaultRegistry()
	snap := map[string]any{
		"current": map[string]any{
			"temp": "10.0", "sd": "80%", "wse": "5km/h",
			"weathercode": "d01", "weather": "多云",
		},
		"alarms": []any{
			map[string]any{"w1": "北京市", "w2": "北京", "w4": "01", "w6": "03", "w9": "desc", "w13": "北京市气象台发布暴雨预警"},
		},
		"minutely": map[string]any{
			"msg":           "两小时内无降水",
			"time":          []any{"t1", "t2"},
			"precipitation": []any{0.0, 0.1},
		},
	}

	first, err := json.Marshal(r.Decode(snapshotCtx(snap)))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	second, err := json.Marshal(r.Decode(snapshotCtx(snap)))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("decode is not idempotent:\n%s\n%s", first, second)
	}
}

func TestSubscribedAttrs(t *testing.T) {
	r := NewRegistry()
	r.Add(
		NewWindSpeed(),
		Sensor{S: Spec{Attr: "wind_gust", Facet: store.FacetCurrent, Parent: "wind_speed"}},
	)

	attrs := r.SubscribedAttrs("wind_speed")
	for _, want := range []string{
		"wind_speed", "wind_direction", "wind_direction_code",
		"wind_level", "wind_speed_and_unit", "wind_gust",
	} {
		if _, ok := attrs[want]; !ok {
			t.Fatalf("expected %s in subscribed set %v", want, attrs)
		}
	}
}

func TestRegistryReplacesByAttr(t *testing.T) {
	r := NewRegistry()
	r.Add(Sensor{S: Spec{Attr: "aqi"}})
	r.Add(Numeric{S: Spec{Attr: "aqi"}, Precision: 0})

	if len(r.All()) != 1 {
		t.Fatalf("expected 1 converter, got %d", len(r.All()))
	}
	if _, ok := r.All()[0].(Numeric); !ok {
		t.Fatal("re-registration should replace the converter in place")
	}
}
