package convert

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/i474232898/tianqi-aggregator/internal/store"
)

// WindSpeed decodes the current wind speed and emits the direction facets
// sourced from the same current-conditions record as an atomic group.
type WindSpeed struct {
	Numeric
}

func NewWindSpeed() WindSpeed {
	return WindSpeed{Numeric{
		S: Spec{
			Attr:  "wind_speed",
			Facet: store.FacetCurrent,
			Prop:  "wse",
			Children: []string{
				"wind_direction",
				"wind_direction_code",
				"wind_level",
				"wind_speed_and_unit",
			},
			Option: map[string]any{
				"device_class":        "wind_speed",
				"state_class":         "measurement",
				"unit_of_measurement": "km/h",
			},
		},
		Unit:      "km/h",
		Precision: 1,
	}}
}

func (c WindSpeed) Decode(ctx *Context, payload Payload, value any) error {
	if err := c.Numeric.Decode(ctx, payload, value); err != nil {
		return err
	}
	current := ctx.Facet(store.FacetCurrent)
	payload["wind_direction"] = current["WD"]
	payload["wind_direction_code"] = current["wde"]
	payload["wind_level"] = current["WS"]
	payload["wind_speed_and_unit"] = current["wse"]
	return nil
}

// issuerPrefix matches the issuing-office boilerplate the provider prepends
// to alarm titles, e.g. "XX省气象台发布的暴雨预警" -> "暴雨预警".
var issuerPrefix = regexp.MustCompile(`^.*?发布的?`)

// NormalizeAlarmTitle strips the issuing-office prefix from one alarm title.
func NormalizeAlarmTitle(title string) string {
	return issuerPrefix.ReplaceAllString(title, "")
}

// Alarms derives the warning attributes from the raw alarm list: a
// has-warning flag, a de-duplicated title string, a picture URL keyed by
// the two-part warning code and the normalized alarm records.
type Alarms struct{}

func (Alarms) Spec() Spec {
	return Spec{
		Attr:       "warning",
		Facet:      store.FacetAlarms,
		WholeFacet: true,
		Children:   []string{"warning_title", "warning_picture", "warnings"},
		Option:     map[string]any{"device_class": "safety"},
	}
}

func (Alarms) Decode(ctx *Context, payload Payload, value any) error {
	lst, _ := value.([]any)
	payload["warning"] = len(lst) > 0

	var titles []string
	seen := map[string]struct{}{}
	records := make([]map[string]any, 0, len(lst))
	for _, item := range lst {
		v, ok := item.(map[string]any)
		if !ok {
			continue
		}
		code := fmt.Sprint(v["w4"]) + fmt.Sprint(v["w6"])
		title := NormalizeAlarmTitle(str(v["w13"]))
		if title != "" {
			if _, dup := seen[title]; !dup {
				seen[title] = struct{}{}
				titles = append(titles, title)
			}
		}
		rec := map[string]any{
			"province":    v["w1"],
			"city":        v["w2"],
			"code":        code,
			"title":       title,
			"description": v["w9"],
		}
		if ctx.PictureURL != nil {
			rec["picture"] = ctx.PictureURL(code)
		}
		records = append(records, rec)
	}
	payload["warning_title"] = strings.Join(titles, "、")
	if len(records) > 0 && ctx.PictureURL != nil {
		payload["warning_picture"] = records[0]["picture"]
	}
	payload["warnings"] = records
	return nil
}

// Indices folds the living-index facet's parallel `*_name`/`*_des_s` pairs
// into a name to description map.
type Indices struct{}

func (Indices) Spec() Spec {
	return Spec{Attr: "indices", Facet: store.FacetIndices, WholeFacet: true}
}

func (Indices) Decode(_ *Context, payload Payload, value any) error {
	m, _ := value.(map[string]any)
	out := map[string]any{}
	for k, v := range m {
		if !strings.Contains(k, "_name") {
			continue
		}
		key := strings.Replace(k, "_name", "", 1)
		des, ok := m[key+"_des_s"]
		if !ok || str(des) == "" {
			continue
		}
		out[str(v)] = des
	}
	if len(out) > 0 {
		payload["indices"] = out
	}
	return nil
}

// ConditionConv maps the provider weather code to the normalized condition
// plus its skycon tag and human description.
type ConditionConv struct{}

func (ConditionConv) Spec() Spec {
	return Spec{
		Attr:     "condition",
		Facet:    store.FacetCurrent,
		Prop:     "weathercode",
		Children: []string{"skycon", "condition_desc"},
	}
}

func (ConditionConv) Decode(ctx *Context, payload Payload, value any) error {
	info, ok := conditionCodes[str(value)]
	if !ok {
		return nil
	}
	payload["condition"] = string(info.Condition)
	payload["skycon"] = info.Skycon
	payload["condition_desc"] = ctx.Facet(store.FacetCurrent)["weather"]
	return nil
}

func str(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
