package convert

import "github.com/i474232898/tianqi-aggregator/internal/store"

func measurement(deviceClass, unit string) map[string]any {
	return map[string]any{
		"device_class":        deviceClass,
		"state_class":         "measurement",
		"unit_of_measurement": unit,
	}
}

// DefaultRegistry builds the standard converter set for the provider's
// current-conditions record plus the derived multi-facet attributes.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Add(
		Numeric{S: Spec{
			Attr: "precipitation", Facet: store.FacetCurrent, Prop: "rain",
			Option: measurement("precipitation", "mm"),
		}, Precision: 1},
		Numeric{S: Spec{
			Attr: "precipitation_24h", Facet: store.FacetCurrent, Prop: "rain24h",
			Option: measurement("precipitation", "mm"),
		}, Precision: 1},
		// temperature is the one mandatory numeric field: a current record
		// without a parseable temperature is provider drift worth surfacing
		Numeric{S: Spec{
			Attr: "temperature", Facet: store.FacetCurrent, Prop: "temp",
			Option: measurement("temperature", "°C"),
		}, Precision: 1, Strict: true},
		Numeric{S: Spec{
			Attr: "humidity", Facet: store.FacetCurrent, Prop: "sd",
			Option: measurement("humidity", "%"),
		}, Unit: "%", Precision: 1},
		Numeric{S: Spec{
			Attr: "pm25", Facet: store.FacetCurrent, Prop: "aqi_pm25",
			Option: measurement("pm25", "µg/m³"),
		}, Precision: 1},
		Numeric{S: Spec{
			Attr: "atmospheric_pressure", Facet: store.FacetCurrent, Prop: "qy",
			Option: measurement("atmospheric_pressure", "hPa"),
		}, Precision: 1},
		Numeric{S: Spec{
			Attr: "visibility", Facet: store.FacetCurrent, Prop: "njd",
			Option: measurement("distance", "km"),
		}, Unit: "km", Precision: 1},
		NewWindSpeed(),
		Alarms{},
		Minutely{},
		ConditionConv{},
		Indices{},
		ForecastDaily{},
		ForecastHourly{},
		Sensor{S: Spec{
			Attr: "aqi", Facet: store.FacetCurrent,
			Enablement: Lazy,
			Option:     map[string]any{"icon": "mdi:blur"},
		}},
		Sensor{S: Spec{
			Attr: "limit_number", Facet: store.FacetCurrent, Prop: "limitnumber",
			Enablement: Disabled,
			Option:     map[string]any{"icon": "mdi:counter"},
		}},
	)
	return r
}
