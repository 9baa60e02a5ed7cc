package convert

// Condition is a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown     Condition = "unknown"
	ConditionSunny       Condition = "sunny"
	ConditionPartly      Condition = "partlycloudy"
	ConditionCloudy      Condition = "cloudy"
	ConditionRainy       Condition = "rainy"
	ConditionPouring     Condition = "pouring"
	ConditionLightning   Condition = "lightning-rainy"
	ConditionHail        Condition = "hail"
	ConditionSnowy       Condition = "snowy"
	ConditionSnowyRainy  Condition = "snowy-rainy"
	ConditionFog         Condition = "fog"
	ConditionWindy       Condition = "windy"
	ConditionExceptional Condition = "exceptional"
)

// conditionInfo carries the per-code normalization: condition, skycon tag,
// nominal precipitation rate (mm/h) and cloud coverage (%).
type conditionInfo struct {
	Condition Condition
	Skycon    string
	Precip    float64
	CloudPct  float64
}

// conditionCodes maps the provider's day weather codes to normalized
// conditions. Codes observed on the provider's pages; unknown codes are
// skipped by the converter.
var conditionCodes = map[string]conditionInfo{
	"d00":  {ConditionSunny, "CLEAR_DAY", 0, 10},
	"d01":  {ConditionPartly, "PARTLY_CLOUDY_DAY", 0, 50},
	"d02":  {ConditionCloudy, "CLOUDY", 0, 80},
	"d03":  {ConditionRainy, "MODERATE_RAIN", 0.1, 70},
	"d04":  {ConditionLightning, "LIGHT_RAIN", 0.1, 80},
	"d05":  {ConditionHail, "LIGHT_RAIN", 0.2, 80},
	"d06":  {ConditionSnowyRainy, "LIGHT_SNOW", 0.5, 90},
	"d07":  {ConditionRainy, "LIGHT_RAIN", 0.5, 90},
	"d08":  {ConditionRainy, "MODERATE_RAIN", 1.0, 100},
	"d09":  {ConditionRainy, "HEAVY_RAIN", 2.0, 100},
	"d10":  {ConditionPouring, "STORM_RAIN", 4.0, 100},
	"d11":  {ConditionPouring, "STORM_RAIN", 10.0, 100},
	"d12":  {ConditionPouring, "STORM_RAIN", 20.0, 100},
	"d13":  {ConditionSnowy, "LIGHT_SNOW", 0.1, 90},
	"d14":  {ConditionSnowy, "LIGHT_SNOW", 0.25, 90},
	"d15":  {ConditionSnowy, "MODERATE_SNOW", 0.5, 100},
	"d16":  {ConditionSnowy, "HEAVY_SNOW", 1.0, 100},
	"d17":  {ConditionSnowy, "STORM_SNOW", 2.0, 100},
	"d18":  {ConditionFog, "LIGHT_HAZE", 0, 80},
	"d19":  {ConditionHail, "LIGHT_RAIN", 0.5, 100},
	"d20":  {ConditionExceptional, "SAND", 0, 70},
	"d21":  {ConditionRainy, "MODERATE_RAIN", 0.8, 90},
	"d22":  {ConditionRainy, "HEAVY_RAIN", 1.5, 100},
	"d23":  {ConditionPouring, "STORM_RAIN", 3.0, 100},
	"d24":  {ConditionPouring, "STORM_RAIN", 7.0, 100},
	"d25":  {ConditionPouring, "STORM_RAIN", 15.0, 100},
	"d26":  {ConditionSnowy, "MODERATE_SNOW", 0.35, 90},
	"d27":  {ConditionSnowy, "HEAVY_SNOW", 0.75, 100},
	"d28":  {ConditionSnowy, "STORM_SNOW", 1.5, 100},
	"d29":  {ConditionWindy, "DUST", 0, 60},
	"d30":  {ConditionWindy, "DUST", 0, 60},
	"d31":  {ConditionExceptional, "SAND", 0, 80},
	"d32":  {ConditionFog, "FOG", 0, 90},
	"d49":  {ConditionFog, "FOG", 0, 100},
	"d53":  {ConditionFog, "LIGHT_HAZE", 0, 90},
	"d54":  {ConditionFog, "MODERATE_HAZE", 0, 90},
	"d55":  {ConditionFog, "HEAVY_HAZE", 0, 100},
	"d56":  {ConditionFog, "HEAVY_HAZE", 0, 100},
	"d57":  {ConditionFog, "FOG", 0, 100},
	"d58":  {ConditionFog, "FOG", 0, 100},
	"d301": {ConditionRainy, "MODERATE_RAIN", 1.0, 100},
	"d302": {ConditionSnowy, "MODERATE_SNOW", 0.5, 100},
}
