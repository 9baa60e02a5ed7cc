package config

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var validate = validator.New()

// AppConfig is the daemon's environment-driven configuration.
type AppConfig struct {
	// Domain is the provider's base domain; endpoints live on node
	// subdomains of it.
	Domain string `validate:"required,fqdn"`
	// AreaID selects the station; the "auto" sentinel resolves from the
	// configured coordinates.
	AreaID string `validate:"required"`

	// Default coordinates used when AreaID is "auto".
	Latitude  *float64
	Longitude *float64

	// Optional geocoding of a city/country pair into the default
	// coordinates; needs a Google API key.
	GeocodeCity    string
	GeocodeCountry string
	GeocoderAPIKey string

	HTTPTimeout time.Duration `validate:"gt=0"`
	// InsecureTLS relaxes certificate verification for the provider's
	// legacy endpoints.
	InsecureTLS bool
	RateLimit   float64 `validate:"gte=0"`
	RateBurst   int     `validate:"gte=0"`

	SummaryInterval  time.Duration `validate:"gt=0"`
	AlarmsInterval   time.Duration `validate:"gt=0"`
	DailyInterval    time.Duration `validate:"gt=0"`
	HourlyInterval   time.Duration `validate:"gt=0"`
	MinutelyInterval time.Duration `validate:"gt=0"`
	ObserveInterval  time.Duration `validate:"gt=0"`

	Port     string
	LogLevel slog.Level
	AppEnv   string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{
		Domain: os.Getenv("TIANQI_DOMAIN"),
		AreaID: getenvDefault("TIANQI_AREA_ID", "auto"),

		GeocodeCity:    os.Getenv("GEOCODE_CITY"),
		GeocodeCountry: os.Getenv("GEOCODE_COUNTRY"),
		GeocoderAPIKey: os.Getenv("GEOCODER_API_KEY"),

		InsecureTLS: getenvBool("INSECURE_TLS", true),
		RateLimit:   getenvFloat("RATE_LIMIT_RPS", 2),
		RateBurst:   getenvInt("RATE_LIMIT_BURST", 4),

		Port:   getenvDefault("PORT", "8080"),
		AppEnv: getenvDefault("APP_ENV", "dev"),
	}

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 20*time.Second); err != nil {
		return nil, err
	}
	if cfg.SummaryInterval, err = getenvDuration("SUMMARY_INTERVAL", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.AlarmsInterval, err = getenvDuration("ALARMS_INTERVAL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.DailyInterval, err = getenvDuration("DAILY_INTERVAL", 60*time.Minute); err != nil {
		return nil, err
	}
	if cfg.HourlyInterval, err = getenvDuration("HOURLY_INTERVAL", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.MinutelyInterval, err = getenvDuration("MINUTELY_INTERVAL", 2*time.Minute); err != nil {
		return nil, err
	}
	if cfg.ObserveInterval, err = getenvDuration("OBSERVE_INTERVAL", 30*time.Minute); err != nil {
		return nil, err
	}

	if v := os.Getenv("TIANQI_LATITUDE"); v != "" {
		lat, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TIANQI_LATITUDE: %w", err)
		}
		cfg.Latitude = &lat
	}
	if v := os.Getenv("TIANQI_LONGITUDE"); v != "" {
		lng, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TIANQI_LONGITUDE: %w", err)
		}
		cfg.Longitude = &lng
	}

	switch getenvDefault("LOG_LEVEL", "info") {
	case "debug":
		cfg.LogLevel = slog.LevelDebug
	case "warn":
		cfg.LogLevel = slog.LevelWarn
	case "error":
		cfg.LogLevel = slog.LevelError
	default:
		cfg.LogLevel = slog.LevelInfo
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
