package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config is the runtime configuration of the dashboard server.
type Config struct {
	Port             string        `validate:"required,numeric"`
	SimulationAPIURL string        `validate:"required,url"`
	PrefsPath        string        `validate:"required"`
	ResultsFile      string        `validate:"omitempty,endswith=.json"`
	TransportRetries uint64        `validate:"lte=10"`
	ReportCacheTTL   time.Duration `validate:"gte=0"`
	Environment      string
	LogLevel         string `validate:"omitempty,oneof=trace debug info warn warning error fatal panic"`
}

// Load reads .env when present, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv, applying defaults for unset keys.
func FromEnv(getenv func(string) string) (Config, error) {
	or := func(k, def string) string {
		if v := getenv(k); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		Port:             or("PORT", "8080"),
		SimulationAPIURL: or("SIMULATION_API_URL", "http://localhost:8000"),
		PrefsPath:        or("PREFS_PATH", "preferences.db"),
		ResultsFile:      getenv("RESULTS_FILE"),
		Environment:      getenv("ENVIRONMENT"),
		LogLevel:         getenv("LOG_LEVEL"),
		ReportCacheTTL:   10 * time.Minute,
	}

	if v := getenv("TRANSPORT_RETRIES"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("TRANSPORT_RETRIES: %w", err)
		}
		cfg.TransportRetries = n
	}
	if v := getenv("REPORT_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("REPORT_CACHE_TTL: %w", err)
		}
		cfg.ReportCacheTTL = d
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c Config) Addr() string {
	return ":" + c.Port
}
