package config

import (
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDefaults(t *testing.T) {
	cfg, err := FromEnv(env(nil))

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "http://localhost:8000", cfg.SimulationAPIURL)
	assert.Equal(t, "preferences.db", cfg.PrefsPath)
	assert.Equal(t, uint64(0), cfg.TransportRetries)
	assert.Equal(t, 10*time.Minute, cfg.ReportCacheTTL)
}

func TestOverrides(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{
		"PORT":               "9090",
		"SIMULATION_API_URL": "https://sim.example.com",
		"RESULTS_FILE":       "results_20240101_120000.json",
		"TRANSPORT_RETRIES":  "2",
		"REPORT_CACHE_TTL":   "30s",
		"LOG_LEVEL":          "debug",
	}))

	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, uint64(2), cfg.TransportRetries)
	assert.Equal(t, 30*time.Second, cfg.ReportCacheTTL)
	assert.Equal(t, "results_20240101_120000.json", cfg.ResultsFile)
}

func TestInvalid(t *testing.T) {
	cases := map[string]map[string]string{
		"bad url":       {"SIMULATION_API_URL": "not a url"},
		"bad port":      {"PORT": "http"},
		"bad retries":   {"TRANSPORT_RETRIES": "-1"},
		"too many":      {"TRANSPORT_RETRIES": "50"},
		"bad ttl":       {"REPORT_CACHE_TTL": "soon"},
		"results csv":   {"RESULTS_FILE": "results.csv"},
		"unknown level": {"LOG_LEVEL": "loud"},
	}
	for name, m := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := FromEnv(env(m))
			assert.Error(t, err)
		})
	}
}

func TestValidationErrorsAreTyped(t *testing.T) {
	_, err := FromEnv(env(map[string]string{"SIMULATION_API_URL": "nope"}))

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "SimulationAPIURL", verrs[0].Field())
}
