package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
environment: test
data:
  source: csv
  csv:
    path: prices.csv
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "prices.csv", c.Data.CSV.Path)
	assert.Equal(t, 8000, c.Server.Port)
	assert.Equal(t, "file", c.Models.Source)
	assert.Equal(t, 5*time.Minute, c.Cache.TTL)
	assert.Equal(t, 30, c.Alerts.HorizonDays)
}

func TestLoadParsesCatalogAndThresholds(t *testing.T) {
	path := writeConfig(t, `
environment: test
catalog:
  crops:
    Bajra: [Rajasthan]
  states:
    Rajasthan: {lat: 26.9, lon: 75.8}
thresholds:
  rsi_overbought: 75
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Rajasthan"}, c.Catalog.Crops["Bajra"])
	assert.InDelta(t, 26.9, c.Catalog.States["Rajasthan"].Lat, 1e-9)
	assert.Equal(t, 75.0, c.Thresholds["rsi_overbought"])
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		mut  func(c *Config)
		ok   bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"unknown data source", func(c *Config) { c.Data.Source = "s3" }, false},
		{"clickhouse without host", func(c *Config) { c.Data.Source = "clickhouse" }, false},
		{"http models without url", func(c *Config) { c.Models.Source = "http" }, false},
		{"redis without addr", func(c *Config) { c.Cache.Backend = "redis" }, false},
		{"alerts without brokers", func(c *Config) { c.Alerts.Enabled = true }, false},
		{"alerts with brokers", func(c *Config) {
			c.Alerts.Enabled = true
			c.Kafka.Brokers = []string{"localhost:9092"}
		}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Default()
			tc.mut(c)
			err := c.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, "environment: test\n")
	t.Setenv("DATA_CSV_PATH", "/data/override.csv")
	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")
	t.Setenv("PORT", "9090")

	c, err := LoadWithEnv(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/override.csv", c.Data.CSV.Path)
	assert.Equal(t, []string{"a:9092", "b:9092"}, c.Kafka.Brokers)
	assert.Equal(t, 9090, c.Server.Port)
}

func TestLoadWithEnvRejectsBadPort(t *testing.T) {
	path := writeConfig(t, "environment: test\n")
	t.Setenv("PORT", "abc")
	_, err := LoadWithEnv(path)
	assert.Error(t, err)
}
