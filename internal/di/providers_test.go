package di

import (
	"testing"

	icache "CropPulse/internal/service/cache"
	"CropPulse/pkg/config"
	applogger "CropPulse/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvideCatalogOverride(t *testing.T) {
	cfg := config.Default()
	assert.Len(t, ProvideCatalog(cfg).Crops(), 8)

	cfg.Catalog.Crops = map[string][]string{"Bajra": {"Rajasthan"}}
	cfg.Catalog.States = map[string]struct {
		Lat float64 `yaml:"lat"`
		Lon float64 `yaml:"lon"`
	}{"Rajasthan": {Lat: 26.9, Lon: 75.8}}

	c := ProvideCatalog(cfg)
	assert.Equal(t, []string{"Bajra"}, c.Crops())
	co, ok := c.Coordinates("Rajasthan")
	require.True(t, ok)
	assert.InDelta(t, 75.8, co.Lon, 1e-9)
}

func TestProvideThresholds(t *testing.T) {
	cfg := config.Default()
	cfg.Thresholds = map[string]float64{"rsi_overbought": 75}
	th, err := ProvideThresholds(cfg)
	require.NoError(t, err)
	assert.Equal(t, 75.0, th.RSIOverbought)

	cfg.Thresholds = map[string]float64{"rsi_overbougth": 75}
	_, err = ProvideThresholds(cfg)
	assert.Error(t, err)
}

func TestProvideCacheBackends(t *testing.T) {
	cfg := config.Default()

	cfg.Cache.Backend = "none"
	c, cleanup, err := ProvideCache(cfg, applogger.Nop())
	require.NoError(t, err)
	cleanup()
	assert.IsType(t, icache.Noop{}, c)

	cfg.Cache.Backend = "memory"
	c, cleanup, err = ProvideCache(cfg, applogger.Nop())
	require.NoError(t, err)
	cleanup()
	assert.IsType(t, &icache.Prefixed{}, c)
}

func TestAlertsDisabledLeavesPlumbingNil(t *testing.T) {
	cfg := config.Default()
	cfg.Alerts.Enabled = false

	producer, err := ProvideKafkaProducer(cfg)
	require.NoError(t, err)
	assert.Nil(t, producer)

	pipe, cleanup := ProvideAlertPipeline(cfg, producer, nil, applogger.Nop())
	cleanup()
	assert.Nil(t, pipe)
	assert.Nil(t, ProvideAlertScanner(cfg, nil, nil, nil, nil, pipe, nil, applogger.Nop()))
}

func TestProvideWeatherDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Weather.Enabled = false
	assert.Nil(t, ProvideWeather(cfg, ProvideCatalog(cfg), applogger.Nop()))
}
