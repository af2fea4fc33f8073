package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "assets/data/data.csv", cfg.Data.Source)
	assert.Equal(t, "auto", cfg.Data.Format)
	assert.Equal(t, 960, cfg.Chart.Width)
	assert.Equal(t, 500, cfg.Chart.Height)
	assert.InDelta(t, 0.9, cfg.Chart.PaddingLow, 0.001)
	assert.InDelta(t, 1.1, cfg.Chart.PaddingHigh, 0.001)
	assert.Equal(t, time.Second, cfg.Chart.Transition())
	assert.Equal(t, MarginConfig{Top: 20, Right: 40, Bottom: 80, Left: 100}, cfg.Chart.Margin)
	assert.Equal(t, 30, cfg.HTTP.TimeoutSecs)
	assert.Equal(t, 3, cfg.HTTP.MaxRetries)
	assert.Equal(t, "healthplot/1.0", cfg.HTTP.UserAgent)
	assert.Equal(t, 4, cfg.Gallery.Concurrency)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.NoError(t, cfg.Validate("gallery"))
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
data:
  source: https://example.com/data.xlsx
  sheet: "2014"
chart:
  width: 1200
  padding_low: 0.8
  padding_high: 1.2
  margin:
    left: 120
log:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/data.xlsx", cfg.Data.Source)
	assert.Equal(t, "2014", cfg.Data.Sheet)
	assert.Equal(t, 1200, cfg.Chart.Width)
	assert.InDelta(t, 0.8, cfg.Chart.PaddingLow, 0.001)
	assert.Equal(t, 120, cfg.Chart.Margin.Left)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	// Defaults still apply for unset values
	assert.Equal(t, 500, cfg.Chart.Height)
	assert.Equal(t, 20, cfg.Chart.Margin.Top)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
data:
  source: local.csv
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	t.Setenv("HEALTHPLOT_DATA_SOURCE", "remote.csv")
	t.Setenv("HEALTHPLOT_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "remote.csv", cfg.Data.Source)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("HEALTHPLOT_CHART_TRANSITION_MS=250\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("HEALTHPLOT_CHART_TRANSITION_MS") }) //nolint:errcheck

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.Chart.Transition())
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("chart: [unclosed"), 0o644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	return &Config{
		Data: DataConfig{Source: "data.csv", Format: "auto"},
		Chart: ChartConfig{
			Width: 960, Height: 500,
			PaddingLow: 0.9, PaddingHigh: 1.1,
			TransitionMS: 1000, PointRadius: 10,
			Margin: MarginConfig{Top: 20, Right: 40, Bottom: 80, Left: 100},
		},
		HTTP:    HTTPConfig{TimeoutSecs: 30, MaxRetries: 3, RatePerSec: 5},
		Gallery: GalleryConfig{Concurrency: 4, Dir: "gallery"},
	}
}

func TestValidate_AllModes(t *testing.T) {
	cfg := validDefaults()
	for _, mode := range []string{"render", "gallery", "explore", "fields"} {
		assert.NoError(t, cfg.Validate(mode), mode)
	}
}

func TestValidate_FieldsNeedsNothing(t *testing.T) {
	assert.NoError(t, (&Config{}).Validate("fields"))
}

func TestValidateUnknownMode(t *testing.T) {
	err := validDefaults().Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mode   string
		mutate func(*Config)
		want   string
	}{
		{"no source", "render", func(c *Config) { c.Data.Source = " " }, "data.source is required"},
		{"bad format", "explore", func(c *Config) { c.Data.Format = "parquet" }, "data.format"},
		{"inverted padding", "render", func(c *Config) { c.Chart.PaddingLow = 1.2 }, "chart.padding_low"},
		{"zero padding", "explore", func(c *Config) { c.Chart.PaddingHigh = 0 }, "chart.padding_low"},
		{"negative transition", "explore", func(c *Config) { c.Chart.TransitionMS = -1 }, "chart.transition_ms"},
		{"long transition", "render", func(c *Config) { c.Chart.TransitionMS = 10001 }, "chart.transition_ms"},
		{"no retries", "render", func(c *Config) { c.HTTP.MaxRetries = 0 }, "http.max_retries"},
		{"no rate", "render", func(c *Config) { c.HTTP.RatePerSec = 0 }, "http.rate_per_sec"},
		{"margins too wide", "render", func(c *Config) { c.Chart.Width = 140 }, "must exceed the margins"},
		{"no radius", "gallery", func(c *Config) { c.Chart.PointRadius = 0 }, "chart.point_radius"},
		{"zero concurrency", "gallery", func(c *Config) { c.Gallery.Concurrency = 0 }, "gallery.concurrency"},
		{"too much concurrency", "gallery", func(c *Config) { c.Gallery.Concurrency = 10 }, "gallery.concurrency"},
		{"no gallery dir", "gallery", func(c *Config) { c.Gallery.Dir = "" }, "gallery.dir is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validDefaults()
			tt.mutate(cfg)
			err := cfg.Validate(tt.mode)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_SurfaceChecksSkippedForExplore(t *testing.T) {
	cfg := validDefaults()
	cfg.Chart.Width = 0
	cfg.Chart.PointRadius = 0
	cfg.Gallery.Concurrency = 0
	assert.NoError(t, cfg.Validate("explore"))
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validDefaults()
	cfg.Data.Source = ""
	cfg.HTTP.MaxRetries = 0
	err := cfg.Validate("render")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data.source is required")
	assert.Contains(t, err.Error(), "http.max_retries")
}
