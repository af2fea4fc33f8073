package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Data    DataConfig    `yaml:"data" mapstructure:"data"`
	Chart   ChartConfig   `yaml:"chart" mapstructure:"chart"`
	HTTP    HTTPConfig    `yaml:"http" mapstructure:"http"`
	FTP     FTPConfig     `yaml:"ftp" mapstructure:"ftp"`
	Gallery GalleryConfig `yaml:"gallery" mapstructure:"gallery"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// DataConfig locates the survey dataset.
type DataConfig struct {
	// Source is a local path or an http(s)/ftp/file URL.
	Source string `yaml:"source" mapstructure:"source"`
	// Format is csv, xlsx, json, zip or auto (by extension).
	Format string `yaml:"format" mapstructure:"format"`
	// Sheet names the XLSX worksheet; empty means the first.
	Sheet string `yaml:"sheet" mapstructure:"sheet"`
}

// ChartConfig configures the plot surface and transitions.
type ChartConfig struct {
	Width        int          `yaml:"width" mapstructure:"width"`
	Height       int          `yaml:"height" mapstructure:"height"`
	PaddingLow   float64      `yaml:"padding_low" mapstructure:"padding_low"`
	PaddingHigh  float64      `yaml:"padding_high" mapstructure:"padding_high"`
	TransitionMS int          `yaml:"transition_ms" mapstructure:"transition_ms"`
	PointRadius  float64      `yaml:"point_radius" mapstructure:"point_radius"`
	Margin       MarginConfig `yaml:"margin" mapstructure:"margin"`
}

// Transition returns the reposition animation length.
func (c ChartConfig) Transition() time.Duration {
	return time.Duration(c.TransitionMS) * time.Millisecond
}

// MarginConfig is the space around the SVG chart, in pixels.
type MarginConfig struct {
	Top    int `yaml:"top" mapstructure:"top"`
	Right  int `yaml:"right" mapstructure:"right"`
	Bottom int `yaml:"bottom" mapstructure:"bottom"`
	Left   int `yaml:"left" mapstructure:"left"`
}

// HTTPConfig configures dataset downloads over HTTP.
type HTTPConfig struct {
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// FTPConfig configures dataset downloads over FTP.
type FTPConfig struct {
	TimeoutSecs int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// GalleryConfig configures batch rendering of every axis combination.
type GalleryConfig struct {
	Concurrency int    `yaml:"concurrency" mapstructure:"concurrency"`
	Dir         string `yaml:"dir" mapstructure:"dir"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from .env, file and environment.
func Load() (*Config, error) {
	// optional; real environment wins over .env
	_ = godotenv.Load(".env")

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("HEALTHPLOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.source", "assets/data/data.csv")
	v.SetDefault("data.format", "auto")
	v.SetDefault("data.sheet", "")
	v.SetDefault("chart.width", 960)
	v.SetDefault("chart.height", 500)
	v.SetDefault("chart.padding_low", 0.9)
	v.SetDefault("chart.padding_high", 1.1)
	v.SetDefault("chart.transition_ms", 1000)
	v.SetDefault("chart.point_radius", 10)
	v.SetDefault("chart.margin.top", 20)
	v.SetDefault("chart.margin.right", 40)
	v.SetDefault("chart.margin.bottom", 80)
	v.SetDefault("chart.margin.left", 100)
	v.SetDefault("http.timeout_secs", 30)
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("http.user_agent", "healthplot/1.0")
	v.SetDefault("http.rate_per_sec", 5)
	v.SetDefault("ftp.timeout_secs", 30)
	v.SetDefault("gallery.concurrency", 4)
	v.SetDefault("gallery.dir", "gallery")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on. Modes are
// render, gallery, explore and fields.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "fields":
		return nil
	case "render", "gallery", "explore":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if strings.TrimSpace(c.Data.Source) == "" {
		errs = append(errs, "data.source is required")
	}
	switch strings.ToLower(c.Data.Format) {
	case "", "auto", "csv", "xlsx", "json", "zip":
	default:
		errs = append(errs, fmt.Sprintf("data.format %q is not one of auto, csv, xlsx, json, zip", c.Data.Format))
	}
	if c.Chart.PaddingLow <= 0 || c.Chart.PaddingHigh <= 0 || c.Chart.PaddingLow > c.Chart.PaddingHigh {
		errs = append(errs, "chart.padding_low and chart.padding_high must be > 0 with low <= high")
	}
	if c.Chart.TransitionMS < 0 || c.Chart.TransitionMS > 10000 {
		errs = append(errs, "chart.transition_ms must be between 0 and 10000")
	}
	if c.HTTP.MaxRetries < 1 {
		errs = append(errs, "http.max_retries must be >= 1")
	}
	if c.HTTP.RatePerSec <= 0 {
		errs = append(errs, "http.rate_per_sec must be > 0")
	}

	if mode == "render" || mode == "gallery" {
		m := c.Chart.Margin
		if c.Chart.Width-m.Left-m.Right <= 0 || c.Chart.Height-m.Top-m.Bottom <= 0 {
			errs = append(errs, "chart.width and chart.height must exceed the margins")
		}
		if c.Chart.PointRadius <= 0 {
			errs = append(errs, "chart.point_radius must be > 0")
		}
	}
	if mode == "gallery" {
		if c.Gallery.Concurrency < 1 || c.Gallery.Concurrency > 9 {
			errs = append(errs, "gallery.concurrency must be between 1 and 9")
		}
		if strings.TrimSpace(c.Gallery.Dir) == "" {
			errs = append(errs, "gallery.dir is required")
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
