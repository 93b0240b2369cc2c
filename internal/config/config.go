// Package config handles configuration loading for chartfolio.
// It supports YAML config files, a .env file and environment variable
// overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/seenimoa/chartfolio/internal/chart"
)

// EnvPrefix is the prefix for environment overrides, e.g. CHARTFOLIO_SERVER_PORT.
const EnvPrefix = "CHARTFOLIO"

// Config represents the complete application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server" json:"server" yaml:"server"`
	Dataset DatasetConfig `mapstructure:"dataset" json:"dataset" yaml:"dataset"`
	Page    PageConfig    `mapstructure:"page" json:"page" yaml:"page"`
	Charts  ChartsConfig  `mapstructure:"charts" json:"charts" yaml:"charts"`
	Logging LoggingConfig `mapstructure:"logging" json:"logging" yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string   `mapstructure:"host" json:"host" yaml:"host"`
	Port        int      `mapstructure:"port" json:"port" yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" json:"cors_origins" yaml:"cors_origins"`
	LiveHover   bool     `mapstructure:"live_hover" json:"live_hover" yaml:"live_hover"` // drive hover over /ws/hover
	HoverRate   int      `mapstructure:"hover_rate" json:"hover_rate" yaml:"hover_rate"` // move events per second per session, 0 = unlimited
}

// DatasetConfig holds the sales dataset location.
type DatasetConfig struct {
	Source   string `mapstructure:"source" json:"source" yaml:"source"`    // file path or http(s) URL, empty = embedded sample
	CacheTTL int    `mapstructure:"cache_ttl" json:"cache_ttl" yaml:"cache_ttl"` // seconds, 0 = keep until reload
}

// PageConfig holds page text.
type PageConfig struct {
	Title  string `mapstructure:"title" json:"title" yaml:"title"`
	Author string `mapstructure:"author" json:"author" yaml:"author"`
}

// ChartsConfig holds the two hand-drawn charts.
type ChartsConfig struct {
	Bar   BarChartConfig   `mapstructure:"bar" json:"bar" yaml:"bar"`
	Donut DonutChartConfig `mapstructure:"donut" json:"donut" yaml:"donut"`
}

// BarChartConfig is the bar chart geometry plus an optional dataset that
// replaces the built-in one.
type BarChartConfig struct {
	chart.BarConfig `mapstructure:",squash" yaml:",inline"`
	Title           string            `mapstructure:"title" json:"title" yaml:"title"`
	Points          []chart.DataPoint `mapstructure:"points" json:"points" yaml:"points"`
}

// DonutChartConfig is the donut chart geometry plus an optional dataset.
type DonutChartConfig struct {
	chart.DonutConfig `mapstructure:",squash" yaml:",inline"`
	Title             string            `mapstructure:"title" json:"title" yaml:"title"`
	Points            []chart.DataPoint `mapstructure:"points" json:"points" yaml:"points"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level" json:"level" yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" json:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.chartfolio/config.yaml (home directory)
//  3. /etc/chartfolio/config.yaml (system)
//
// A .env file in the working directory is read first. Environment variables
// override config file values.
// Format: CHARTFOLIO_<SECTION>_<KEY>, e.g., CHARTFOLIO_DATASET_SOURCE
func Load() (*Config, error) {
	loadDotEnv()
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".chartfolio"))
	v.AddConfigPath("/etc/chartfolio")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "error reading config file")
		}
	}
	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadDotEnv()
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "error reading config file %s", path)
	}
	return decode(v)
}

// Default returns the built-in configuration, ignoring files and environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(err)
	}
	return &cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "error unmarshaling config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return &cfg, nil
}

// loadDotEnv reads ./.env if present. Existing variables win.
func loadDotEnv() {
	_ = godotenv.Load()
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.live_hover", false)
	v.SetDefault("server.hover_rate", 30)

	// Dataset defaults
	v.SetDefault("dataset.source", "")
	v.SetDefault("dataset.cache_ttl", 300) // 5 minutes

	// Page defaults
	v.SetDefault("page.title", "My Data Portfolio")
	v.SetDefault("page.author", "")

	// Chart defaults
	bar := chart.DefaultBarConfig()
	v.SetDefault("charts.bar.width", bar.Width)
	v.SetDefault("charts.bar.height", bar.Height)
	v.SetDefault("charts.bar.padding", bar.Padding)
	v.SetDefault("charts.bar.gap", bar.Gap)
	v.SetDefault("charts.bar.highlight_color", bar.HighlightColor)
	v.SetDefault("charts.bar.axis_color", bar.AxisColor)
	v.SetDefault("charts.bar.font_size", bar.FontSize)
	v.SetDefault("charts.bar.title", "How I spend my life")

	donut := chart.DefaultDonutConfig()
	v.SetDefault("charts.donut.width", donut.Width)
	v.SetDefault("charts.donut.height", donut.Height)
	v.SetDefault("charts.donut.outer_radius", donut.OuterRadius)
	v.SetDefault("charts.donut.inner_radius", donut.InnerRadius)
	v.SetDefault("charts.donut.stroke_color", donut.StrokeColor)
	v.SetDefault("charts.donut.darken_factor", donut.DarkenFactor)
	v.SetDefault("charts.donut.title", "Preferred learning positions")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// ════════════════════════════════════════════════════════════════════
// Derived values
// ════════════════════════════════════════════════════════════════════

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// HoverInterval is the refill period of the per-session move throttle.
func (s ServerConfig) HoverInterval() time.Duration {
	if s.HoverRate <= 0 {
		return 0
	}
	return time.Second / time.Duration(s.HoverRate)
}

// TTL returns the cache TTL as a duration.
func (d DatasetConfig) TTL() time.Duration {
	return time.Duration(d.CacheTTL) * time.Second
}

// Input returns the configured bar dataset, or the built-in one.
func (b BarChartConfig) Input() chart.Input {
	in := chart.LifeBalance()
	if len(b.Points) > 0 {
		in.Points = b.Points
	}
	if b.Title != "" {
		in.Title = b.Title
	}
	return in
}

// Input returns the configured donut dataset, or the built-in one.
func (d DonutChartConfig) Input() chart.Input {
	in := chart.LearningPositions()
	if len(d.Points) > 0 {
		in.Points = d.Points
	}
	if d.Title != "" {
		in.Title = d.Title
	}
	return in
}

// ════════════════════════════════════════════════════════════════════
// Validation
// ════════════════════════════════════════════════════════════════════

// Validate checks every section.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Server),
		validation.Field(&c.Dataset),
		validation.Field(&c.Charts),
		validation.Field(&c.Logging),
	)
}

// Validate checks the listener settings.
func (s ServerConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&s.HoverRate, validation.Min(0)),
	)
}

// Validate checks the dataset settings.
func (d DatasetConfig) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.CacheTTL, validation.Min(0)),
	)
}

// Validate checks both charts, including any configured points.
func (c ChartsConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Bar),
		validation.Field(&c.Donut),
	)
}

// Validate checks the bar geometry and its dataset.
func (b BarChartConfig) Validate() error {
	if err := validation.ValidateStruct(&b.BarConfig,
		validation.Field(&b.BarConfig.Width, validation.Min(0)),
		validation.Field(&b.BarConfig.Height, validation.Min(0)),
		validation.Field(&b.BarConfig.Padding, validation.Min(0.0), validation.By(b.fits)),
		validation.Field(&b.BarConfig.Gap, validation.Min(0.0)),
		validation.Field(&b.BarConfig.HighlightColor, validation.By(optionalColor)),
	); err != nil {
		return err
	}
	return b.Input().Validate()
}

// fits rejects geometry whose padding and gaps leave no room for the bars.
func (b BarChartConfig) fits(interface{}) error {
	return b.BarConfig.CheckFit(len(b.Input().Points))
}

// Validate checks the donut geometry and its dataset.
func (d DonutChartConfig) Validate() error {
	if err := validation.ValidateStruct(&d.DonutConfig,
		validation.Field(&d.DonutConfig.Width, validation.Min(0)),
		validation.Field(&d.DonutConfig.Height, validation.Min(0)),
		validation.Field(&d.DonutConfig.DarkenFactor, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&d.DonutConfig.StrokeColor, validation.By(optionalColor)),
	); err != nil {
		return err
	}
	return d.Input().Validate()
}

// Validate checks the logging settings.
func (l LoggingConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Level, validation.In("debug", "info", "warn", "warning", "error")),
		validation.Field(&l.Format, validation.In("text", "json")),
	)
}

func optionalColor(value interface{}) error {
	s, _ := value.(string)
	if s == "" || chart.ValidColor(s) {
		return nil
	}
	return errors.Errorf("invalid color %q", s)
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
