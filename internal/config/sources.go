package config

import (
	"net/url"
	"os"
	"strconv"
)

// SettingSource represents where a setting value comes from.
type SettingSource string

const (
	SourceEnv     SettingSource = "env"
	SourceConfig  SettingSource = "config"
	SourceDefault SettingSource = "default"
)

// SettingStatus describes one effective setting for `chartfolio status`.
type SettingStatus struct {
	Name   string        `json:"name"`
	Value  string        `json:"value"`
	Source SettingSource `json:"source"`
}

// CheckSettings returns the effective value and origin of the settings an
// operator usually needs to confirm.
func CheckSettings(cfg *Config) []SettingStatus {
	dataset := cfg.Dataset.Source
	if dataset == "" {
		dataset = "(embedded sample)"
	}
	return []SettingStatus{
		checkSetting("Listen address", cfg.Server.Addr(), "", "SERVER_HOST", "SERVER_PORT"),
		checkSetting("Live hover", strconv.FormatBool(cfg.Server.LiveHover), "false", "SERVER_LIVE_HOVER"),
		checkSetting("Dataset", maskURL(dataset), "(embedded sample)", "DATASET_SOURCE"),
		checkSetting("Cache TTL (s)", strconv.Itoa(cfg.Dataset.CacheTTL), "300", "DATASET_CACHE_TTL"),
		checkSetting("Log level", cfg.Logging.Level, "info", "LOGGING_LEVEL"),
		checkSetting("Log format", cfg.Logging.Format, "text", "LOGGING_FORMAT"),
	}
}

// checkSetting decides whether value came from env, a config file or the
// defaults. An empty def means the value has no single default to compare.
func checkSetting(name, value, def string, envKeys ...string) SettingStatus {
	status := SettingStatus{Name: name, Value: value}
	for _, k := range envKeys {
		if os.Getenv(EnvPrefix+"_"+k) != "" {
			status.Source = SourceEnv
			return status
		}
	}
	if def != "" && value == def {
		status.Source = SourceDefault
	} else {
		status.Source = SourceConfig
	}
	return status
}

// maskURL hides any password embedded in a dataset URL.
func maskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "***")
	}
	return u.String()
}

// Redacted returns a copy of cfg that is safe to expose over the API.
func (c Config) Redacted() Config {
	c.Dataset.Source = maskURL(c.Dataset.Source)
	c.Server.CORSOrigins = append([]string(nil), c.Server.CORSOrigins...)
	return c
}
