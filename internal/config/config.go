// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; tokens go to the OS keychain.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pocketctl/cli/internal/xdg"
)

// Defaults applied when the config file is missing or leaves a field empty.
const (
	DefaultBaseURL         = "http://127.0.0.1:8090"
	DefaultCollection      = "users"
	DefaultLogLevel        = "info"
	DefaultRefreshInterval = 2 * time.Minute
	DefaultRefreshLead     = 5 * time.Minute
	DefaultRefreshPolicy   = "lead"
	DefaultRequestTimeout  = 10 * time.Second
)

// Environment variables that override file values.
const (
	EnvBaseURL         = "POCKETCTL_URL"
	EnvCollection      = "POCKETCTL_COLLECTION"
	EnvLogLevel        = "POCKETCTL_LOG_LEVEL"
	EnvRefreshInterval = "POCKETCTL_REFRESH_INTERVAL"
	EnvRefreshLead     = "POCKETCTL_REFRESH_LEAD"
	EnvRefreshPolicy   = "POCKETCTL_REFRESH_POLICY"
)

// Config holds non-sensitive CLI settings.
type Config struct {
	BaseURL    string        `json:"base_url"`
	Collection string        `json:"collection"`
	LogLevel   string        `json:"log_level"`
	Refresh    RefreshConfig `json:"refresh"`
	// Timeout bounds every backend request, as a Go duration string.
	Timeout string `json:"timeout,omitempty"`
}

// RefreshConfig controls the background session refresher.
// Durations are Go duration strings ("2m", "90s").
type RefreshConfig struct {
	Interval string `json:"interval"`
	Lead     string `json:"lead"`
	// Policy is "lead" (refresh within Lead of expiry) or "always".
	Policy string `json:"policy"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		BaseURL:    DefaultBaseURL,
		Collection: DefaultCollection,
		LogLevel:   DefaultLogLevel,
		Refresh: RefreshConfig{
			Interval: DefaultRefreshInterval.String(),
			Lead:     DefaultRefreshLead.String(),
			Policy:   DefaultRefreshPolicy,
		},
		Timeout: DefaultRequestTimeout.String(),
	}
}

// Path returns the path to the config file.
func Path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads configuration; missing file returns defaults.
// Environment overrides are applied last.
func Load() (Config, error) {
	p, err := Path()
	if err != nil {
		return Config{}, err
	}
	return LoadFile(p)
}

// LoadFile reads configuration from p, filling gaps with defaults.
func LoadFile(p string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(p)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return c, err
	default:
		if err := json.Unmarshal(data, &c); err != nil {
			return c, fmt.Errorf("parse %s: %w", p, err)
		}
	}
	c.applyEnv()
	c.fillDefaults()
	return c, c.Validate()
}

// LoadStored reads the config file without environment overrides, so the
// result can be edited and saved back.
func LoadStored() (Config, error) {
	p, err := Path()
	if err != nil {
		return Config{}, err
	}
	c := Default()
	data, err := os.ReadFile(p)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return c, err
	default:
		if err := json.Unmarshal(data, &c); err != nil {
			return c, fmt.Errorf("parse %s: %w", p, err)
		}
	}
	c.fillDefaults()
	return c, c.Validate()
}

// Keys lists the names accepted by Set.
var Keys = []string{"base_url", "collection", "log_level", "refresh.interval", "refresh.lead", "refresh.policy", "timeout"}

// Set assigns value to the setting named key and validates the result.
// On error c is left unchanged.
func (c *Config) Set(key, value string) error {
	next := *c
	value = strings.TrimSpace(value)
	switch key {
	case "base_url", "url":
		next.BaseURL = strings.TrimRight(value, "/")
	case "collection":
		next.Collection = value
	case "log_level":
		next.LogLevel = value
	case "refresh.interval":
		next.Refresh.Interval = value
	case "refresh.lead":
		next.Refresh.Lead = value
	case "refresh.policy":
		next.Refresh.Policy = value
	case "timeout":
		next.Timeout = value
	default:
		return fmt.Errorf("unknown key %q (want one of %s)", key, strings.Join(Keys, ", "))
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := Path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}

func (c *Config) applyEnv() {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.BaseURL, EnvBaseURL)
	set(&c.Collection, EnvCollection)
	set(&c.LogLevel, EnvLogLevel)
	set(&c.Refresh.Interval, EnvRefreshInterval)
	set(&c.Refresh.Lead, EnvRefreshLead)
	set(&c.Refresh.Policy, EnvRefreshPolicy)
}

func (c *Config) fillDefaults() {
	d := Default()
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	if c.Collection == "" {
		c.Collection = d.Collection
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.Refresh.Interval == "" {
		c.Refresh.Interval = d.Refresh.Interval
	}
	if c.Refresh.Lead == "" {
		c.Refresh.Lead = d.Refresh.Lead
	}
	if c.Refresh.Policy == "" {
		c.Refresh.Policy = d.Refresh.Policy
	}
	if c.Timeout == "" {
		c.Timeout = d.Timeout
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
}

// Validate checks that durations parse and the policy is known.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base_url must not be empty")
	}
	if iv, err := time.ParseDuration(c.Refresh.Interval); err != nil {
		return fmt.Errorf("refresh.interval: %w", err)
	} else if iv <= 0 {
		return errors.New("refresh.interval must be positive")
	}
	if _, err := time.ParseDuration(c.Refresh.Lead); err != nil {
		return fmt.Errorf("refresh.lead: %w", err)
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("timeout: %w", err)
	}
	switch c.Refresh.Policy {
	case "lead", "always":
	default:
		return fmt.Errorf("refresh.policy: unknown value %q (want \"lead\" or \"always\")", c.Refresh.Policy)
	}
	return nil
}

// RefreshInterval returns the parsed refresh period.
func (c Config) RefreshInterval() time.Duration {
	return parseOr(c.Refresh.Interval, DefaultRefreshInterval)
}

// RefreshLead returns the parsed lead window.
func (c Config) RefreshLead() time.Duration {
	return parseOr(c.Refresh.Lead, DefaultRefreshLead)
}

// RequestTimeout returns the parsed per-request timeout.
func (c Config) RequestTimeout() time.Duration {
	return parseOr(c.Timeout, DefaultRequestTimeout)
}

func parseOr(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
