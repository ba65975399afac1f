// Package config defines the scan configuration and how it is loaded.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Supported values for Source.
const (
	SourceJSON   = "json"
	SourceScript = "script"
)

// Supported values for Strategy.
const (
	StrategyPhase    = "phase"
	StrategyPresence = "presence"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// BaseURL is the rewards site root, e.g. "https://quilibrium.com".
	BaseURL string `koanf:"base_url"`

	// Source picks where rewards are read from: json or script.
	Source string `koanf:"source"`

	// Strategy picks the activity classification: phase or presence.
	Strategy string `koanf:"strategy"`

	// FetchTimeoutMS bounds each HTTP request.
	FetchTimeoutMS int `koanf:"fetch_timeout_ms"`

	// UserAgent is sent with every request.
	UserAgent string `koanf:"user_agent"`

	// PeersFile lists the peer ids to report on, one per line.
	PeersFile string `koanf:"peers_file"`

	// MetricsFile, when set, receives the run metrics in Prometheus text format.
	MetricsFile string `koanf:"metrics_file"`

	// Reward document paths relative to BaseURL.
	ExistingPath     string `koanf:"existing_path"`
	InterimPath      string `koanf:"interim_path"`
	PreUpdatePath    string `koanf:"pre_update_path"`
	PostUpdatePath   string `koanf:"post_update_path"`
	DisqualifiedPath string `koanf:"disqualified_path"`

	// ScriptFields overrides which record field feeds each source when
	// reading the script bundle, keyed by source name.
	ScriptFields map[string]string `koanf:"script_fields"`

	// CriteriaField names the disqualification reason field.
	CriteriaField string `koanf:"criteria_field"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		BaseURL:          "https://quilibrium.com",
		Source:           SourceJSON,
		Strategy:         StrategyPhase,
		FetchTimeoutMS:   30_000,
		UserAgent:        "rewardscan/1.0",
		PeersFile:        "peers.lst",
		ExistingPath:     "/rewards/existing.json",
		InterimPath:      "/rewards/rewards.json",
		PreUpdatePath:    "/rewards/pre-1.4.18.json",
		PostUpdatePath:   "/rewards/post-1.4.18.json",
		DisqualifiedPath: "/rewards/disqualified.json",
		ScriptFields:     map[string]string{},
		CriteriaField:    "criteria",
	}
}

// FetchTimeout returns FetchTimeoutMS as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMS) * time.Millisecond
}

// URL joins p onto BaseURL.
func (c *Config) URL(p string) string {
	return strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(p, "/")
}

// Validate checks the values that cannot be defaulted away.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: base_url %q must be an http(s) url", ErrInvalidConfig, c.BaseURL)
	}

	if c.Source != SourceJSON && c.Source != SourceScript {
		return fmt.Errorf("%w: source %q must be %s or %s", ErrInvalidConfig, c.Source, SourceJSON, SourceScript)
	}
	if c.Strategy != StrategyPhase && c.Strategy != StrategyPresence {
		return fmt.Errorf("%w: strategy %q must be %s or %s", ErrInvalidConfig, c.Strategy, StrategyPhase, StrategyPresence)
	}
	if c.FetchTimeoutMS <= 0 {
		return fmt.Errorf("%w: fetch_timeout_ms must be positive", ErrInvalidConfig)
	}

	if c.Source == SourceJSON {
		for key, p := range map[string]string{
			"existing_path":     c.ExistingPath,
			"interim_path":      c.InterimPath,
			"pre_update_path":   c.PreUpdatePath,
			"post_update_path":  c.PostUpdatePath,
			"disqualified_path": c.DisqualifiedPath,
		} {
			if strings.TrimSpace(p) == "" {
				return fmt.Errorf("%w: %s must not be empty", ErrInvalidConfig, key)
			}
		}
	}
	return nil
}
