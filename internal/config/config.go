package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// BasicAuthConfig holds HTTP Basic Auth credentials for the Web UI/API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// ExtrasConfig describes the public endpoints used for the daily extras
// (quote of the day, word of the day, term dates). All of them are reached
// through the configured CORS proxies.
type ExtrasConfig struct {
	QuoteURL     string `yaml:"quote_url" json:"quote_url"`
	WordURL      string `yaml:"word_url" json:"word_url"`
	TermDatesURL string `yaml:"term_dates_url" json:"term_dates_url"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the Web UI and API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone used as canonical display zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// LogLevel is the minimum log level (debug/info/warn/error).
	LogLevel string `yaml:"log_level" json:"log_level"`

	// DataDir is where the SQLite database, ICS cache and snapshots live.
	DataDir string `yaml:"data_dir" json:"data_dir"`

	// ICSURL is an optional ICS subscription endpoint. When set, the
	// schedule is re-imported from it on RefreshCron.
	ICSURL string `yaml:"ics_url" json:"ics_url"`

	// RefreshCron is a cron-style schedule string (e.g. "*/30 * * * *")
	// for periodic re-import of ICSURL.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// BreakThresholdSec is the minimum gap between two lessons before a
	// synthetic break is inserted. Gaps at or below it are ignored.
	BreakThresholdSec int `yaml:"break_threshold_sec" json:"break_threshold_sec"`

	// EndOfDayLabel is the summary of the synthetic open-ended event
	// appended after the last lesson of each day.
	EndOfDayLabel string `yaml:"end_of_day_label" json:"end_of_day_label"`

	// Proxies is the ordered list of CORS proxy prefixes used for the
	// extras endpoints. The target URL is appended query-escaped.
	Proxies []string `yaml:"proxies" json:"proxies"`

	// Extras configures the quote/word/term-dates endpoints.
	Extras ExtrasConfig `yaml:"extras" json:"extras"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:            "127.0.0.1:8080",
		Timezone:          "Australia/Sydney",
		LogLevel:          "info",
		DataDir:           "./var",
		RefreshCron:       "*/30 * * * *",
		BreakThresholdSec: 60,
		EndOfDayLabel:     "End of Day",
		Proxies: []string{
			"https://corsproxy.io/?",
			"https://api.allorigins.win/raw?url=",
		},
		Extras: ExtrasConfig{
			QuoteURL: "https://zenquotes.io/api/today",
		},
		BasicAuth: nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs from older versions still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()

	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.DataDir == "" {
		c.DataDir = def.DataDir
	}
	if c.RefreshCron == "" {
		c.RefreshCron = def.RefreshCron
	}
	if c.BreakThresholdSec <= 0 {
		c.BreakThresholdSec = def.BreakThresholdSec
	}
	if c.EndOfDayLabel == "" {
		c.EndOfDayLabel = def.EndOfDayLabel
	}
	if c.Proxies == nil {
		c.Proxies = def.Proxies
	}
	if c.Extras.QuoteURL == "" {
		c.Extras.QuoteURL = def.Extras.QuoteURL
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist: create parent directory if needed, write
//     a default config with 0600 perms, and return the default config.
//   - If the file exists: read YAML, unmarshal, normalize defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".schoolcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}

// Save is a convenience method on Config that delegates to the
// package-level Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
