package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/julianshen/dataviewer/internal/adapters"
	"github.com/julianshen/dataviewer/internal/loader"
)

// Dir is the default configuration directory.
const Dir = "~/.config/dataviewer"

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return Dir + "/config.toml"
}

// Config represents the top-level application configuration.
type Config struct {
	Adapters AdaptersConfig `toml:"adapters"`
	Plugins  PluginsConfig  `toml:"plugins"`
	UI       UIConfig       `toml:"ui"`
}

// AdaptersConfig holds where adapter units are found and how files are
// matched to adapters.
type AdaptersConfig struct {
	Dir     string `toml:"dir"`
	Pattern string `toml:"pattern"`
	Probe   string `toml:"probe"`
}

// PluginsConfig holds where parser and visualizer units are found.
type PluginsConfig struct {
	Dir     string `toml:"dir"`
	Pattern string `toml:"pattern"`
	OnError string `toml:"on_error"`
	// DefaultParser names the parser selected at startup. Empty selects
	// the second registered parser.
	DefaultParser string `toml:"default_parser"`
}

// UIConfig holds settings for the interactive viewer.
type UIConfig struct {
	RecentLimit int    `toml:"recent_limit"`
	HistoryDB   string `toml:"history_db"`
	LogFile     string `toml:"log_file"`
}

// DefaultConfig returns a Config populated with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Adapters: AdaptersConfig{
			Dir:     Dir + "/adapters",
			Pattern: "*.star",
			Probe:   string(adapters.ProbeOpen),
		},
		Plugins: PluginsConfig{
			Dir:     Dir + "/plugins",
			Pattern: "*.star",
			OnError: string(loader.PolicyIsolate),
		},
		UI: UIConfig{
			RecentLimit: 20,
			HistoryDB:   Dir + "/history.db",
			LogFile:     Dir + "/dataviewer.log",
		},
	}
}

// Load reads the TOML file at path over the defaults. A missing file yields
// the defaults. Paths in the result have "~" expanded.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(ExpandHome(path), cfg); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.expand()
	return cfg, nil
}

// Save writes cfg to path as TOML, creating parent directories.
func Save(path string, cfg *Config) error {
	path = ExpandHome(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		f.Close()
		return fmt.Errorf("encoding config: %w", err)
	}
	return f.Close()
}

// Validate rejects unknown policy names, bad glob patterns and negative
// limits.
func (c *Config) Validate() error {
	var errs []error
	switch adapters.ProbePolicy(c.Adapters.Probe) {
	case adapters.ProbeOpen, adapters.ProbeSniffFirst:
	default:
		errs = append(errs, fmt.Errorf("adapters.probe: unknown value %q", c.Adapters.Probe))
	}
	if _, err := loader.ParsePolicy(c.Plugins.OnError); err != nil {
		errs = append(errs, fmt.Errorf("plugins.on_error: %w", err))
	}
	if _, err := filepath.Match(c.Adapters.Pattern, ""); err != nil {
		errs = append(errs, fmt.Errorf("adapters.pattern: %w", err))
	}
	if _, err := filepath.Match(c.Plugins.Pattern, ""); err != nil {
		errs = append(errs, fmt.Errorf("plugins.pattern: %w", err))
	}
	if c.UI.RecentLimit < 0 {
		errs = append(errs, fmt.Errorf("ui.recent_limit: must not be negative, got %d", c.UI.RecentLimit))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func (c *Config) expand() {
	c.Adapters.Dir = ExpandHome(c.Adapters.Dir)
	c.Plugins.Dir = ExpandHome(c.Plugins.Dir)
	c.UI.HistoryDB = ExpandHome(c.UI.HistoryDB)
	c.UI.LogFile = ExpandHome(c.UI.LogFile)
}

// ExpandHome replaces a leading "~" with the user's home directory. The
// path is returned unchanged when the home directory is unknown.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
