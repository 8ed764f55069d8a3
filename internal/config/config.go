package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/tiletree/internal/tiling"
)

// Gaps controls the pixel spacing the layout leaves between windows and
// around the tiled region.
type Gaps struct {
	Window    int `yaml:"window"`
	Partition int `yaml:"partition"`
}

// Thresholds tunes the drop-position heuristic. Values are fractions of half
// the target window's shorter dimension; their ordering (restructure < split
// < swap) matters more than the exact numbers.
type Thresholds struct {
	Restructure float64 `yaml:"restructure"`
	Split       float64 `yaml:"split"`
	Swap        float64 `yaml:"swap"`
}

// Config is the daemon configuration loaded from YAML.
type Config struct {
	Gaps       Gaps       `yaml:"gaps"`
	Thresholds Thresholds `yaml:"thresholds"`

	// LayoutDir is where named layout snapshots are stored. Empty means
	// ~/.local/share/tiletree/layouts.
	LayoutDir string `yaml:"layout_dir"`

	// PollInterval is the reconciler period in milliseconds.
	PollInterval int `yaml:"poll_interval_ms"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	opts := tiling.DefaultOptions()
	return &Config{
		Gaps: Gaps{
			Window:    opts.WindowGap,
			Partition: opts.PartitionGap,
		},
		Thresholds: Thresholds{
			Restructure: opts.AddToParentThreshold,
			Split:       opts.SplitThreshold,
			Swap:        opts.SwapThreshold,
		},
		PollInterval: 500,
		LogLevel:     "info",
	}
}

// DefaultConfigPath returns ~/.config/tiletree/config.yaml.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "tiletree", "config.yaml"), nil
}

// Load reads the configuration from the standard location. A missing file is
// not an error; defaults apply.
func Load() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads and validates a config file, merging it over defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Gaps.Window < 0 || c.Gaps.Partition < 0 {
		return fmt.Errorf("gaps must be non-negative")
	}
	t := c.Thresholds
	if t.Restructure <= 0 || t.Split <= 0 || t.Swap <= 0 {
		return fmt.Errorf("thresholds must be positive")
	}
	if !(t.Restructure < t.Split && t.Split < t.Swap) {
		return fmt.Errorf("thresholds must be ordered restructure < split < swap, got %v < %v < %v",
			t.Restructure, t.Split, t.Swap)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval_ms must be positive")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}

// TilingOptions converts the config into the layout engine's option set.
func (c *Config) TilingOptions() tiling.Options {
	opts := tiling.DefaultOptions()
	opts.WindowGap = c.Gaps.Window
	opts.PartitionGap = c.Gaps.Partition
	opts.AddToParentThreshold = c.Thresholds.Restructure
	opts.SplitThreshold = c.Thresholds.Split
	opts.SwapThreshold = c.Thresholds.Swap
	return opts
}

// ResolveLayoutDir returns the directory for layout snapshots, creating it if
// needed.
func (c *Config) ResolveLayoutDir() (string, error) {
	dir := c.LayoutDir
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(homeDir, ".local", "share", "tiletree", "layouts")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create layout dir %s: %w", dir, err)
	}
	return dir, nil
}
