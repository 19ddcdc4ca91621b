package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the input locations and decode settings.
type Config struct {
	// Paths
	ArchiveDir string `json:"archive_dir" toml:"archive_dir"`
	WLD        string `json:"wld" toml:"wld"`
	OutputDir  string `json:"output_dir" toml:"output_dir"`

	// Decode settings
	Naming       string `json:"naming" toml:"naming"` // "", "prefix" or "replace"
	FrameDelayMS int    `json:"frame_delay_ms" toml:"frame_delay_ms"`
	Workers      int    `json:"workers" toml:"workers"`
	LogLevel     string `json:"log_level" toml:"log_level"`
}

// Load reads a JSON or TOML config file, chosen by extension, and returns
// Config. Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Resolve fills in any empty fields with auto-detected defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.ArchiveDir != "" {
		c.ArchiveDir = flags.ArchiveDir
	}
	if flags.WLD != "" {
		c.WLD = flags.WLD
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Naming != "" {
		c.Naming = flags.Naming
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}

	if c.ArchiveDir == "" {
		c.ArchiveDir = detectArchiveDir()
	}

	if c.ArchiveDir != "" {
		if c.WLD == "" {
			c.WLD = findWLD(c.ArchiveDir)
		}
		if c.OutputDir == "" {
			c.OutputDir = filepath.Join(c.ArchiveDir, "wld-export")
		} else if !filepath.IsAbs(c.OutputDir) {
			c.OutputDir = filepath.Join(c.ArchiveDir, c.OutputDir)
		}
	}

	if c.FrameDelayMS <= 0 {
		c.FrameDelayMS = 100
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate reports settings Resolve cannot repair.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Naming) {
	case "", "prefix", "replace":
	default:
		return fmt.Errorf("config: naming %q: want prefix or replace", c.Naming)
	}
	if c.ArchiveDir == "" {
		return fmt.Errorf("config: no archive directory")
	}
	if c.WLD == "" {
		return fmt.Errorf("config: no .wld file in %s", c.ArchiveDir)
	}
	return nil
}

// FrameDelay is FrameDelayMS as a duration.
func (c *Config) FrameDelay() time.Duration {
	return time.Duration(c.FrameDelayMS) * time.Millisecond
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	ArchiveDir string
	WLD        string
	OutputDir  string
	Naming     string
	Workers    int
	LogLevel   string
}

func detectArchiveDir() string {
	cwd, _ := os.Getwd()
	if cwd != "" && findWLD(cwd) != "" {
		return cwd
	}
	return ""
}

// findWLD returns the first .wld file of dir in name order, or "".
func findWLD(dir string) string {
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".wld") {
			return e.Name()
		}
	}
	return ""
}
