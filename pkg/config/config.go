package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/deeporg/deeporg/pkg/organizer"
)

// Bounds for the read preview limit, matching what the session will
// accept. Values outside the range are clamped, not rejected.
const (
	MinReadBytes     = 200
	MaxReadBytesCap  = 10000
	MaxIterationsCap = 1000
)

// DefaultModel is used when neither file, environment, nor flags name one.
const DefaultModel = "anthropic:claude-sonnet-4-5"

// Config is the resolved application configuration. Precedence is
// defaults, then the TOML file, then environment variables; command-line
// flags are applied on top by the caller.
type Config struct {
	Model          string    `toml:"model" env:"DEEPORG_MODEL"`
	DryRun         bool      `toml:"dry_run" env:"DEEPORG_DRY_RUN"`
	MaxReadBytes   int       `toml:"max_read_bytes" env:"DEEPORG_MAX_READ_BYTES"`
	MaxIterations  int       `toml:"max_iterations" env:"DEEPORG_MAX_ITERATIONS"`
	LogLevel       string    `toml:"log_level" env:"DEEPORG_LOG_LEVEL"`
	ExcludeFiles   []string  `toml:"exclude_files" env:"DEEPORG_EXCLUDE_FILES" envSeparator:","`
	ExcludeFolders []string  `toml:"exclude_folders" env:"DEEPORG_EXCLUDE_FOLDERS" envSeparator:","`
	MCP            MCPConfig `toml:"mcp"`
}

// MCPConfig enables bridging external MCP servers into the tool table.
type MCPConfig struct {
	Enabled bool                       `toml:"enabled" env:"DEEPORG_MCP_ENABLED"`
	Servers map[string]MCPServerConfig `toml:"servers"`
}

// MCPServerConfig describes one MCP server. Type selects the transport:
// "stdio" (default), "sse", or "http".
type MCPServerConfig struct {
	Type    string            `toml:"type"`
	URL     string            `toml:"url"`
	Headers map[string]string `toml:"headers"`
	Command string            `toml:"command"`
	Args    []string          `toml:"args"`
	Env     map[string]string `toml:"env"`
}

// DefaultConfig returns the built-in configuration. Dry run defaults to
// on: a tool that moves files around should not do so until asked.
func DefaultConfig() *Config {
	return &Config{
		Model:         DefaultModel,
		DryRun:        true,
		MaxReadBytes:  organizer.DefaultMaxReadBytes,
		MaxIterations: organizer.DefaultMaxIterations,
		LogLevel:      "info",
	}
}

// DefaultConfigPath returns the standard config file location, or ""
// when the user config directory cannot be determined.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "deeporg", "config.toml")
}

// Load builds the configuration from defaults, the TOML file at path
// (or the default location when path is empty), and the environment.
// A missing file is not an error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = DefaultConfigPath()
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	cfg.clamp()
	return cfg, nil
}

func (c *Config) clamp() {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.MaxReadBytes < MinReadBytes {
		c.MaxReadBytes = MinReadBytes
	}
	if c.MaxReadBytes > MaxReadBytesCap {
		c.MaxReadBytes = MaxReadBytesCap
	}
	if c.MaxIterations < 1 {
		c.MaxIterations = 1
	}
	if c.MaxIterations > MaxIterationsCap {
		c.MaxIterations = MaxIterationsCap
	}
}
