// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads mutter-x11-frames settings.
//
// Settings are resolved in order: built-in defaults, the YAML config file,
// then environment variables. The config file is optional; the compositor
// normally starts the binary without one.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	framelog "github.com/tombee/frames/internal/log"
	frameserrors "github.com/tombee/frames/pkg/errors"
)

// Platform library choices for the renderer.
const (
	PlatformLibraryAuto    = ""
	PlatformLibraryAdwaita = "adwaita"
	PlatformLibraryNone    = "none"
)

// DefaultRendererPath is looked up on PATH when no renderer is configured.
const DefaultRendererPath = "mutter-x11-frames-renderer"

var (
	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// Config represents the complete mutter-x11-frames configuration.
type Config struct {
	Log        LogConfig        `yaml:"log"`
	Renderer   RendererConfig   `yaml:"renderer"`
	Supervisor SupervisorConfig `yaml:"supervisor"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	// Level is the minimum level: trace, debug, info, warn, error.
	// Environment: FRAMES_LOG_LEVEL, LOG_LEVEL
	Level string `yaml:"level"`

	// Format is json or text.
	// Environment: LOG_FORMAT
	Format string `yaml:"format"`

	// AddSource adds file:line to every record.
	// Environment: LOG_SOURCE
	AddSource bool `yaml:"add_source"`
}

// RendererConfig configures the renderer binary each role hands over to.
type RendererConfig struct {
	// Path is the renderer binary, absolute or looked up on PATH.
	// Environment: FRAMES_RENDERER
	Path string `yaml:"path"`

	// PlatformLibrary forces ("adwaita") or disables ("none") the optional
	// theming library. Empty means decide from XDG_CURRENT_DESKTOP.
	// Environment: MUTTER_FRAMES_PLATFORM_LIBRARY
	PlatformLibrary string `yaml:"platform_library"`
}

// SupervisorConfig configures the supervising parent process.
type SupervisorConfig struct {
	// PIDFile is written while supervising. Empty disables it.
	// Environment: FRAMES_PID_FILE
	PIDFile string `yaml:"pid_file"`

	// EventLog receives JSON lines for spawn/signal/reap events. Empty disables it.
	// Environment: FRAMES_EVENT_LOG
	EventLog string `yaml:"event_log"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: string(framelog.FormatText),
		},
		Renderer: RendererConfig{
			Path: DefaultRendererPath,
		},
	}
}

// Load loads configuration from the file at configPath, or from the
// default location when configPath is empty. A missing default file is
// not an error; a missing explicit file is.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	explicit := configPath != ""
	if !explicit {
		if env := os.Getenv("FRAMES_CONFIG"); env != "" {
			configPath = env
			explicit = true
		} else if p, err := ConfigPath(); err == nil {
			configPath = p
		}
	}

	if configPath != "" {
		if err := cfg.loadFromFile(configPath); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return nil, &frameserrors.ConfigError{
					Key:    "config_file",
					Reason: fmt.Sprintf("failed to load from %s", configPath),
					Cause:  err,
				}
			}
		}
	}

	cfg.applyDefaults()
	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, &frameserrors.ConfigError{
			Key:    "validation",
			Reason: "configuration validation failed",
			Cause:  err,
		}
	}

	return cfg, nil
}

// LoggerConfig converts the log section into an internal/log configuration.
func (c *Config) LoggerConfig() *framelog.Config {
	lc := framelog.DefaultConfig()
	lc.Level = c.Log.Level
	lc.Format = framelog.Format(c.Log.Format)
	lc.AddSource = c.Log.AddSource
	return lc
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = string(framelog.FormatText)
	}
	if c.Renderer.Path == "" {
		c.Renderer.Path = DefaultRendererPath
	}
}

func (c *Config) loadFromFile(path string) error {
	path, err := expandHome(path)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	return nil
}

// loadFromEnv loads configuration from environment variables.
func (c *Config) loadFromEnv() {
	lc := c.LoggerConfig()
	framelog.ApplyEnv(lc)
	c.Log.Level = lc.Level
	c.Log.Format = string(lc.Format)
	c.Log.AddSource = lc.AddSource

	if val := os.Getenv("FRAMES_RENDERER"); val != "" {
		c.Renderer.Path = val
	}
	if val, ok := os.LookupEnv("MUTTER_FRAMES_PLATFORM_LIBRARY"); ok {
		c.Renderer.PlatformLibrary = strings.ToLower(strings.TrimSpace(val))
	}

	if val := os.Getenv("FRAMES_PID_FILE"); val != "" {
		c.Supervisor.PIDFile = val
	}
	if val := os.Getenv("FRAMES_EVENT_LOG"); val != "" {
		c.Supervisor.EventLog = val
	}
}

// Validate checks the configuration for unsupported values.
func (c *Config) Validate() error {
	var errs []string

	if !framelog.ValidLevel(c.Log.Level) {
		errs = append(errs, fmt.Sprintf("log.level: unknown level %q", c.Log.Level))
	}
	switch framelog.Format(c.Log.Format) {
	case framelog.FormatJSON, framelog.FormatText:
	default:
		errs = append(errs, fmt.Sprintf("log.format: must be json or text, got %q", c.Log.Format))
	}

	switch c.Renderer.PlatformLibrary {
	case PlatformLibraryAuto, PlatformLibraryAdwaita, PlatformLibraryNone:
	default:
		errs = append(errs, fmt.Sprintf("renderer.platform_library: must be adwaita, none or empty, got %q", c.Renderer.PlatformLibrary))
	}

	paths := []struct{ key, path string }{
		{"supervisor.pid_file", c.Supervisor.PIDFile},
		{"supervisor.event_log", c.Supervisor.EventLog},
	}
	for _, p := range paths {
		if p.path != "" && strings.HasSuffix(p.path, string(filepath.Separator)) {
			errs = append(errs, fmt.Sprintf("%s: must name a file, got directory %q", p.key, p.path))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(errs, "; "))
	}
	return nil
}

// ExpandPaths resolves a leading ~/ in the supervisor file paths.
func (c *Config) ExpandPaths() error {
	var err error
	if c.Supervisor.PIDFile, err = expandHome(c.Supervisor.PIDFile); err != nil {
		return err
	}
	if c.Supervisor.EventLog, err = expandHome(c.Supervisor.EventLog); err != nil {
		return err
	}
	return nil
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}
