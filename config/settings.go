/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see LICENSE file for details.                                       *
 ******************************************************************************/

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables that override settings
const EnvPrefix = "MCPGRAPH_"

// SettingsFileEnv names a YAML settings file when -settings is not given
const SettingsFileEnv = EnvPrefix + "SETTINGS"

// Settings holds server process settings
type Settings struct {
	// Listen is the MCP server address, e.g. "localhost:8888"
	Listen string `koanf:"listen"`

	// MetricsListen serves /metrics when set
	MetricsListen string `koanf:"metrics_listen"`

	// DataDir holds the token database. Empty selects the db package default.
	DataDir string `koanf:"data_dir"`

	// HTTPTimeout bounds each Graph request
	HTTPTimeout time.Duration `koanf:"http_timeout"`

	Debug       bool   `koanf:"debug"`
	NoStreaming bool   `koanf:"no_streaming"`
	LogFile     string `koanf:"log_file"`

	// ConfigFiles lists endpoint configuration files. Entries may themselves
	// be comma-separated lists.
	ConfigFiles []string `koanf:"config_files"`
}

// DefaultSettings returns the settings used when nothing overrides them
func DefaultSettings() *Settings {
	return &Settings{
		Listen:      "localhost:8888",
		HTTPTimeout: 30 * time.Second,
		LogFile:     "mcpgraph.log",
	}
}

// LoadSettings layers, from lowest to highest precedence:
//  1. DefaultSettings
//  2. the YAML file at path, or at $MCPGRAPH_SETTINGS when path is empty
//  3. MCPGRAPH_* environment variables (MCPGRAPH_HTTP_TIMEOUT -> http_timeout)
func LoadSettings(path string) (*Settings, error) {
	k := koanf.New(".")

	if path == "" {
		path = os.Getenv(SettingsFileEnv)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load settings from %s: %w", path, err)
		}
	}

	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load settings from environment: %w", err)
	}

	settings := DefaultSettings()
	if err := k.UnmarshalWithConf("", settings, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	settings.ConfigFiles = splitList(settings.ConfigFiles)

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Validate checks settings for values the server cannot run with
func (s *Settings) Validate() error {
	if s.Listen == "" {
		return errors.New("listen must not be empty")
	}
	if s.HTTPTimeout <= 0 {
		return fmt.Errorf("http_timeout must be positive, got %s", s.HTTPTimeout)
	}
	if s.MetricsListen != "" && s.MetricsListen == s.Listen {
		return fmt.Errorf("metrics_listen must differ from listen (%s)", s.Listen)
	}
	return nil
}

// AddConfigFiles appends a comma-separated list of endpoint configuration files
func (s *Settings) AddConfigFiles(list string) {
	s.ConfigFiles = splitList(append(s.ConfigFiles, list))
}

func splitList(entries []string) []string {
	var out []string
	for _, entry := range entries {
		for _, item := range strings.Split(entry, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}
