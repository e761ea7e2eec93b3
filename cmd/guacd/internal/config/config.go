// Package config loads the guacd server configuration.
//
// Configuration is a single YAML file, by default
// os.UserConfigDir()/guacd/guacd.yaml:
//
//	listen: :8080
//	data_dir: /var/lib/guacd
//	menu: /etc/guacd/menu.yaml
//	match_threshold: 0.42
//
// Every field is optional; a missing file yields the defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/signalwire/sigmond-holyguacamole/pkg/menu/match"
)

const (
	appDir     = "guacd"
	configFile = "guacd.yaml"
)

// Config holds the guacd server settings.
type Config struct {
	// Listen is the HTTP listen address for serve.
	Listen string `yaml:"listen"`

	// DataDir is the session database directory. Empty keeps sessions
	// in memory only.
	DataDir string `yaml:"data_dir,omitempty"`

	// Menu is the path to a catalog YAML. Empty uses the built-in menu.
	Menu string `yaml:"menu,omitempty"`

	// MatchThreshold is the vector-stage acceptance threshold.
	MatchThreshold float64 `yaml:"match_threshold,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Listen:         ":8080",
		MatchThreshold: match.DefaultThreshold,
	}
}

// Load reads the configuration from path, or from the default location
// when path is empty. A missing default file is not an error; a missing
// explicit path is.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		base, err := os.UserConfigDir()
		if err != nil {
			return Default(), nil
		}
		path = filepath.Join(base, appDir, configFile)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Listen == "" {
		cfg.Listen = ":8080"
	}
	if cfg.MatchThreshold <= 0 || cfg.MatchThreshold >= 1 {
		return nil, fmt.Errorf("config %s: match_threshold must be in (0, 1)", path)
	}
	return cfg, nil
}
