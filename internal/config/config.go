package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// Dir is the per-project and per-user configuration directory.
	Dir = ".ladder"

	fileName = "config.yaml"

	// EnvDB overrides db_path.
	EnvDB = "LADDER_DB"
	// EnvActor overrides actor_id.
	EnvActor = "LADDER_ACTOR"
)

// Config represents .ladder/config.yaml.
type Config struct {
	DBPath   string `yaml:"db_path"`
	LogLevel string `yaml:"log_level"`
	ActorID  string `yaml:"actor_id,omitempty"` // Employee ID the CLI acts as

	// AdvanceLevelOnComplete moves an employee to the target level when
	// their promotion completes.
	AdvanceLevelOnComplete *bool `yaml:"advance_level_on_complete,omitempty"`

	// Path is the file the config was read from; empty for defaults.
	Path string `yaml:"-"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	advance := true
	cfg := &Config{
		LogLevel:               "warn",
		AdvanceLevelOnComplete: &advance,
	}
	if home, err := os.UserHomeDir(); err == nil {
		cfg.DBPath = filepath.Join(home, Dir, "ladder.db")
	} else {
		cfg.DBPath = filepath.Join(Dir, "ladder.db")
	}
	return cfg
}

// AdvanceLevel reports the effective advance_level_on_complete setting.
func (c *Config) AdvanceLevel() bool {
	return c.AdvanceLevelOnComplete == nil || *c.AdvanceLevelOnComplete
}

// Load resolves the configuration for dir.
// Resolution order: dir/.ladder/config.yaml, ~/.ladder/config.yaml, defaults.
// Environment overrides are applied last.
func Load(dir string) (*Config, error) {
	candidates := []string{filepath.Join(dir, Dir, fileName)}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, Dir, fileName))
	}

	cfg := Default()
	for _, path := range candidates {
		loaded, err := LoadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		cfg = loaded
		break
	}

	applyEnv(cfg)
	return cfg, nil
}

// LoadFile reads one config file. Unset fields keep their defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = Default().DBPath
	}
	cfg.Path = path
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvDB); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(EnvActor); v != "" {
		cfg.ActorID = v
	}
}

// Save writes cfg to dir/.ladder/config.yaml and returns the path.
func Save(dir string, cfg *Config) (string, error) {
	ladderDir := filepath.Join(dir, Dir)
	if err := os.MkdirAll(ladderDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s dir: %w", Dir, err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(ladderDir, fileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}

	return path, nil
}
