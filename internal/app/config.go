package app

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the server configuration. Every field has a usable default;
// a config file and then environment variables override it.
type Config struct {
	Addr      string `yaml:"addr"`
	LevelsDir string `yaml:"levels_dir"`
	// StatsPath is the SQLite file for best times. Empty disables
	// persistence.
	StatsPath string `yaml:"stats_path"`
	// LobbySeed optionally preloads session configurations for
	// deployments without a matchmaking service.
	LobbySeed string `yaml:"lobby_seed"`

	Logging LoggingConfig `yaml:"logging"`
}

type LoggingConfig struct {
	Sinks    []string `yaml:"sinks"`
	JSONPath string   `yaml:"json_path"`
}

func DefaultConfig() Config {
	return Config{
		Addr:      ":8080",
		LevelsDir: "data/levels",
		StatsPath: "data/stats.db",
		Logging: LoggingConfig{
			Sinks: []string{"console"},
		},
	}
}

// LoadConfig reads the YAML file at path over the defaults, then applies
// environment overrides. An empty path skips the file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TRAPRUN_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("TRAPRUN_LEVELS_DIR"); v != "" {
		cfg.LevelsDir = v
	}
	if v := os.Getenv("TRAPRUN_STATS_PATH"); v != "" {
		cfg.StatsPath = v
	}
	if v := os.Getenv("TRAPRUN_LOBBY_SEED"); v != "" {
		cfg.LobbySeed = v
	}
}
