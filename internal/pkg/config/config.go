package config

import (
	"fmt"
	"os"

	"dr-ipconfig/internal/pkg/logging"

	"gopkg.in/yaml.v3"
)

// DefaultStateDir is where the three record files live when no override is given.
const DefaultStateDir = "/var/lib/dr-ipconfig"

// Config represents the main configuration structure
type Config struct {
	Logging   logging.LogConfig `yaml:"logging"`
	StateDir  string            `yaml:"state_dir"`
	Interface string            `yaml:"interface"` // optional pin; auto-select when empty
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	return &Config{
		Logging: logging.LogConfig{
			Level:  "info",
			Format: "compact",
		},
		StateDir: DefaultStateDir,
	}
}

// Load loads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.StateDir == "" {
		return fmt.Errorf("state_dir must not be empty")
	}
	return nil
}
