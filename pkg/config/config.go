/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/ssargent/binrec/pkg/codec"
)

// Config represents the binrec configuration
type Config struct {
	DataDir string  `yaml:"data_dir"`
	Logging Logging `yaml:"logging"`
	Files   Files   `yaml:"files"`
	Codec   Codec   `yaml:"codec"`
	Metrics Metrics `yaml:"metrics"`
}

// Logging contains logging configuration
type Logging struct {
	Level string `yaml:"level"`
}

// Files contains record file configuration
type Files struct {
	FsyncInterval time.Duration `yaml:"fsync_interval"` // 0 = fsync every record
	BufferSize    int           `yaml:"buffer_size"`
}

// Codec contains decoding limits
type Codec struct {
	MaxPayload int64 `yaml:"max_payload"` // largest accepted length prefix
}

// Metrics contains metrics export configuration
type Metrics struct {
	Textfile string `yaml:"textfile"` // written after each command when set
}

var validLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		DataDir: "./data",
		Logging: Logging{
			Level: "info",
		},
		Files: Files{
			FsyncInterval: 0,
			BufferSize:    4096,
		},
		Codec: Codec{
			MaxPayload: codec.DefaultMaxPayload,
		},
	}
}

// Validate reports the first invalid setting
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("data_dir must be set")
	}
	if !validLevels[c.Logging.Level] {
		return errors.Newf("invalid logging.level %q", c.Logging.Level)
	}
	if c.Files.FsyncInterval < 0 {
		return errors.Newf("files.fsync_interval must not be negative, got %s", c.Files.FsyncInterval)
	}
	if c.Files.BufferSize < 0 {
		return errors.Newf("files.buffer_size must not be negative, got %d", c.Files.BufferSize)
	}
	if c.Codec.MaxPayload < 0 {
		return errors.Newf("codec.max_payload must not be negative, got %d", c.Codec.MaxPayload)
	}
	return nil
}

// StorePath returns the directory of the structure database
func (c *Config) StorePath() string {
	return filepath.Join(c.DataDir, "structures")
}

// LoadConfig loads configuration from the specified path. Settings the file
// leaves out keep their defaults.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, errors.Newf("config file does not exist: %s", configPath)
	}

	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, errors.Wrap(err, "invalid config path")
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config file")
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path with secure permissions
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}

	return nil
}

// BootstrapConfig writes a default configuration rooted at dataDir
func BootstrapConfig(configPath string, dataDir string) (*Config, error) {
	config := DefaultConfig()
	if dataDir != "" {
		config.DataDir = dataDir
	}

	if err := SaveConfig(config, configPath); err != nil {
		return nil, errors.Wrap(err, "failed to save bootstrap config")
	}

	return config, nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./binrec.yaml"
	}

	// For Linux/macOS, use ~/.config/binrec/config.yaml
	configDir := filepath.Join(homeDir, ".config", "binrec")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
