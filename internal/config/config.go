package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/ligustah/chunkset/internal/progress"
	"github.com/ligustah/chunkset/pkg/chunk"
)

// Config defines configuration for the chunkset CLI.
type Config struct {
	Storage    string `yaml:"storage"`
	ChunkSize  int64  `yaml:"chunk_size"`
	BufferSize int64  `yaml:"buffer_size"`
	Workers    int    `yaml:"workers"`
	Async      bool   `yaml:"async"`
	Progress   bool   `yaml:"progress"`
	Force      bool   `yaml:"force"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		ChunkSize:  chunk.DefaultChunkSize,
		BufferSize: chunk.DefaultBufferSize,
		Workers:    4,
	}
}

// yamlConfig is used for YAML unmarshaling with string sizes.
type yamlConfig struct {
	Storage    string `yaml:"storage"`
	ChunkSize  string `yaml:"chunk_size"`
	BufferSize string `yaml:"buffer_size"`
	Workers    int    `yaml:"workers"`
	Async      bool   `yaml:"async"`
	Progress   bool   `yaml:"progress"`
	Force      bool   `yaml:"force"`
}

// LoadFromFile loads configuration from a YAML file on top of the defaults.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("config: parse file: %w", err)
	}

	cfg := Default()

	if yc.Storage != "" {
		cfg.Storage = yc.Storage
	}
	if yc.ChunkSize != "" {
		size, err := progress.ParseBytes(yc.ChunkSize)
		if err != nil {
			return Config{}, fmt.Errorf("config: parse chunk_size: %w", err)
		}
		cfg.ChunkSize = size
	}
	if yc.BufferSize != "" {
		size, err := progress.ParseBytes(yc.BufferSize)
		if err != nil {
			return Config{}, fmt.Errorf("config: parse buffer_size: %w", err)
		}
		cfg.BufferSize = size
	}
	if yc.Workers != 0 {
		cfg.Workers = yc.Workers
	}
	cfg.Async = yc.Async
	cfg.Progress = yc.Progress
	cfg.Force = yc.Force

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the CHUNKSET_ prefix.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("CHUNKSET_STORAGE"); v != "" {
		c.Storage = v
	}
	if v := os.Getenv("CHUNKSET_CHUNK_SIZE"); v != "" {
		size, err := progress.ParseBytes(v)
		if err != nil {
			return fmt.Errorf("config: parse CHUNKSET_CHUNK_SIZE: %w", err)
		}
		c.ChunkSize = size
	}
	if v := os.Getenv("CHUNKSET_BUFFER_SIZE"); v != "" {
		size, err := progress.ParseBytes(v)
		if err != nil {
			return fmt.Errorf("config: parse CHUNKSET_BUFFER_SIZE: %w", err)
		}
		c.BufferSize = size
	}
	if v := os.Getenv("CHUNKSET_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: parse CHUNKSET_WORKERS: %w", err)
		}
		c.Workers = n
	}
	if v := os.Getenv("CHUNKSET_ASYNC"); v != "" {
		c.Async = v == "true" || v == "1"
	}
	if v := os.Getenv("CHUNKSET_PROGRESS"); v != "" {
		c.Progress = v == "true" || v == "1"
	}
	if v := os.Getenv("CHUNKSET_FORCE"); v != "" {
		c.Force = v == "true" || v == "1"
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return errors.New("config: chunk_size must be positive")
	}
	if c.BufferSize <= 0 {
		return errors.New("config: buffer_size must be positive")
	}
	if c.Workers <= 0 {
		return errors.New("config: workers must be positive")
	}
	return nil
}

// Merge merges override values into c, returning a new Config.
// Zero values in override are ignored.
func (c Config) Merge(override Config) Config {
	if override.Storage != "" {
		c.Storage = override.Storage
	}
	if override.ChunkSize != 0 {
		c.ChunkSize = override.ChunkSize
	}
	if override.BufferSize != 0 {
		c.BufferSize = override.BufferSize
	}
	if override.Workers != 0 {
		c.Workers = override.Workers
	}
	if override.Async {
		c.Async = override.Async
	}
	if override.Progress {
		c.Progress = override.Progress
	}
	if override.Force {
		c.Force = override.Force
	}
	return c
}
