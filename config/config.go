// Package config loads the application configuration from a YAML file.
// Values containing ${VAR} references are expanded from the environment
// before decoding, so API keys stay out of the file itself.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Model   ModelConfig   `yaml:"model"`
	Engine  EngineConfig  `yaml:"engine"`
	Tools   ToolsConfig   `yaml:"tools"`
	Store   StoreConfig   `yaml:"store"`
	Server  ServerConfig  `yaml:"server"`
}

// LoggingConfig selects log level and encoding.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
}

// ModelConfig selects the reasoning provider.
type ModelConfig struct {
	Provider string `yaml:"provider"` // openai or anthropic
	ID       string `yaml:"id"`
	APIKey   string `yaml:"api_key"`
}

// Duration decodes YAML strings like "5m" or "90s" into a time.Duration.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)

	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// EngineConfig bounds pipeline execution.
type EngineConfig struct {
	MaxParallelSteps int      `yaml:"max_parallel_steps"`
	RunTimeout       Duration `yaml:"run_timeout"`
}

// ToolEndpoint configures one external tool boundary.
type ToolEndpoint struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// ToolsConfig configures the external tool boundaries.
type ToolsConfig struct {
	Search   ToolEndpoint `yaml:"search"`
	Currency ToolEndpoint `yaml:"currency"`
	Forex    ToolEndpoint `yaml:"forex"`
}

// StoreConfig selects the run store backend.
type StoreConfig struct {
	Driver string `yaml:"driver"` // memory or sqlite
	Path   string `yaml:"path"`   // sqlite database file
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Model:   ModelConfig{Provider: "openai"},
		Engine:  EngineConfig{MaxParallelSteps: 4, RunTimeout: Duration(10 * time.Minute)},
		Store:   StoreConfig{Driver: "memory"},
		Server:  ServerConfig{Addr: ":8080"},
	}
}

// Load reads, env-expands and decodes a YAML config file. Fields the file
// omits keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(raw))

	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.Store.Driver {
	case "memory":
	case "sqlite":
		if c.Store.Path == "" {
			return fmt.Errorf("store: sqlite driver requires a path")
		}
	default:
		return fmt.Errorf("store: unknown driver %q", c.Store.Driver)
	}

	switch c.Model.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("model: unknown provider %q", c.Model.Provider)
	}

	return nil
}
