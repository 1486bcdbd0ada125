package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lazycamel/lazycamel/internal/models"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Endpoints []models.EndpointProfile `yaml:"endpoints"`
	UI        UIConfig                 `yaml:"ui"`
	Log       LogConfig                `yaml:"log"`
	Mock      MockConfig               `yaml:"mock"`
}

// UIConfig holds UI-related settings
type UIConfig struct {
	Theme     string `yaml:"theme"`
	RefreshMs int    `yaml:"refresh_ms"`
}

// LogConfig controls the log file. The TUI owns the terminal, so logs
// never go to stdout or stderr.
type LogConfig struct {
	File  string `yaml:"file,omitempty"`
	Level string `yaml:"level"`
}

// MockConfig tunes the simulated engine used by --mock and mock-server
type MockConfig struct {
	UpdateInterval time.Duration `yaml:"update_interval"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Endpoints: []models.EndpointProfile{},
		UI: UIConfig{
			Theme:     "auto",
			RefreshMs: 1000,
		},
		Log: LogConfig{
			Level: "info",
		},
		Mock: MockConfig{
			UpdateInterval: time.Second,
		},
	}
}

// ConfigDir returns the configuration directory path
func ConfigDir() (string, error) {
	// Check XDG_CONFIG_HOME first
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "lazycamel"), nil
}

// ConfigPath returns the full path to the config file
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yml"), nil
}

// DefaultLogPath returns $XDG_STATE_HOME/lazycamel/lazycamel.log
func DefaultLogPath() (string, error) {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, "lazycamel", "lazycamel.log"), nil
}

// Load loads the configuration from disk
// Returns the config, whether this is a first run (no config exists), and any error
func Load() (*Config, bool, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// First run - return default config
			return DefaultConfig(), true, nil
		}
		return nil, false, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, false, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	cfg.normalize()

	return cfg, false, nil
}

func (c *Config) normalize() {
	for i := range c.Endpoints {
		if c.Endpoints[i].Namespace == "" {
			c.Endpoints[i].Namespace = models.DefaultNamespace
		}
	}
	if c.Mock.UpdateInterval <= 0 {
		c.Mock.UpdateInterval = time.Second
	}
	if c.UI.RefreshMs <= 0 {
		c.UI.RefreshMs = 1000
	}
}

// Save writes the configuration to disk
func Save(cfg *Config) error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Write atomically: write to temp file, then rename
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}

	return os.Rename(tmpPath, path)
}

// AddEndpoint adds an endpoint, replacing one with the same name
func (c *Config) AddEndpoint(ep models.EndpointProfile) {
	if ep.Namespace == "" {
		ep.Namespace = models.DefaultNamespace
	}
	if existing := c.GetEndpoint(ep.Name); existing != nil {
		*existing = ep
		return
	}
	c.Endpoints = append(c.Endpoints, ep)
}

// GetEndpoint returns an endpoint by name
func (c *Config) GetEndpoint(name string) *models.EndpointProfile {
	for i := range c.Endpoints {
		if c.Endpoints[i].Name == name {
			return &c.Endpoints[i]
		}
	}
	return nil
}

// Resolve picks the endpoint to connect to. target may be a configured
// endpoint name or a ws:// URL; an empty target selects the first configured
// endpoint. namespace overrides the endpoint's namespace when set.
func (c *Config) Resolve(target, namespace string) (models.EndpointProfile, error) {
	var ep models.EndpointProfile
	switch {
	case target == "":
		if len(c.Endpoints) == 0 {
			return ep, errors.New("no endpoint configured, pass --endpoint or add one to config.yml")
		}
		ep = c.Endpoints[0]
	case c.GetEndpoint(target) != nil:
		ep = *c.GetEndpoint(target)
	default:
		ep = models.EndpointProfile{Name: target, URL: target}
	}
	if namespace != "" {
		ep.Namespace = namespace
	}
	if ep.Namespace == "" {
		ep.Namespace = models.DefaultNamespace
	}
	return ep, nil
}
