package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/specsift/specsift/internal/backends"
)

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a new config manager and loads initial config.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{
		callbacks: make([]func(*Config), 0),
	}

	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

// initViper sets up viper with defaults and config file.
func (cm *Manager) initViper(cfgFile string) error {
	defaults := DefaultConfig()
	viper.SetDefault("server", defaults.Server)
	viper.SetDefault("render", defaults.Render)
	viper.SetDefault("backends", defaults.Backends)
	viper.SetDefault("keywords", defaults.Keywords)

	// Environment variables with SPECSIFT_ prefix
	viper.SetEnvPrefix("SPECSIFT")
	viper.AutomaticEnv()

	// Config file
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.specsift")
	}

	// Try to read config file (not required)
	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// load parses the current viper state into a Config struct.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading of configuration.
func (cm *Manager) WatchConfig() {
	viper.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			return
		}

		cm.mu.Lock()
		cm.config = cfg
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	viper.WatchConfig()
}

// ResolveEnvVars expands ${ENV_VAR} references in a string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	pattern := regexp.MustCompile(`\$\{([^}]+)\}`)
	return pattern.ReplaceAllStringFunc(value, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}

// ToTextBackendConfig converts the text backend section into client config.
// It resolves ${ENV_VAR} references in the API key.
func (c *Config) ToTextBackendConfig() backends.TextConfig {
	t := c.Backends.Text
	return backends.TextConfig{
		BaseURL:    t.BaseURL,
		APIKey:     ResolveEnvVars(t.APIKey),
		Workspace:  t.Workspace,
		Timeout:    time.Duration(t.TimeoutSeconds) * time.Second,
		MaxRetries: t.MaxRetries,
	}
}

// ToVisionBackendConfig converts the vision backend section into client
// config. It resolves ${ENV_VAR} references in the API key.
func (c *Config) ToVisionBackendConfig() backends.VisionConfig {
	v := c.Backends.Vision
	return backends.VisionConfig{
		BaseURL:    v.BaseURL,
		APIKey:     ResolveEnvVars(v.APIKey),
		Model:      v.Model,
		Timeout:    time.Duration(v.TimeoutSeconds) * time.Second,
		MaxRetries: v.MaxRetries,
	}
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# Specsift configuration
# API keys use ${ENV_VAR} syntax to reference environment variables
# Set these in your shell: export ANYTHINGLLM_API_KEY=xxx GLM_API_KEY=xxx

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
