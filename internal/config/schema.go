package config

import "fmt"

// Config holds specsift configuration.
// Stored at: {home}/config.yaml
type Config struct {
	Server   ServerCfg   `mapstructure:"server" yaml:"server"`
	Render   RenderCfg   `mapstructure:"render" yaml:"render"`
	Backends BackendsCfg `mapstructure:"backends" yaml:"backends"`
	Keywords KeywordsCfg `mapstructure:"keywords" yaml:"keywords"`
}

// ServerCfg configures the HTTP server.
type ServerCfg struct {
	Host        string   `mapstructure:"host" yaml:"host"`
	Port        int      `mapstructure:"port" yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"` // "*" allows any origin
	MaxUploadMB int64    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
}

// RenderCfg configures page rasterization for the vision backend.
type RenderCfg struct {
	DPI int `mapstructure:"dpi" yaml:"dpi"`
}

// BackendsCfg configures the two extraction backends.
type BackendsCfg struct {
	Text   TextBackendCfg   `mapstructure:"text" yaml:"text"`
	Vision VisionBackendCfg `mapstructure:"vision" yaml:"vision"`
}

// TextBackendCfg configures the workspace-chat text backend.
type TextBackendCfg struct {
	BaseURL        string `mapstructure:"base_url" yaml:"base_url"`
	APIKey         string `mapstructure:"api_key" yaml:"api_key"` // supports ${ENV_VAR} syntax
	Workspace      string `mapstructure:"workspace" yaml:"workspace"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	MaxRetries     int    `mapstructure:"max_retries" yaml:"max_retries"`
	Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
}

// VisionBackendCfg configures the OpenAI-compatible vision backend.
type VisionBackendCfg struct {
	BaseURL        string `mapstructure:"base_url" yaml:"base_url"`
	APIKey         string `mapstructure:"api_key" yaml:"api_key"` // supports ${ENV_VAR} syntax
	Model          string `mapstructure:"model" yaml:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	MaxRetries     int    `mapstructure:"max_retries" yaml:"max_retries"`
	Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
}

// KeywordsCfg extends or narrows the built-in keyword bank.
type KeywordsCfg struct {
	// Extra maps additional category names to their phrase lists. Phrases
	// are merged into the built-in bank at startup.
	Extra map[string][]string `mapstructure:"extra" yaml:"extra"`
	// Disabled lists category names excluded from scoring by default.
	Disabled []string `mapstructure:"disabled" yaml:"disabled"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerCfg{
			Host:        "0.0.0.0",
			Port:        8080,
			CORSOrigins: []string{"*"},
			MaxUploadMB: 500,
		},
		Render: RenderCfg{
			DPI: 200,
		},
		Backends: BackendsCfg{
			Text: TextBackendCfg{
				BaseURL:        "http://localhost:3001",
				APIKey:         "${ANYTHINGLLM_API_KEY}",
				Workspace:      "rfp-extraction",
				TimeoutSeconds: 120,
				MaxRetries:     3,
				Enabled:        true,
			},
			Vision: VisionBackendCfg{
				BaseURL:        "https://open.bigmodel.cn/api/paas/v4",
				APIKey:         "${GLM_API_KEY}",
				Model:          "glm-4.6v-flash",
				TimeoutSeconds: 60,
				MaxRetries:     3,
				Enabled:        true,
			},
		},
		Keywords: KeywordsCfg{},
	}
}

// ListenAddr returns the host:port pair the server binds.
func (c *Config) ListenAddr() string {
	host := c.Server.Host
	if host == "" {
		host = "0.0.0.0"
	}
	port := c.Server.Port
	if port == 0 {
		port = 8080
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// MaxUploadBytes returns the configured upload cap in bytes.
func (c *Config) MaxUploadBytes() int64 {
	mb := c.Server.MaxUploadMB
	if mb <= 0 {
		mb = 500
	}
	return mb << 20
}
