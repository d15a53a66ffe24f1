// Package config handles application configuration from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the bridge looks for its config file.
const DefaultPath = "./smartread.yaml"

// Config represents the application configuration.
type Config struct {
	Server     ServerConfig    `yaml:"server"`
	Storage    StorageConfig   `yaml:"storage"`
	LLM        LLMConfig       `yaml:"llm"`
	Device     DeviceConfig    `yaml:"device"`
	History    HistoryConfig   `yaml:"history"`
	RateLimits RateLimitConfig `yaml:"rate_limits"`
	Logging    LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	AuthToken string `yaml:"auth_token"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type StorageConfig struct {
	Driver string `yaml:"driver"` // sqlite, memory
	Path   string `yaml:"path"`   // for sqlite
}

type LLMConfig struct {
	Timeout      time.Duration             `yaml:"timeout"`
	MaxRetries   int                       `yaml:"max_retries"`
	RetryBackoff time.Duration             `yaml:"retry_backoff"`
	Temperature  float64                   `yaml:"temperature"`
	MaxTokens    int                       `yaml:"max_tokens"`
	ProxyURL     string                    `yaml:"proxy_url"`
	NoProxy      string                    `yaml:"no_proxy"`
	Providers    map[string]ProviderConfig `yaml:"providers"`
}

// Provider returns the settings for a provider, or the zero value.
func (c *LLMConfig) Provider(name string) ProviderConfig {
	if c == nil || c.Providers == nil {
		return ProviderConfig{}
	}
	return c.Providers[name]
}

type ProviderConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// DeviceConfig overrides fingerprint components. Omitted fields are detected.
type DeviceConfig struct {
	UserAgent           string `yaml:"user_agent"`
	Language            string `yaml:"language"`
	HardwareConcurrency *int   `yaml:"hardware_concurrency"`
	ScreenWidth         *int   `yaml:"screen_width"`
	ScreenHeight        *int   `yaml:"screen_height"`
	ColorDepth          *int   `yaml:"color_depth"`
	TimezoneOffset      *int   `yaml:"timezone_offset"`
}

type HistoryConfig struct {
	MaxEntries int `yaml:"max_entries"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8787,
		},
		Storage: StorageConfig{
			Driver: "sqlite",
			Path:   "./data/smartread.db",
		},
		LLM: DefaultLLMConfig(),
		History: HistoryConfig{
			MaxEntries: 100,
		},
		RateLimits: RateLimitConfig{
			RequestsPerMinute: 30,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// DefaultLLMConfig returns the engine dispatch defaults.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Timeout:      10 * time.Second,
		MaxRetries:   2,
		RetryBackoff: time.Second,
		Temperature:  0.3,
		MaxTokens:    1000,
		Providers: map[string]ProviderConfig{
			"gpt4":     {BaseURL: "https://api.openai.com/v1", Model: "gpt-4"},
			"claude":   {BaseURL: "https://api.anthropic.com", Model: "claude-3-sonnet-20240229"},
			"moonshot": {BaseURL: "https://api.moonshot.cn/v1", Model: "moonshot-v1-8k"},
		},
	}
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s (run with --generate-config to create one)", path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Interpolate environment variables
	content := interpolateEnvVars(string(data))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.fillProviderDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// fillProviderDefaults keeps default endpoints for providers the file only
// partially describes.
func (c *Config) fillProviderDefaults() {
	defaults := DefaultLLMConfig().Providers
	if c.LLM.Providers == nil {
		c.LLM.Providers = defaults
		return
	}
	for name, def := range defaults {
		p := c.LLM.Providers[name]
		if p.BaseURL == "" {
			p.BaseURL = def.BaseURL
		}
		if p.Model == "" {
			p.Model = def.Model
		}
		c.LLM.Providers[name] = p
	}
}

// GenerateSample creates a sample configuration file.
func GenerateSample(path string) error {
	sample := `# SmartRead Configuration

server:
  host: 127.0.0.1
  port: 8787
  # auth_token: ${SMARTREAD_TOKEN}

storage:
  driver: sqlite  # sqlite or memory
  path: ./data/smartread.db

llm:
  timeout: 10s
  max_retries: 2
  retry_backoff: 1s
  temperature: 0.3
  max_tokens: 1000
  # proxy_url: http://127.0.0.1:7890
  # no_proxy: localhost,127.0.0.1
  providers:
    gpt4:
      base_url: https://api.openai.com/v1
      model: gpt-4
    claude:
      base_url: https://api.anthropic.com
      model: claude-3-sonnet-20240229
    moonshot:
      base_url: https://api.moonshot.cn/v1
      model: moonshot-v1-8k

# Device fingerprint used to derive the key that encrypts stored API keys.
# Changing any of these makes previously saved keys unreadable.
device:
  # user_agent: ""
  # language: zh-CN
  # screen_width: 1920
  # screen_height: 1080
  # color_depth: 24
  # timezone_offset: 0

history:
  max_entries: 100

rate_limits:
  requests_per_minute: 30

logging:
  level: info  # debug, info, warn, error
  format: json # json or text
`
	return os.WriteFile(path, []byte(sample), 0644)
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	if c.Storage.Driver != "sqlite" && c.Storage.Driver != "memory" {
		return fmt.Errorf("unsupported storage driver: %s", c.Storage.Driver)
	}
	if c.Storage.Driver == "sqlite" && c.Storage.Path == "" {
		return fmt.Errorf("sqlite storage requires a path")
	}

	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("llm timeout must be positive, got %s", c.LLM.Timeout)
	}
	if c.LLM.MaxRetries < 0 {
		return fmt.Errorf("llm max_retries must not be negative, got %d", c.LLM.MaxRetries)
	}
	if c.LLM.RetryBackoff < 0 {
		return fmt.Errorf("llm retry_backoff must not be negative, got %s", c.LLM.RetryBackoff)
	}

	validProviders := map[string]bool{"gpt4": true, "claude": true, "wenxin": true, "moonshot": true}
	for name := range c.LLM.Providers {
		if !validProviders[name] {
			return fmt.Errorf("unsupported LLM provider: %s", name)
		}
	}

	if c.History.MaxEntries < 1 {
		return fmt.Errorf("history max_entries must be positive, got %d", c.History.MaxEntries)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("unsupported log level: %s", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("unsupported log format: %s", c.Logging.Format)
	}

	return nil
}

// interpolateEnvVars replaces ${VAR_NAME} with environment variable values.
func interpolateEnvVars(content string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(content, func(match string) string {
		varName := strings.TrimPrefix(strings.TrimSuffix(match, "}"), "${")
		if value := os.Getenv(varName); value != "" {
			return value
		}
		return match // Keep original if not set
	})
}
