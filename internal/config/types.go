package config

import "time"

// Config represents the complete airaware configuration. The gateway reads
// service, database, api and llm; the terminal client reads chat.
type Config struct {
	Service  ServiceConfig  `yaml:"service"`
	Database DatabaseConfig `yaml:"database"`
	API      APIConfig      `yaml:"api"`
	LLM      LLMConfig      `yaml:"llm"`
	Chat     ChatConfig     `yaml:"chat"`
}

// ServiceConfig defines core service settings.
type ServiceConfig struct {
	Name     string `yaml:"name"`
	LogLevel string `yaml:"log_level"`
}

// DatabaseConfig defines SQLite storage settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// APIConfig defines HTTP gateway settings.
type APIConfig struct {
	Listen                  string          `yaml:"listen"`
	Token                   string          `yaml:"token"`
	StreamHeartbeatInterval time.Duration   `yaml:"stream_heartbeat_interval"`
	RateLimit               RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig bounds how fast the gateway accepts chat requests.
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
	Burst             int `yaml:"burst"`
}

// LLMConfig defines the LLM provider settings.
type LLMConfig struct {
	Provider     string `yaml:"provider"`
	Model        string `yaml:"model"`
	APIKey       string `yaml:"api_key"`
	BaseURL      string `yaml:"base_url,omitempty"`
	MaxTokens    int    `yaml:"max_tokens"`
	SystemPrompt string `yaml:"system_prompt"`
}

// ChatConfig defines the terminal chat client settings.
type ChatConfig struct {
	Endpoint       string        `yaml:"endpoint"`
	DashboardURL   string        `yaml:"dashboard_url"`
	Credential     string        `yaml:"credential"`
	Mode           string        `yaml:"mode"`
	City           string        `yaml:"city"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}
