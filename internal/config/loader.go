package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

const defaultSystemPrompt = "You are an air quality analyst for Indian cities. " +
	"Every user message starts with a bracketed summary of the selected city and its zones; " +
	"use it as the current readings."

// Load reads and parses gateway configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg, err := parse(path)
	if err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadClient reads configuration for the terminal client. Only the chat and
// service sections are validated. A missing file yields the defaults.
func LoadClient(path string) (*Config, error) {
	if path == "" {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg, nil
	}
	cfg, err := parse(path)
	if err != nil {
		return nil, err
	}
	if err := validateClient(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func parse(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	interpolated := interpolateEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(interpolated), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Service.Name == "" {
		cfg.Service.Name = "airaware"
	}
	if cfg.Service.LogLevel == "" {
		cfg.Service.LogLevel = "info"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "./data/airaware.db"
	}
	if cfg.API.Listen == "" {
		cfg.API.Listen = "127.0.0.1:8090"
	}
	if cfg.API.StreamHeartbeatInterval == 0 {
		cfg.API.StreamHeartbeatInterval = 15 * time.Second
	}
	if cfg.API.RateLimit.RequestsPerMinute == 0 {
		cfg.API.RateLimit.RequestsPerMinute = 30
	}
	if cfg.API.RateLimit.Burst == 0 {
		cfg.API.RateLimit.Burst = 5
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 1024
	}
	if cfg.LLM.SystemPrompt == "" {
		cfg.LLM.SystemPrompt = defaultSystemPrompt
	}
	if cfg.Chat.Endpoint == "" {
		cfg.Chat.Endpoint = "http://127.0.0.1:8090/v1/chat"
	}
	if cfg.Chat.DashboardURL == "" {
		cfg.Chat.DashboardURL = "http://127.0.0.1:8090"
	}
	if cfg.Chat.Mode == "" {
		cfg.Chat.Mode = "admin"
	}
	if cfg.Chat.City == "" {
		cfg.Chat.City = "del"
	}
	if cfg.Chat.RequestTimeout == 0 {
		cfg.Chat.RequestTimeout = 2 * time.Minute
	}
}

func validate(cfg *Config) error {
	if err := validateService(cfg); err != nil {
		return err
	}
	if cfg.API.Token == "" {
		return fmt.Errorf("api.token is required")
	}
	if err := checkInterpolated("api.token", cfg.API.Token); err != nil {
		return err
	}
	if cfg.API.StreamHeartbeatInterval <= 0 {
		return fmt.Errorf("api.stream_heartbeat_interval must be positive")
	}
	if cfg.API.RateLimit.RequestsPerMinute < 0 || cfg.API.RateLimit.Burst < 0 {
		return fmt.Errorf("api.rate_limit values must not be negative")
	}
	if cfg.LLM.Provider == "" {
		return fmt.Errorf("llm.provider is required")
	}
	if cfg.LLM.Provider != "ollama" && cfg.LLM.APIKey == "" {
		return fmt.Errorf("llm.api_key is required")
	}
	if err := checkInterpolated("llm.api_key", cfg.LLM.APIKey); err != nil {
		return err
	}
	if cfg.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm.max_tokens must be positive")
	}
	return nil
}

func validateClient(cfg *Config) error {
	if err := validateService(cfg); err != nil {
		return err
	}
	if err := checkInterpolated("chat.credential", cfg.Chat.Credential); err != nil {
		return err
	}
	if cfg.Chat.Mode != "admin" && cfg.Chat.Mode != "user" {
		return fmt.Errorf("chat.mode must be one of: admin, user (got %q)", cfg.Chat.Mode)
	}
	if cfg.Chat.RequestTimeout <= 0 {
		return fmt.Errorf("chat.request_timeout must be positive")
	}
	return nil
}

func validateService(cfg *Config) error {
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[cfg.Service.LogLevel] {
		return fmt.Errorf("service.log_level must be one of: debug, info, warn, error (got %q)", cfg.Service.LogLevel)
	}
	return nil
}

// checkInterpolated rejects a value that still holds an unresolved ${VAR}.
func checkInterpolated(field, value string) error {
	if matches := envVarPattern.FindStringSubmatch(value); len(matches) > 1 {
		return fmt.Errorf("%s: environment variable ${%s} is not set", field, matches[1])
	}
	return nil
}

// interpolateEnv replaces ${VAR} with environment variable values.
func interpolateEnv(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		return match
	})
}
