package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	ai "github.com/spetersoncode/agentry"
	"github.com/spetersoncode/agentry/model"
	"gopkg.in/yaml.v3"
)

// Config holds the CLI configuration.
//
// Values come from an optional YAML profile (AGENTRY_PROFILE) and are
// then overridden by environment variables. A .env file is loaded first
// if present.
type Config struct {
	LogLevel string `yaml:"log_level"` // debug, info, warn, error

	// Model is a "provider:id" reference or a bare catalog id.
	Model        string `yaml:"model"`
	Instructions string `yaml:"instructions"`

	// API keys are only read from the environment.
	AnthropicKey string `yaml:"-"`
	OpenAIKey    string `yaml:"-"`
	GoogleKey    string `yaml:"-"`

	// Run budgets
	MaxToolRetries   int           `yaml:"max_tool_retries"`
	MaxOutputRetries int           `yaml:"max_output_retries"`
	MaxSteps         int           `yaml:"max_steps"`
	Timeout          time.Duration `yaml:"timeout"`
	ApprovalTimeout  time.Duration `yaml:"approval_timeout"`

	MCPServers []MCPServerConfig `yaml:"mcp_servers"`

	chatModel model.ChatModel
}

// MCPServerConfig describes a remote toolset. Exactly one of Command or
// URL is set.
type MCPServerConfig struct {
	Name    string        `yaml:"name"`
	Command string        `yaml:"command"`
	Args    []string      `yaml:"args"`
	Env     []string      `yaml:"env"`
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
	// SideEffects lists remote tools that need operator approval.
	SideEffects []string `yaml:"side_effects"`
}

func defaultConfig() *Config {
	return &Config{
		LogLevel:         "warn",
		MaxToolRetries:   3,
		MaxOutputRetries: 1,
		MaxSteps:         25,
		Timeout:          5 * time.Minute,
	}
}

// LoadConfig loads the configuration and validates it.
func LoadConfig() (*Config, error) {
	godotenv.Load() // Load .env file if present

	cfg := defaultConfig()
	if path := os.Getenv("AGENTRY_PROFILE"); path != "" {
		if err := cfg.loadProfile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadProfile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read profile: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse profile %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.LogLevel = getEnvOrDefault("AGENTRY_LOG_LEVEL", c.LogLevel)
	c.Model = getEnvOrDefault("MODEL", c.Model)
	c.Instructions = getEnvOrDefault("AGENTRY_INSTRUCTIONS", c.Instructions)
	c.AnthropicKey = os.Getenv(ai.ProviderAnthropic.KeyEnv())
	c.OpenAIKey = os.Getenv(ai.ProviderOpenAI.KeyEnv())
	c.GoogleKey = os.Getenv(ai.ProviderGoogle.KeyEnv())
	c.MaxToolRetries = getEnvIntOrDefault("AGENTRY_MAX_TOOL_RETRIES", c.MaxToolRetries)
	c.MaxOutputRetries = getEnvIntOrDefault("AGENTRY_MAX_OUTPUT_RETRIES", c.MaxOutputRetries)
	c.MaxSteps = getEnvIntOrDefault("AGENTRY_MAX_STEPS", c.MaxSteps)
	c.Timeout = getEnvDurationOrDefault("AGENTRY_TIMEOUT", c.Timeout)
	c.ApprovalTimeout = getEnvDurationOrDefault("AGENTRY_APPROVAL_TIMEOUT", c.ApprovalTimeout)
}

// Validate checks that the configuration is usable and resolves the model.
func (c *Config) Validate() error {
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}

	if c.Model == "" {
		c.chatModel = model.ChatModel{}
		var envs []string
		for _, p := range ai.Providers {
			if c.key(p) != "" {
				c.chatModel, _ = model.DefaultFor(p)
				break
			}
			envs = append(envs, p.KeyEnv())
		}
		if c.chatModel.IsZero() {
			return fmt.Errorf("no API key found: set one of %s", strings.Join(envs, ", "))
		}
	} else {
		m, err := model.Parse(c.Model)
		if err != nil {
			return fmt.Errorf("MODEL: %w", err)
		}
		c.chatModel = m
	}

	if c.key(c.chatModel.Provider()) == "" {
		return fmt.Errorf("no API key configured for %s (required by model %q)", c.chatModel.Provider(), c.chatModel.String())
	}

	if c.MaxToolRetries < 0 {
		return fmt.Errorf("max_tool_retries must not be negative, got %d", c.MaxToolRetries)
	}
	if c.MaxOutputRetries < 0 {
		return fmt.Errorf("max_output_retries must not be negative, got %d", c.MaxOutputRetries)
	}
	if c.MaxSteps < 1 {
		return fmt.Errorf("max_steps must be at least 1, got %d", c.MaxSteps)
	}
	if c.ApprovalTimeout < 0 {
		return fmt.Errorf("approval_timeout must not be negative, got %s", c.ApprovalTimeout)
	}

	for i, s := range c.MCPServers {
		switch {
		case s.Command == "" && s.URL == "":
			return fmt.Errorf("mcp_servers[%d]: command or url is required", i)
		case s.Command != "" && s.URL != "":
			return fmt.Errorf("mcp_servers[%d]: command and url are mutually exclusive", i)
		}
	}
	return nil
}

// ChatModel returns the resolved model. Valid after Validate.
func (c *Config) ChatModel() model.ChatModel {
	return c.chatModel
}

func (c *Config) key(p ai.Provider) string {
	switch p {
	case ai.ProviderAnthropic:
		return c.AnthropicKey
	case ai.ProviderOpenAI:
		return c.OpenAIKey
	case ai.ProviderGoogle:
		return c.GoogleKey
	}
	return ""
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	level, _ := parseLevel(c.LogLevel)
	return level
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s (must be debug, info, warn, or error)", s)
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
