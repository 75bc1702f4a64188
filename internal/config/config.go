// Package config loads and validates the application's environment
// configuration.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds every environment-sourced setting the application needs.
type Config struct {
	IntegrationsCSV string `env:"INTEGRATIONS"`
	TelegramToken   string `env:"TELEGRAM_TOKEN"`
	DiscordToken    string `env:"DISCORD_TOKEN"`
	DisableSaving   bool   `env:"DISABLE_SAVING" envDefault:"false"`
	DataDir         string `env:"DATA_DIR" envDefault:"./data"`
	LogLevel        string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string `env:"LOG_FORMAT" envDefault:"json"`
	MetricsAddr     string `env:"METRICS_ADDR" envDefault:":9091"`
}

// Integrations splits the comma-separated INTEGRATIONS value into its
// individual, trimmed, lower-cased entries.
func (c *Config) Integrations() []string {
	var out []string
	for _, part := range strings.Split(c.IntegrationsCSV, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) hasIntegration(name string) bool {
	for _, i := range c.Integrations() {
		if i == name {
			return true
		}
	}
	return false
}

// Load reads a .env file (optional) then parses environment variables into
// a Config, applying defaults, and validates the result.
func Load() (*Config, error) {
	// Absence of a .env file is not an error: in production the
	// environment is populated directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks that every enabled integration has the tokens it needs
// and that enum-like fields hold a recognized value. Fails fast, matching
// the rest of the ambient stack's configuration-is-fatal policy.
func (c *Config) Validate() error {
	if len(c.Integrations()) == 0 {
		return fmt.Errorf("INTEGRATIONS must name at least one of: terminal, telegram, discord")
	}

	for _, i := range c.Integrations() {
		switch i {
		case "terminal":
		case "telegram":
			if c.TelegramToken == "" {
				return fmt.Errorf("TELEGRAM_TOKEN is required when INTEGRATIONS includes telegram")
			}
		case "discord":
			if c.DiscordToken == "" {
				return fmt.Errorf("DISCORD_TOKEN is required when INTEGRATIONS includes discord")
			}
		default:
			return fmt.Errorf("unknown integration %q in INTEGRATIONS", i)
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error (got: %s)", c.LogLevel)
	}

	validFormats := map[string]bool{"json": true, "pretty": true}
	if !validFormats[c.LogFormat] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, pretty (got: %s)", c.LogFormat)
	}

	return nil
}

// HasTelegram reports whether the telegram integration is enabled.
func (c *Config) HasTelegram() bool { return c.hasIntegration("telegram") }

// HasDiscord reports whether the discord integration is enabled.
func (c *Config) HasDiscord() bool { return c.hasIntegration("discord") }

// HasTerminal reports whether the terminal integration is enabled.
func (c *Config) HasTerminal() bool { return c.hasIntegration("terminal") }

// Print writes a human-readable configuration dump to stdout, for local
// debugging; production observability should rely on LogConfig instead.
func (c *Config) Print() {
	fmt.Println("=== adwatch Configuration ===")
	fmt.Printf("Integrations:  %s\n", c.IntegrationsCSV)
	fmt.Printf("Data dir:      %s\n", c.DataDir)
	fmt.Printf("Disable saving: %t\n", c.DisableSaving)
	fmt.Printf("Log level:     %s\n", c.LogLevel)
	fmt.Printf("Log format:    %s\n", c.LogFormat)
	fmt.Printf("Metrics addr:  %s\n", c.MetricsAddr)
	fmt.Println("=============================")
}

// LogConfig emits the same information as Print through structured
// logging, for production startup logs.
func (c *Config) LogConfig(logger zerolog.Logger) {
	logger.Info().
		Str("integrations", c.IntegrationsCSV).
		Str("data_dir", c.DataDir).
		Bool("disable_saving", c.DisableSaving).
		Str("log_level", c.LogLevel).
		Str("log_format", c.LogFormat).
		Str("metrics_addr", c.MetricsAddr).
		Msg("configuration loaded")
}
