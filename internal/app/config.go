// Package app assembles the bot: configuration, infrastructure, domain
// services and the Telegram run options.
package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "github.com/skupfast/skupbot/core/config"
	coredatabase "github.com/skupfast/skupbot/core/database"
)

// BotConfig holds bot-specific settings outside the reusable core.
type BotConfig struct {
	// DefaultSupportUsername is the support handle shown (and seeded on
	// /register_admin) while none is stored yet.
	DefaultSupportUsername string `yaml:"default_support_username" envconfig:"BOT_DEFAULT_SUPPORT_USERNAME"`
}

// Config is the full application configuration.
type Config struct {
	Core     coreconfig.Config   `yaml:",inline"`
	Database coredatabase.Config `yaml:"database"`
	Bot      BotConfig           `yaml:"bot"`
}

// CoreConfig exposes the embedded core configuration for the shared runner.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Core
}

// LoadConfig reads the YAML file, applies environment overrides and
// normalizes the result.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Core); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.Bot.DefaultSupportUsername) == "" {
		cfg.Bot.DefaultSupportUsername = "skupfast"
	}
	cfg.Bot.DefaultSupportUsername = strings.TrimPrefix(cfg.Bot.DefaultSupportUsername, "@")

	return &cfg, nil
}
