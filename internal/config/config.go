// Package config loads process settings from the environment, after reading
// an optional .env file.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"pyramid-bot/internal/score"
)

func init() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, falling back to system environment variables")
	}
}

type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN"`

	TwitchToken    string   `env:"TWITCH_TOKEN"`
	TwitchNick     string   `env:"TWITCH_NICK"`
	TwitchChannels []string `env:"TWITCH_CHANNELS" envSeparator:","`
	TwitchURL      string   `env:"TWITCH_URL" envDefault:"wss://irc-ws.chat.twitch.tv:443"`

	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"sqlite"`
	StoragePath   string `env:"STORAGE_PATH" envDefault:"data/pyramids.sqlite3"`
	TuningPath    string `env:"TUNING_PATH" envDefault:"tuning.yaml"`

	HTTPAddr      string `env:"HTTP_ADDR"`
	CommandPrefix string `env:"COMMAND_PREFIX" envDefault:"?"`

	LogFile       string `env:"LOG_FILE"`
	LogMaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"100"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"10"`
	LogMaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"30"`
	LogCompress   bool   `env:"LOG_COMPRESS" envDefault:"true"`
	Debug         bool   `env:"DEBUG"`
}

// Load parses the environment into a Config and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	for i, ch := range cfg.TwitchChannels {
		cfg.TwitchChannels[i] = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ch), "#"))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// New is Load for binaries: it exits on an invalid environment.
func New() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("[ERR] Invalid configuration: %v", err)
	}
	return cfg
}

// Validate checks settings shared by every binary.
func (c *Config) Validate() error {
	var errs []error
	switch c.StorageDriver {
	case score.DriverSQLite, score.DriverFile:
	default:
		errs = append(errs, fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", score.DriverSQLite, score.DriverFile, c.StorageDriver))
	}
	if c.StoragePath == "" {
		errs = append(errs, errors.New("STORAGE_PATH is empty"))
	}
	if strings.TrimSpace(c.CommandPrefix) == "" || strings.ContainsAny(c.CommandPrefix, " \t") {
		errs = append(errs, fmt.Errorf("COMMAND_PREFIX %q must be non-empty without spaces", c.CommandPrefix))
	}
	if c.LogMaxSizeMB < 0 || c.LogMaxBackups < 0 || c.LogMaxAgeDays < 0 {
		errs = append(errs, errors.New("log rotation settings must not be negative"))
	}
	return errors.Join(errs...)
}

// RequireDiscord checks the settings of the Discord host.
func (c *Config) RequireDiscord() error {
	if c.DiscordToken == "" {
		return errors.New("DISCORD_TOKEN is not set")
	}
	return nil
}

// RequireTwitch checks the settings of the Twitch host.
func (c *Config) RequireTwitch() error {
	var errs []error
	if c.TwitchToken == "" {
		errs = append(errs, errors.New("TWITCH_TOKEN is not set"))
	}
	if c.TwitchNick == "" {
		errs = append(errs, errors.New("TWITCH_NICK is not set"))
	}
	if len(c.TwitchChannels) == 0 {
		errs = append(errs, errors.New("TWITCH_CHANNELS is empty"))
	}
	return errors.Join(errs...)
}
