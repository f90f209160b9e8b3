package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// Environment variable names of the settings every upstream call depends on.
const (
	EnvBotToken = "MATTERMOST_BOT_TOKEN"
	EnvTeamID   = "MATTERMOST_TEAM_ID"
)

// Config holds process-wide settings. It is resolved once at startup and
// never mutated afterwards.
type Config struct {
	MattermostURL   string        `koanf:"mattermost_url"`
	BotToken        string        `koanf:"mattermost_bot_token"`
	TeamID          string        `koanf:"mattermost_team_id"`
	TeamName        string        `koanf:"mattermost_team_name"`
	NewsChannelName string        `koanf:"mattermost_news_channel"`
	NewsChannelID   string        `koanf:"mattermost_news_channel_id"`
	BaseURL         string        `koanf:"base_url"`
	HTTPPort        string        `koanf:"port"`
	UpstreamTimeout time.Duration `koanf:"upstream_timeout"`
	LogLevel        string        `koanf:"log_level"`
}

var configFiles = []string{
	"config.yaml",
	"config.yml",
	"config.json",
	"config.toml",
}

// Load reads configuration from an optional config file, a .env file and the
// process environment, in increasing order of precedence. When path is empty
// the first existing default config file is used.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	configFile := path
	if configFile == "" {
		configFile, _ = lo.Find(configFiles, func(file string) bool {
			_, err := os.Stat(file)
			return err == nil
		})
	}

	if configFile != "" {
		parser, err := parserFor(configFile)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(configFile), parser); err != nil {
			return nil, oops.With("config_file", configFile).Wrap(err)
		}
	}

	// Variables from .env never override the real environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, oops.With("context", "loading .env file").Wrap(err)
	}

	// MATTERMOST_BOT_TOKEN -> mattermost_bot_token
	if err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(s)
	}), nil); err != nil {
		return nil, oops.With("context", "loading environment variables").Wrap(err)
	}

	if !k.Exists("port") {
		k.Set("port", "3000")
	}
	if !k.Exists("upstream_timeout") {
		k.Set("upstream_timeout", "10s")
	}
	if !k.Exists("log_level") {
		k.Set("log_level", "info")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.With("context", "unmarshaling config").Wrap(err)
	}

	cfg.normalize()
	return &cfg, nil
}

func parserFor(configFile string) (koanf.Parser, error) {
	switch ext := filepath.Ext(configFile); ext {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	case ".toml":
		return toml.Parser(), nil
	default:
		return nil, oops.Errorf("unsupported config file extension: %s", ext)
	}
}

func (c *Config) normalize() {
	c.MattermostURL = strings.TrimRight(strings.TrimSpace(c.MattermostURL), "/")
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.HTTPPort == "" {
		c.HTTPPort = "3000"
	}
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:" + c.HTTPPort
	}
	if c.UpstreamTimeout <= 0 {
		c.UpstreamTimeout = 10 * time.Second
	}
}

// Missing returns the environment variable names of required settings that
// are empty. Absence is only reported; upstream calls fail lazily.
func (c *Config) Missing() []string {
	required := map[string]string{
		EnvBotToken: c.BotToken,
		EnvTeamID:   c.TeamID,
	}
	return lo.Filter([]string{EnvBotToken, EnvTeamID}, func(name string, _ int) bool {
		return required[name] == ""
	})
}

// HasChannel reports whether a news channel name or id is configured.
func (c *Config) HasChannel() bool {
	return c.NewsChannelID != "" || c.NewsChannelName != ""
}

// SlogLevel parses LogLevel, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
