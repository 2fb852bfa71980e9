// Package config loads console settings from a YAML file, the environment and .env.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. NEWSADMIN_API_URL.
const EnvPrefix = "NEWSADMIN"

type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Tokens  TokensConfig  `mapstructure:"tokens"`
	Log     LogConfig     `mapstructure:"log"`
	Session SessionConfig `mapstructure:"session"`
	Login   LoginConfig   `mapstructure:"login"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type APIConfig struct {
	URL       string        `mapstructure:"url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit"`
	Burst     int           `mapstructure:"burst"`
}

type TokensConfig struct {
	// Path of the token file; empty selects the per-user default.
	Path string `mapstructure:"path"`
	// Passphrase seals the file when set.
	Passphrase string `mapstructure:"passphrase"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

type SessionConfig struct {
	CheckInterval         time.Duration `mapstructure:"check_interval"`
	UnauthorizedThreshold int           `mapstructure:"unauthorized_threshold"`
}

type LoginConfig struct {
	MaxFailures int           `mapstructure:"max_failures"`
	Window      time.Duration `mapstructure:"window"`
	BlockFor    time.Duration `mapstructure:"block_for"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// Load reads configuration. file, when non-empty, must exist; otherwise config.yaml
// is searched in the working directory, ./config and the user config directory.
// Environment variables override file values.
func Load(file string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "newsadmin"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &nf) {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the console cannot start with.
func (c *Config) Validate() error {
	if c.API.URL == "" {
		return errors.New("config: api.url is required")
	}
	if c.API.Timeout <= 0 {
		return errors.New("config: api.timeout must be positive")
	}
	if c.API.RateLimit < 0 || c.API.Burst < 0 {
		return errors.New("config: api.rate_limit and api.burst must not be negative")
	}
	if c.Session.UnauthorizedThreshold < 1 {
		return errors.New("config: session.unauthorized_threshold must be at least 1")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.url", "http://localhost:3000/api")
	v.SetDefault("api.timeout", "30s")
	v.SetDefault("api.rate_limit", 0)
	v.SetDefault("api.burst", 0)

	v.SetDefault("tokens.path", "")
	v.SetDefault("tokens.passphrase", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)

	v.SetDefault("session.check_interval", "30s")
	v.SetDefault("session.unauthorized_threshold", 2)

	v.SetDefault("login.max_failures", 5)
	v.SetDefault("login.window", "15m")
	v.SetDefault("login.block_for", "15m")

	v.SetDefault("metrics.addr", "")
}
