// Package config loads runtime settings from TPLANS_* environment variables
// and an optional config file.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every key when read from the environment, so
// db_path is TPLANS_DB_PATH.
const EnvPrefix = "TPLANS"

// Config holds all runtime configuration.
type Config struct {
	Home         string        `mapstructure:"home"`
	DBPath       string        `mapstructure:"db_path"`
	SessionFile  string        `mapstructure:"session_file"`
	JWTSecret    string        `mapstructure:"jwt_secret"`
	TokenTTL     time.Duration `mapstructure:"token_ttl"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	LogLevel     string        `mapstructure:"log_level"`
	LogFormat    string        `mapstructure:"log_format"`
	LogUseCases  bool          `mapstructure:"log_use_cases"`
}

// DefaultConfig returns the settings used when nothing is overridden.
// Everything lives under home.
func DefaultConfig(home string) Config {
	return Config{
		Home:         home,
		DBPath:       filepath.Join(home, "tplans.db"),
		SessionFile:  filepath.Join(home, "session.json"),
		TokenTTL:     720 * time.Hour,
		PollInterval: 500 * time.Millisecond,
		LogLevel:     "warn",
		LogFormat:    "text",
	}
}

// Load reads configuration from the environment, falling back to defaults
// under ~/.tplans. TPLANS_CONFIG may name a config file (.env, yaml, json or
// toml); its values sit between defaults and environment variables.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := os.Getenv(EnvPrefix + "_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if strings.HasSuffix(path, ".env") {
			v.SetConfigType("env")
		}
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	home := v.GetString("home")
	if home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("finding home directory: %w", err)
		}
		home = filepath.Join(userHome, ".tplans")
	}

	def := DefaultConfig(home)
	v.SetDefault("home", def.Home)
	v.SetDefault("db_path", def.DBPath)
	v.SetDefault("session_file", def.SessionFile)
	v.SetDefault("jwt_secret", "")
	v.SetDefault("token_ttl", def.TokenTTL)
	v.SetDefault("poll_interval", def.PollInterval)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_format", def.LogFormat)
	v.SetDefault("log_use_cases", def.LogUseCases)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings that would make the client misbehave.
func (c Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("config: db_path is required")
	}
	if c.SessionFile == "" {
		return errors.New("config: session_file is required")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("config: token_ttl must be positive, got %s", c.TokenTTL)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("config: poll_interval must be positive, got %s", c.PollInterval)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("config: log_format must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// SecretPath is where a generated signing secret is persisted.
func (c Config) SecretPath() string {
	return filepath.Join(c.Home, "secret")
}

// ResolveJWTSecret returns the configured secret, or the persisted one,
// generating and saving a new secret on first use.
func (c Config) ResolveJWTSecret() ([]byte, error) {
	if c.JWTSecret != "" {
		return []byte(c.JWTSecret), nil
	}
	path := c.SecretPath()
	data, err := os.ReadFile(path)
	if err == nil && len(strings.TrimSpace(string(data))) > 0 {
		return []byte(strings.TrimSpace(string(data))), nil
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading secret: %w", err)
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generating secret: %w", err)
	}
	secret := hex.EncodeToString(buf)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(secret+"\n"), 0600); err != nil {
		return nil, fmt.Errorf("writing secret: %w", err)
	}
	return []byte(secret), nil
}
