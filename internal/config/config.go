package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the runtime configuration of companion.
type Config struct {
	APIURL         string        `mapstructure:"api_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	SessionCookie  string        `mapstructure:"session_cookie"`
	CallbackPort   int           `mapstructure:"callback_port"`
	DataDir        string        `mapstructure:"data_dir"`
	Log            LogConfig     `mapstructure:"log"`

	// Path is the config file that was consulted, whether or not it existed.
	Path string `mapstructure:"-"`
}

// LogConfig controls the log file.
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

const (
	envPrefix = "COMPANION"

	defaultConfigPath     = "~/.config/companion/config.toml"
	defaultAPIURL         = "http://localhost:3000"
	defaultRequestTimeout = 30 * time.Second
	defaultSessionCookie  = "connect.sid"
	defaultCallbackPort   = 8765
	defaultDataDir        = "~/.local/share/companion"
	defaultLogLevel       = "info"
	logFileName           = "companion.log"
)

var validLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Load reads the TOML file at path (or the default location), overlays
// COMPANION_* environment variables and a .env file in the working
// directory, and fills in defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return Config{}, err
	}

	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.SetDefault("api_url", defaultAPIURL)
	v.SetDefault("request_timeout", defaultRequestTimeout)
	v.SetDefault("session_cookie", defaultSessionCookie)
	v.SetDefault("callback_port", defaultCallbackPort)
	v.SetDefault("data_dir", defaultDataDir)
	v.SetDefault("log.file", "")
	v.SetDefault("log.level", defaultLogLevel)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	data, err := os.ReadFile(resolved)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("read config: %w", err)
	default:
		if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Path = resolved
	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	cfg := Config{
		APIURL:         defaultAPIURL,
		RequestTimeout: defaultRequestTimeout,
		SessionCookie:  defaultSessionCookie,
		CallbackPort:   defaultCallbackPort,
		DataDir:        defaultDataDir,
		Log:            LogConfig{Level: defaultLogLevel},
	}
	_ = cfg.normalize()
	return cfg
}

func (c *Config) normalize() error {
	c.APIURL = strings.TrimSpace(c.APIURL)
	if c.APIURL == "" {
		c.APIURL = defaultAPIURL
	}
	c.SessionCookie = strings.TrimSpace(c.SessionCookie)
	if c.SessionCookie == "" {
		c.SessionCookie = defaultSessionCookie
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.CallbackPort < 0 || c.CallbackPort > 65535 {
		return fmt.Errorf("callback_port %d out of range", c.CallbackPort)
	}

	c.DataDir = strings.TrimSpace(c.DataDir)
	if c.DataDir == "" {
		c.DataDir = defaultDataDir
	}
	c.DataDir = mustExpand(c.DataDir)

	c.Log.File = strings.TrimSpace(c.Log.File)
	if c.Log.File == "" {
		c.Log.File = filepath.Join(c.DataDir, logFileName)
	} else {
		c.Log.File = mustExpand(c.Log.File)
	}
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("log.level %q: want debug, info, warn or error", c.Log.Level)
	}
	return nil
}

// PrefsPath returns the preferences file that sits next to the config file.
func (c Config) PrefsPath() string {
	if strings.TrimSpace(c.Path) == "" {
		return mustExpand("~/.config/companion/prefs.toml")
	}
	return filepath.Join(filepath.Dir(c.Path), "prefs.toml")
}

// CallbackURL is the loopback address the login redirect lands on.
func (c Config) CallbackURL() string {
	return fmt.Sprintf("http://127.0.0.1:%d/callback", c.CallbackPort)
}

// loadDotEnv exports variables from path without overriding the existing
// environment. A missing file is ignored.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
