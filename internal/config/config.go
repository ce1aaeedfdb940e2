package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file values.
const (
	EnvEndpoint = "ORDERFORM_ENDPOINT"
	EnvAddr     = "ORDERFORM_ADDR"
)

// ErrInvalid wraps every validation failure; the message names the key.
var ErrInvalid = errors.New("config: invalid value")

// Endpoint locates the order intake service.
type Endpoint struct {
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// Server configures the HTML form server.
type Server struct {
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	SessionTTL      time.Duration `mapstructure:"session_ttl" yaml:"session_ttl"`
	SessionCapacity int           `mapstructure:"session_capacity" yaml:"session_capacity"`
}

// Theme picks the go-theme variant for rendered pages.
type Theme struct {
	Variant string `mapstructure:"variant" yaml:"variant"`
}

// Log configures the zap logger.
type Log struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Development bool   `mapstructure:"development" yaml:"development"`
}

// Config is the full orderform configuration.
type Config struct {
	Endpoint Endpoint `mapstructure:"endpoint" yaml:"endpoint"`
	Server   Server   `mapstructure:"server" yaml:"server"`
	Theme    Theme    `mapstructure:"theme" yaml:"theme"`
	Log      Log      `mapstructure:"log" yaml:"log"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Endpoint: Endpoint{
			BaseURL: "http://localhost:9009",
			Timeout: 10 * time.Second,
		},
		Server: Server{
			Addr:            ":8080",
			SessionTTL:      30 * time.Minute,
			SessionCapacity: 1024,
		},
		Log: Log{
			Level: "info",
		},
	}
}

// Load reads the YAML file at path over the defaults and applies
// environment overrides. An empty path loads defaults and environment only.
func Load(path string) (Config, error) {
	v := newViper()
	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	return decode(v)
}

// Parse is Load for an in-memory YAML document.
func Parse(r io.Reader) (Config, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	def := Default()
	v.SetDefault("endpoint.base_url", def.Endpoint.BaseURL)
	v.SetDefault("endpoint.timeout", def.Endpoint.Timeout)
	v.SetDefault("server.addr", def.Server.Addr)
	v.SetDefault("server.session_ttl", def.Server.SessionTTL)
	v.SetDefault("server.session_capacity", def.Server.SessionCapacity)
	v.SetDefault("theme.variant", def.Theme.Variant)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.development", def.Log.Development)

	_ = v.BindEnv("endpoint.base_url", EnvEndpoint)
	_ = v.BindEnv("server.addr", EnvAddr)
	return v
}

func decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every key and reports the first offending one.
func (c Config) Validate() error {
	u, err := url.Parse(strings.TrimSpace(c.Endpoint.BaseURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: endpoint.base_url %q must be an http(s) URL", ErrInvalid, c.Endpoint.BaseURL)
	}
	if c.Endpoint.Timeout < 0 {
		return fmt.Errorf("%w: endpoint.timeout must not be negative", ErrInvalid)
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("%w: server.addr is required", ErrInvalid)
	}
	if c.Server.SessionTTL <= 0 {
		return fmt.Errorf("%w: server.session_ttl must be positive", ErrInvalid)
	}
	if c.Server.SessionCapacity <= 0 {
		return fmt.Errorf("%w: server.session_capacity must be positive", ErrInvalid)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level %q", ErrInvalid, c.Log.Level)
	}
	return nil
}

// Encode writes cfg as YAML.
func Encode(w io.Writer, cfg Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	return enc.Close()
}

// Logger builds a zap logger for the log section.
func (l Log) Logger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(l.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: log.level %q", ErrInvalid, l.Level)
	}
	zc := zap.NewProductionConfig()
	if l.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	return zc.Build()
}
