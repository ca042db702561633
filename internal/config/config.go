package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default configuration values
const (
	DefaultAddr           = ":8080"
	DefaultPath           = "/ws"
	DefaultRateLimit      = 10.0
	DefaultRateBurst      = 20
	DefaultSendBuffer     = 256
	DefaultMaxMessageSize = 64 * 1024
	DefaultWriteWait      = 10 * time.Second
	DefaultPongWait       = 60 * time.Second
)

// Config holds the relay server configuration
type Config struct {
	// Addr is the listen address, e.g. ":8080"
	Addr string `yaml:"addr"`

	// Path is the websocket endpoint
	Path string `yaml:"path"`

	// AllowedOrigins restricts the Origin header; empty allows all
	AllowedOrigins []string `yaml:"allowed_origins"`

	// Inbound frames per second per connection, and burst. Zero means the
	// default; a negative rate disables the limiter.
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`

	SendBuffer     int           `yaml:"send_buffer"`
	MaxMessageSize int64         `yaml:"max_message_size"`
	WriteWait      time.Duration `yaml:"write_wait"`
	PongWait       time.Duration `yaml:"pong_wait"`

	LogLevel string `yaml:"log_level"`
}

// Options for loading config with CLI flag overrides
type Options struct {
	ConfigFile string
	Addr       string
	Path       string
	Origins    []string
	RateLimit  float64
	RateBurst  int
	LogLevel   string
}

// Load reads configuration with the following priority:
// 1. CLI flags (passed via Options) - highest priority
// 2. Environment variables
// 3. Config file (Options.ConfigFile or SIGNAL_CONFIG)
// 4. Hardcoded defaults - lowest priority
func Load(opts Options) (*Config, error) {
	cfg := &Config{}

	path := opts.ConfigFile
	if path == "" {
		path = os.Getenv("SIGNAL_CONFIG")
	}
	if path != "" {
		fileCfg, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyOptions(opts)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFile reads a YAML config file, expanding ${VAR} references first.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("SIGNAL_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("SIGNAL_PATH"); v != "" {
		c.Path = v
	}
	if v := os.Getenv("SIGNAL_ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("SIGNAL_RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("SIGNAL_RATE_LIMIT: %w", err)
		}
		c.RateLimit = f
	}
	if v := os.Getenv("SIGNAL_RATE_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SIGNAL_RATE_BURST: %w", err)
		}
		c.RateBurst = n
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	return nil
}

func (c *Config) applyOptions(opts Options) {
	if opts.Addr != "" {
		c.Addr = opts.Addr
	}
	if opts.Path != "" {
		c.Path = opts.Path
	}
	if len(opts.Origins) > 0 {
		c.AllowedOrigins = opts.Origins
	}
	if opts.RateLimit != 0 {
		c.RateLimit = opts.RateLimit
	}
	if opts.RateBurst > 0 {
		c.RateBurst = opts.RateBurst
	}
	if opts.LogLevel != "" {
		c.LogLevel = opts.LogLevel
	}
}

func (c *Config) applyDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.Path == "" {
		c.Path = DefaultPath
	}
	if c.RateLimit == 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.RateBurst == 0 {
		c.RateBurst = DefaultRateBurst
	}
	if c.SendBuffer == 0 {
		c.SendBuffer = DefaultSendBuffer
	}
	if c.MaxMessageSize == 0 {
		c.MaxMessageSize = DefaultMaxMessageSize
	}
	if c.WriteWait == 0 {
		c.WriteWait = DefaultWriteWait
	}
	if c.PongWait == 0 {
		c.PongWait = DefaultPongWait
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Path, "/") {
		return fmt.Errorf("path %q must start with /", c.Path)
	}
	if c.RateBurst < 0 {
		return fmt.Errorf("rate_burst must not be negative")
	}
	if c.SendBuffer < 0 {
		return fmt.Errorf("send_buffer must not be negative")
	}
	if c.MaxMessageSize < 0 {
		return fmt.Errorf("max_message_size must not be negative")
	}
	return nil
}

// OriginAllowed reports whether a browser origin may connect.
func (c *Config) OriginAllowed(origin string) bool {
	if len(c.AllowedOrigins) == 0 || origin == "" {
		return true
	}
	for _, o := range c.AllowedOrigins {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
