// Package config loads floorplanner settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/floorplanner/config.toml (falling back
// to ~/.config/floorplanner/config.toml). Every key is optional; missing
// keys keep the values of [Default]:
//
//	[target]
//	x = 0.0
//	y = 0.0
//
//	[render]
//	width = 200.0   # mm
//	height = 150.0  # mm
//	formats = ["svg"]
//	labels = true
//	cuts = false
//	scale = 4.0     # PNG pixels per mm
//
//	[cache]
//	backend = "file"   # file | redis | none
//	dir = ""           # default $XDG_CACHE_HOME/floorplanner
//	redis_addr = "localhost:6379"
//	scope = ""         # key namespace when deployments share one Redis
//	ttl = "24h"
//
//	[server]
//	addr = ":8080"
//	read_timeout = "10s"
//	write_timeout = "30s"
//
// Keys the file sets but this package does not know are returned as
// warnings by [Load] rather than failing the load.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/floorplanner/pkg/errors"
)

// AppName names the configuration and cache directories.
const AppName = "floorplanner"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the full configuration.
type Config struct {
	Target TargetConfig `toml:"target"`
	Render RenderConfig `toml:"render"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// TargetConfig is the default net migration target.
type TargetConfig struct {
	X float64 `toml:"x"`
	Y float64 `toml:"y"`
}

// RenderConfig holds drawing defaults.
type RenderConfig struct {
	Width   float64  `toml:"width"`
	Height  float64  `toml:"height"`
	Formats []string `toml:"formats"`
	Labels  bool     `toml:"labels"`
	Cuts    bool     `toml:"cuts"`
	Scale   float64  `toml:"scale"`
	Font    string   `toml:"font"`
}

// CacheConfig selects and configures the result cache.
type CacheConfig struct {
	Backend   string   `toml:"backend"`
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr"`
	Scope     string   `toml:"scope"`
	TTL       Duration `toml:"ttl"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string   `toml:"addr"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
}

// Duration is a time.Duration written as a string such as "90s" or "24h".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText writes the duration in time.Duration's string form.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Render: RenderConfig{
			Width:   200,
			Height:  150,
			Formats: []string{"svg"},
			Labels:  true,
			Scale:   4,
		},
		Cache: CacheConfig{
			Backend:   BackendFile,
			RedisAddr: "localhost:6379",
			TTL:       Duration{24 * time.Hour},
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  Duration{10 * time.Second},
			WriteTimeout: Duration{30 * time.Second},
		},
	}
}

// Path returns the default configuration file path.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// CacheDir returns the default cache directory using the XDG standard
// (~/.cache/floorplanner/).
func CacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// Load reads the configuration file at path on top of [Default].
//
// An empty path means the default location, where a missing file simply
// yields the defaults. An explicit path that does not exist is reported as
// FILE_NOT_FOUND. The returned warnings name keys the file sets that are not
// part of the configuration.
func Load(path string) (Config, []string, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return cfg, nil, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if os.IsNotExist(err) {
		if explicit {
			return Default(), nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return Default(), nil, nil
	}
	if err != nil {
		return Default(), nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "config %s", path)
	}

	var warnings []string
	for _, key := range md.Undecoded() {
		warnings = append(warnings, fmt.Sprintf("%s: unknown key %q", path, key.String()))
	}
	if err := cfg.Validate(); err != nil {
		return Default(), warnings, err
	}
	return cfg, warnings, nil
}

// Decode reads a configuration from r on top of [Default]. Unknown keys
// are ignored.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return Default(), errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// Write encodes cfg as TOML.
func Write(w io.Writer, cfg Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case BackendFile, BackendRedis, BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "cache.backend must be one of file, redis, none; got %q", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache.ttl must not be negative")
	}
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "render size must be positive, got %gx%g", c.Render.Width, c.Render.Height)
	}
	if c.Render.Scale <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "render.scale must be positive, got %g", c.Render.Scale)
	}
	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidInput, "server.addr must not be empty")
	}
	return nil
}
