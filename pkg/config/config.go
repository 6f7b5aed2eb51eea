// Package config loads bimtower settings.
//
// Settings come from three layers, later ones winning:
//
//  1. built-in defaults ([Default])
//  2. a TOML file, by default $XDG_CONFIG_HOME/bimtower/config.toml
//  3. BIMTOWER_* environment variables
//
// Command-line flags are applied on top by the CLI.
//
// Example file:
//
//	[export]
//	author = "Jane Architect"
//	organization = "Acme"
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//	ttl = "24h"
//
//	[server]
//	addr = ":8080"
//
//	[storage]
//	backend = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/bimtower/pkg/errors"
	"github.com/matzehuels/bimtower/pkg/step"
)

// AppName names the config and cache directories.
const AppName = "bimtower"

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Storage backends.
const (
	StorageMemory = "memory"
	StorageMongo  = "mongo"
)

// Config is the complete bimtower configuration.
type Config struct {
	Export  ExportConfig  `toml:"export"`
	Cache   CacheConfig   `toml:"cache"`
	Server  ServerConfig  `toml:"server"`
	Storage StorageConfig `toml:"storage"`
}

// ExportConfig holds exchange file header defaults. Empty fields fall back
// to the exporter's built-in values.
type ExportConfig struct {
	Description   string `toml:"description,omitempty"`
	Schema        string `toml:"schema,omitempty"`
	Author        string `toml:"author,omitempty"`
	Organization  string `toml:"organization,omitempty"`
	Authorization string `toml:"authorization,omitempty"`
	ProjectName   string `toml:"project_name,omitempty"`

	// Preprocessor and OriginatingSystem default to the build version.
	Preprocessor      string `toml:"preprocessor,omitempty"`
	OriginatingSystem string `toml:"originating_system,omitempty"`
}

// Header returns the configured header values.
func (e ExportConfig) Header() step.Header {
	return step.Header{
		Description:   e.Description,
		Schema:        e.Schema,
		Author:        e.Author,
		Organization:  e.Organization,
		Authorization: e.Authorization,

		PreprocessorVersion: e.Preprocessor,
		OriginatingSystem:   e.OriginatingSystem,
	}
}

// CacheConfig selects the artifact cache.
type CacheConfig struct {
	// Backend is file, redis or none.
	Backend string `toml:"backend"`
	// Dir is the file cache directory (default: XDG cache dir).
	Dir string `toml:"dir,omitempty"`
	// RedisURL is used by the redis backend.
	RedisURL string `toml:"redis_url,omitempty"`
	// TTL bounds how long artifacts are kept.
	TTL Duration `toml:"ttl"`
}

// ServerConfig configures bimtower serve.
type ServerConfig struct {
	Addr         string   `toml:"addr"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
	// MaxBodyBytes limits request bodies (manifests).
	MaxBodyBytes int64 `toml:"max_body_bytes"`
}

// StorageConfig selects where saved models live.
type StorageConfig struct {
	// Backend is memory or mongo.
	Backend  string `toml:"backend"`
	MongoURI string `toml:"mongo_uri,omitempty"`
	Database string `toml:"database"`
}

// Duration is a time.Duration written as a string ("24h", "90s") in TOML.
type Duration struct{ time.Duration }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns a Config with built-in defaults.
func Default() *Config {
	return &Config{
		Cache: CacheConfig{
			Backend: CacheFile,
			TTL:     Duration{7 * 24 * time.Hour},
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  Duration{15 * time.Second},
			WriteTimeout: Duration{60 * time.Second},
			MaxBodyBytes: 10 << 20,
		},
		Storage: StorageConfig{
			Backend:  StorageMemory,
			Database: AppName,
		},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			return errors.New(errors.ErrCodeInvalidInput, "cache.redis_url is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "cache.backend must be file, redis or none, got %q", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache.ttl must not be negative")
	}

	switch c.Storage.Backend {
	case StorageMemory:
	case StorageMongo:
		if c.Storage.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidInput, "storage.mongo_uri is required for the mongo backend")
		}
		if c.Storage.Database == "" {
			return errors.New(errors.ErrCodeInvalidInput, "storage.database is required for the mongo backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "storage.backend must be memory or mongo, got %q", c.Storage.Backend)
	}

	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidInput, "server.addr is required")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "server.max_body_bytes must be positive")
	}
	return nil
}

// Load reads configuration. An empty path means the default location,
// where a missing file is not an error. Environment overrides are applied
// and the result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		dir, err := ConfigDir()
		if err == nil {
			path = filepath.Join(dir, "config.toml")
		}
	}
	if path != "" {
		if err := cfg.loadFile(path, explicit); err != nil {
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string, required bool) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return nil
		}
		if os.IsNotExist(err) {
			return errors.Wrap(errors.ErrCodeNotFound, err, "config file %s", path)
		}
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return errors.New(errors.ErrCodeInvalidInput, "config %s: unknown keys: %v", path, undecoded)
	}
	return nil
}

// WriteFile saves the configuration as TOML, creating parent directories.
func (c *Config) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
