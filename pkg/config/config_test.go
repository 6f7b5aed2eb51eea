package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/bimtower/pkg/errors"
)

func noEnv(string) (string, bool) { return "", false }

func envMap(m map[string]string) LookupFunc {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"redis with url", func(c *Config) { c.Cache.Backend = CacheRedis; c.Cache.RedisURL = "redis://x" }, true},
		{"redis without url", func(c *Config) { c.Cache.Backend = CacheRedis }, false},
		{"unknown cache", func(c *Config) { c.Cache.Backend = "memcached" }, false},
		{"negative ttl", func(c *Config) { c.Cache.TTL = Duration{-time.Second} }, false},
		{"mongo with uri", func(c *Config) { c.Storage.Backend = StorageMongo; c.Storage.MongoURI = "mongodb://x" }, true},
		{"mongo without uri", func(c *Config) { c.Storage.Backend = StorageMongo }, false},
		{"mongo without database", func(c *Config) {
			c.Storage.Backend = StorageMongo
			c.Storage.MongoURI = "mongodb://x"
			c.Storage.Database = ""
		}, false},
		{"unknown storage", func(c *Config) { c.Storage.Backend = "sqlite" }, false},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, false},
		{"zero body limit", func(c *Config) { c.Server.MaxBodyBytes = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			if (err == nil) != tt.ok {
				t.Fatalf("Validate() = %v, want ok=%v", err, tt.ok)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("error code = %s", errors.GetCode(err))
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[export]
author = "Jane Architect"
organization = "Acme"

[cache]
backend = "none"
ttl = "24h"

[server]
addr = "127.0.0.1:9000"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	if err := cfg.loadFile(path, true); err != nil {
		t.Fatalf("loadFile: %v", err)
	}
	if cfg.Export.Author != "Jane Architect" || cfg.Export.Organization != "Acme" {
		t.Errorf("export = %+v", cfg.Export)
	}
	if cfg.Cache.Backend != CacheNone || cfg.Cache.TTL.Duration != 24*time.Hour {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("server.addr = %q", cfg.Server.Addr)
	}
	// untouched sections keep defaults
	if cfg.Storage.Backend != StorageMemory || cfg.Server.MaxBodyBytes != 10<<20 {
		t.Errorf("defaults lost: %+v %+v", cfg.Storage, cfg.Server)
	}
	if h := cfg.Export.Header(); h.Author != "Jane Architect" || h.Description != "" {
		t.Errorf("Header() = %+v", h)
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	missing := filepath.Join(dir, "missing.toml")
	if err := Default().loadFile(missing, false); err != nil {
		t.Errorf("optional missing file: %v", err)
	}
	if err := Default().loadFile(missing, true); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("required missing file: %v", err)
	}

	unknown := filepath.Join(dir, "unknown.toml")
	os.WriteFile(unknown, []byte("[cache]\nbackend = \"file\"\ncolour = \"red\"\n"), 0o644)
	if err := Default().loadFile(unknown, true); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("unknown key: %v", err)
	}

	broken := filepath.Join(dir, "broken.toml")
	os.WriteFile(broken, []byte("[cache\n"), 0o644)
	if err := Default().loadFile(broken, true); err == nil {
		t.Error("broken file accepted")
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"BIMTOWER_CACHE_BACKEND":         "redis",
		"BIMTOWER_REDIS_URL":             "redis://cache:6379/1",
		"BIMTOWER_CACHE_TTL":             "90m",
		"BIMTOWER_EXPORT_AUTHOR":         "CI",
		"BIMTOWER_SERVER_MAX_BODY_BYTES": "1024",
		"BIMTOWER_MONGO_URI":             "",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Cache.Backend != CacheRedis || cfg.Cache.RedisURL != "redis://cache:6379/1" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Cache.TTL.Duration != 90*time.Minute {
		t.Errorf("ttl = %v", cfg.Cache.TTL)
	}
	if cfg.Export.Author != "CI" || cfg.Server.MaxBodyBytes != 1024 {
		t.Errorf("export author %q, max body %d", cfg.Export.Author, cfg.Server.MaxBodyBytes)
	}
	if cfg.Storage.MongoURI != "" {
		t.Error("empty env value should be ignored")
	}

	if err := Default().ApplyEnv(envMap(map[string]string{"BIMTOWER_CACHE_TTL": "soon"})); err == nil {
		t.Error("bad duration accepted")
	}
	if err := Default().ApplyEnv(noEnv); err != nil {
		t.Errorf("no env: %v", err)
	}
}

func TestWriteFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.Export.Author = "Jane"
	cfg.Cache.TTL = Duration{time.Hour}
	if err := cfg.WriteFile(path); err != nil {
		t.Fatal(err)
	}

	got := Default()
	got.Export.Author = ""
	if err := got.loadFile(path, true); err != nil {
		t.Fatal(err)
	}
	if got.Export.Author != "Jane" || got.Cache.TTL.Duration != time.Hour {
		t.Errorf("round trip lost values: %+v", got)
	}
}

func TestDirs(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")

	if d, _ := ConfigDir(); d != filepath.Join("/tmp/xdg-config", AppName) {
		t.Errorf("ConfigDir() = %q", d)
	}
	if d, _ := CacheDir(); d != filepath.Join("/tmp/xdg-cache", AppName) {
		t.Errorf("CacheDir() = %q", d)
	}
}

func TestLoadExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.toml")
	os.WriteFile(path, []byte("[storage]\nbackend = \"mongo\"\n"), 0o644)

	t.Setenv("BIMTOWER_MONGO_URI", "mongodb://db:27017")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Backend != StorageMongo || cfg.Storage.MongoURI != "mongodb://db:27017" {
		t.Errorf("storage = %+v", cfg.Storage)
	}

	os.WriteFile(path, []byte("[storage]\nbackend = \"mongo\"\n"), 0o644)
	t.Setenv("BIMTOWER_MONGO_URI", "")
	if _, err := Load(path); err == nil {
		t.Error("mongo without uri should fail validation")
	}
}
