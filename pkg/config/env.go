package config

import (
	"strconv"
	"time"

	"github.com/matzehuels/bimtower/pkg/errors"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "BIMTOWER_"

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

type envVar struct {
	name string
	set  func(c *Config, v string) error
}

func str(field func(*Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*field(c) = v
		return nil
	}
}

func dur(field func(*Config) *Duration) func(*Config, string) error {
	return func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		field(c).Duration = d
		return nil
	}
}

var envVars = []envVar{
	{"EXPORT_AUTHOR", str(func(c *Config) *string { return &c.Export.Author })},
	{"EXPORT_ORGANIZATION", str(func(c *Config) *string { return &c.Export.Organization })},
	{"EXPORT_AUTHORIZATION", str(func(c *Config) *string { return &c.Export.Authorization })},
	{"EXPORT_PROJECT_NAME", str(func(c *Config) *string { return &c.Export.ProjectName })},
	{"CACHE_BACKEND", str(func(c *Config) *string { return &c.Cache.Backend })},
	{"CACHE_DIR", str(func(c *Config) *string { return &c.Cache.Dir })},
	{"CACHE_TTL", dur(func(c *Config) *Duration { return &c.Cache.TTL })},
	{"REDIS_URL", str(func(c *Config) *string { return &c.Cache.RedisURL })},
	{"SERVER_ADDR", str(func(c *Config) *string { return &c.Server.Addr })},
	{"SERVER_MAX_BODY_BYTES", func(c *Config, v string) error {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return err
		}
		c.Server.MaxBodyBytes = n
		return nil
	}},
	{"STORAGE_BACKEND", str(func(c *Config) *string { return &c.Storage.Backend })},
	{"MONGO_URI", str(func(c *Config) *string { return &c.Storage.MongoURI })},
	{"MONGO_DATABASE", str(func(c *Config) *string { return &c.Storage.Database })},
}

// ApplyEnv overrides settings from BIMTOWER_* variables. Empty values are
// ignored.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	for _, ev := range envVars {
		v, ok := lookup(EnvPrefix + ev.name)
		if !ok || v == "" {
			continue
		}
		if err := ev.set(c, v); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s%s", EnvPrefix, ev.name)
		}
	}
	return nil
}
