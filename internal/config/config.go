// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Virtuoso Contributors

// Package config loads service configuration from defaults, an optional YAML
// file, environment fallbacks for secrets, and command-line flags (highest
// precedence). The resulting Config is immutable after startup; core
// packages receive its values as constructor arguments.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Environment variables honored as fallbacks for secret-bearing settings, so
// they can be injected without appearing in files or process arguments.
const (
	EnvDatabaseURL = "IDENTITY_DATABASE_URL"
	EnvTokenSecret = "IDENTITY_TOKEN_SECRET"
)

// Config holds runtime settings for the identity service.
type Config struct {
	HTTPAddr    string        `koanf:"http_addr"`
	MetricsAddr string        `koanf:"metrics_addr"`
	DatabaseURL string        `koanf:"database_url"`
	LogFormat   string        `koanf:"log_format"`
	TokenSecret string        `koanf:"token_secret"`
	TokenTTL    time.Duration `koanf:"token_ttl"`
	HashMemory  uint32        `koanf:"hash_memory"` // argon2id memory in KiB
	HashTime    uint32        `koanf:"hash_time"`   // argon2id iterations
	HashThreads uint8         `koanf:"hash_threads"`
	AutoMigrate bool          `koanf:"auto_migrate"`
}

// Default returns the development defaults. TokenSecret and DatabaseURL have
// no defaults; they must be supplied explicitly.
func Default() *Config {
	return &Config{
		HTTPAddr:    ":8080",
		MetricsAddr: "127.0.0.1:9100",
		LogFormat:   "json",
		TokenTTL:    24 * time.Hour,
		HashMemory:  64 * 1024,
		HashTime:    1,
		HashThreads: 4,
	}
}

// Load builds a Config: defaults, then the optional YAML file at path, then
// environment fallbacks for secrets, then any flags changed on the given
// flag set. Flag names use dashes and map to underscore keys
// (e.g. --http-addr sets http_addr).
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_FILE_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	if v := os.Getenv(EnvDatabaseURL); v != "" {
		_ = k.Set("database_url", v) //nolint:errcheck // static key cannot fail
	}
	if v := os.Getenv(EnvTokenSecret); v != "" {
		_ = k.Set("token_secret", v) //nolint:errcheck // static key cannot fail
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrap(err)
	}
	return cfg, nil
}

// Validate checks that settings required to serve are present and sane.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database URL is required (--database-url or %s)", EnvDatabaseURL)
	}
	if c.TokenSecret == "" {
		return oops.Code("CONFIG_INVALID").Errorf("token signing secret is required (--token-secret or %s)", EnvTokenSecret)
	}
	if c.TokenTTL <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("token TTL must be positive, got %s", c.TokenTTL)
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").Errorf("log format must be json or text, got %q", c.LogFormat)
	}
	return nil
}
