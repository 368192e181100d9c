// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatwire Contributors

// Package config loads chatwire configuration from a YAML file and
// command-line flags. Flags win over the file, the file wins over
// defaults.
package config

import (
	"fmt"
	"time"

	"github.com/gobwas/glob"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Log formats accepted by log.format.
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// Config is the full chatwire configuration tree.
type Config struct {
	Bot     BotConfig     `koanf:"bot"`
	Plugins PluginsConfig `koanf:"plugins"`
	Auth    AuthConfig    `koanf:"auth"`
	Log     LogConfig     `koanf:"log"`
	Metrics MetricsConfig `koanf:"metrics"`
}

// BotConfig identifies the bot on the chat surface.
type BotConfig struct {
	// Name is the handle messages must address, without the leading "@".
	Name string `koanf:"name"`
}

// PluginsConfig controls plugin loading and dispatch.
type PluginsConfig struct {
	// Home is the directory holding plugins.yaml and installed packages.
	// Empty means the platform data directory.
	Home string `koanf:"home"`

	// Limit caps how many matched plugins may respond to one message.
	// Negative means unlimited.
	Limit int `koanf:"limit"`

	// Disabled holds glob patterns of package ids to skip at load time.
	Disabled []string `koanf:"disabled"`
}

// AuthConfig points at the authentication backend.
type AuthConfig struct {
	// BaseURL of the auth backend. Required unless AllowAll is set.
	BaseURL string `koanf:"base_url"`

	// Timeout for each auth backend request.
	Timeout time.Duration `koanf:"timeout"`

	// AllowAll skips the auth backend and treats every sender as
	// authenticated. For local development only.
	AllowAll bool `koanf:"allow_all"`
}

// LogConfig controls log output.
type LogConfig struct {
	// Format is "json" or "text".
	Format string `koanf:"format"`
}

// MetricsConfig controls the observability HTTP server.
type MetricsConfig struct {
	// Addr is the listen address for /metrics and health endpoints.
	// Empty disables the server.
	Addr string `koanf:"addr"`
}

// Default returns the configuration used when neither file nor flags say
// otherwise.
func Default() Config {
	return Config{
		Bot: BotConfig{Name: "chatwire"},
		Plugins: PluginsConfig{
			Limit: -1,
		},
		Auth: AuthConfig{
			Timeout: 5 * time.Second,
		},
		Log:     LogConfig{Format: LogFormatJSON},
		Metrics: MetricsConfig{Addr: "localhost:9090"},
	}
}

// flagKeys maps command-line flag names to configuration keys. Flags not
// listed here never touch the configuration.
var flagKeys = map[string]string{
	"bot-name":         "bot.name",
	"plugins-home":     "plugins.home",
	"plugins-limit":    "plugins.limit",
	"plugins-disabled": "plugins.disabled",
	"auth-base-url":    "auth.base_url",
	"auth-timeout":     "auth.timeout",
	"auth-allow-all":   "auth.allow_all",
	"log-format":       "log.format",
	"metrics-addr":     "metrics.addr",
}

// Load builds the configuration from defaults, then the YAML file at path
// (skipped when path is empty), then any changed flags in flags (skipped
// when nil).
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	cfg := Default()
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return cfg, oops.Code("CONFIG_MISSING").
				With("path", path).
				Wrap(err)
		}
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return cfg, oops.Wrap(err)
		}
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, oops.With("path", path).Wrap(err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the rest of the process
// cannot work with.
func (c Config) Validate() error {
	if c.Bot.Name == "" {
		return fmt.Errorf("bot.name is required")
	}
	if c.Log.Format != LogFormatJSON && c.Log.Format != LogFormatText {
		return fmt.Errorf("log.format must be %q or %q, got %q",
			LogFormatJSON, LogFormatText, c.Log.Format)
	}
	if !c.Auth.AllowAll && c.Auth.BaseURL == "" {
		return fmt.Errorf("auth.base_url is required unless auth.allow_all is set")
	}
	if c.Auth.Timeout <= 0 {
		return fmt.Errorf("auth.timeout must be positive, got %s", c.Auth.Timeout)
	}
	if _, err := c.DisabledGlobs(); err != nil {
		return err
	}
	return nil
}

// DisabledGlobs compiles plugins.disabled into glob matchers.
func (c Config) DisabledGlobs() ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(c.Plugins.Disabled))
	for _, pattern := range c.Plugins.Disabled {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("plugins.disabled pattern %q: %w", pattern, err)
		}
		out = append(out, g)
	}
	return out, nil
}
