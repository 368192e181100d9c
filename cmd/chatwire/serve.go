// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatwire Contributors

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/chatwire/chatwire/internal/auth"
	"github.com/chatwire/chatwire/internal/config"
	"github.com/chatwire/chatwire/internal/dispatch"
	"github.com/chatwire/chatwire/internal/logging"
	"github.com/chatwire/chatwire/internal/observability"
	"github.com/chatwire/chatwire/internal/plugin"
	"github.com/chatwire/chatwire/internal/transport"
	"github.com/chatwire/chatwire/internal/xdg"
	"github.com/chatwire/chatwire/pkg/chat"
	"github.com/chatwire/chatwire/pkg/errutil"

	// Built-in plugins register their listener factories at init.
	_ "github.com/chatwire/chatwire/plugins/echo"
	_ "github.com/chatwire/chatwire/plugins/karma"
)

const serviceName = "chatwire"

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the bot against the stdio transport",
		Long: `Load the plugin manifest, register listeners, and serve inbound
messages from stdin until EOF or an interrupt. Lines are "user<TAB>text"
or bare text attributed to the local user.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	defaults := config.Default()
	cmd.Flags().String("bot-name", defaults.Bot.Name, "handle messages must address (without @)")
	cmd.Flags().String("plugins-home", "", "plugin home directory (default: XDG data dir)")
	cmd.Flags().Int("plugins-limit", defaults.Plugins.Limit, "max plugins responding per message (-1 = unlimited)")
	cmd.Flags().StringSlice("plugins-disabled", nil, "glob patterns of plugin packages to skip")
	cmd.Flags().String("auth-base-url", "", "auth backend base URL")
	cmd.Flags().Duration("auth-timeout", defaults.Auth.Timeout, "auth backend request timeout")
	cmd.Flags().Bool("auth-allow-all", false, "treat every sender as authenticated (development only)")
	cmd.Flags().String("log-format", defaults.Log.Format, "log format (json or text)")
	cmd.Flags().String("metrics-addr", defaults.Metrics.Addr, "metrics/health HTTP address (empty = disabled)")

	return cmd
}

// runServe wires the loaded configuration into a running bot.
func runServe(ctx context.Context, cfg config.Config) error {
	logging.SetDefault(serviceName, version, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	home := cfg.Plugins.Home
	if home == "" {
		home = xdg.PluginsDir()
	}

	slog.Info("starting chatwire",
		"bot_name", cfg.Bot.Name,
		"plugin_home", home,
		"plugin_limit", cfg.Plugins.Limit)

	disabled, err := cfg.DisabledGlobs()
	if err != nil {
		return err
	}

	registry := plugin.NewRegistry()
	loader := plugin.NewLoader(home, registry,
		plugin.WithDisabledPatterns(disabled))
	if report, loadErr := loader.Load(ctx); loadErr != nil {
		// A missing or malformed manifest is not fatal: the bot serves
		// with whatever got registered before the failure.
		errutil.LogWarn(slog.Default(), "plugin load pass failed", loadErr)
	} else {
		slog.Info("plugins loaded",
			"manifest", report.ManifestPath,
			"plugins", report.Plugins,
			"listeners", report.Listeners,
			"skips", len(report.Skips))
	}
	registry.Serve()

	authn, err := buildAuthenticator(cfg)
	if err != nil {
		return err
	}

	var obsErrs <-chan error
	if cfg.Metrics.Addr != "" {
		obs := observability.NewServer(cfg.Metrics.Addr, registry.Serving)
		dispatch.RegisterMetrics(obs.Registry())
		obsErrs, err = obs.Start()
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if stopErr := obs.Stop(shutdownCtx); stopErr != nil {
				slog.Error("observability server shutdown failed", "error", stopErr)
			}
		}()
	}

	var engine *dispatch.Engine
	stdio, err := transport.NewStdio(os.Stdin, os.Stdout, func(ctx context.Context, msg *chat.Context) error {
		return engine.Handle(ctx, msg)
	})
	if err != nil {
		return err
	}

	matcher, err := dispatch.NewMatcher(registry, cfg.Bot.Name)
	if err != nil {
		return err
	}
	dispatcher, err := dispatch.NewDispatcher(stdio, authn,
		dispatch.WithPluginLimit(cfg.Plugins.Limit))
	if err != nil {
		return err
	}
	engine, err = dispatch.NewEngine(registry, matcher, dispatcher)
	if err != nil {
		return err
	}

	slog.Info("serving", "listeners", engine.Listeners())

	runErrs := make(chan error, 1)
	go func() { runErrs <- stdio.Run(ctx) }()

	select {
	case err := <-runErrs:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	case err := <-obsErrs:
		if err != nil {
			return err
		}
	}

	slog.Info("shutting down")
	return nil
}

// buildAuthenticator picks the auth backend the dispatcher consults.
func buildAuthenticator(cfg config.Config) (auth.Authenticator, error) {
	if cfg.Auth.AllowAll {
		slog.Warn("auth.allow_all is set; every sender is treated as authenticated")
		return permissiveAuth{}, nil
	}
	return auth.NewHTTPClient(cfg.Auth.BaseURL,
		auth.WithHTTPTimeout(cfg.Auth.Timeout))
}

// permissiveAuth authenticates everyone. Development only.
type permissiveAuth struct{}

func (permissiveAuth) IsAuthenticated(context.Context, *chat.Context) bool { return true }

func (permissiveAuth) GenerateChallenge(context.Context, string) (string, error) {
	return "", nil
}

func (permissiveAuth) Principal(context.Context, string) (*auth.Principal, error) {
	return nil, nil
}
