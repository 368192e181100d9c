// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatwire Contributors

package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatwire/chatwire/internal/auth"
	"github.com/chatwire/chatwire/internal/config"
)

func TestServeCmd_FlagsFeedConfig(t *testing.T) {
	cmd := NewServeCmd()
	require.NoError(t, cmd.Flags().Parse([]string{
		"--bot-name=wirebot",
		"--plugins-limit=2",
		"--plugins-disabled=acme/*",
		"--auth-allow-all",
		"--log-format=text",
	}))

	cfg, err := config.Load("", cmd.Flags())
	require.NoError(t, err)
	assert.Equal(t, "wirebot", cfg.Bot.Name)
	assert.Equal(t, 2, cfg.Plugins.Limit)
	assert.Equal(t, []string{"acme/*"}, cfg.Plugins.Disabled)
	assert.True(t, cfg.Auth.AllowAll)
	assert.Equal(t, config.LogFormatText, cfg.Log.Format)
}

func TestServeCmd_DefaultsAreValidWithAllowAll(t *testing.T) {
	cmd := NewServeCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--auth-allow-all"}))

	cfg, err := config.Load("", cmd.Flags())
	require.NoError(t, err)
	assert.Equal(t, "chatwire", cfg.Bot.Name)
	assert.Equal(t, -1, cfg.Plugins.Limit)
}

func TestBuildAuthenticator(t *testing.T) {
	cfg := config.Default()
	cfg.Auth.AllowAll = true
	authn, err := buildAuthenticator(cfg)
	require.NoError(t, err)
	assert.True(t, authn.IsAuthenticated(context.Background(), nil))

	cfg = config.Default()
	cfg.Auth.BaseURL = "https://auth.internal"
	cfg.Auth.Timeout = 2 * time.Second
	authn, err = buildAuthenticator(cfg)
	require.NoError(t, err)
	assert.IsType(t, &auth.HTTPClient{}, authn)
}

func TestPermissiveAuth(t *testing.T) {
	p := permissiveAuth{}
	assert.True(t, p.IsAuthenticated(context.Background(), nil))

	url, err := p.GenerateChallenge(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, url)

	principal, err := p.Principal(context.Background(), "u1")
	require.NoError(t, err)
	assert.Nil(t, principal)
}
