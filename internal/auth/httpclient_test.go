// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatwire Contributors

package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatwire/chatwire/internal/auth"
	"github.com/chatwire/chatwire/pkg/chat"
	"github.com/chatwire/chatwire/pkg/errutil"
)

func newClient(t *testing.T, handler http.Handler) *auth.HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := auth.NewHTTPClient(srv.URL)
	require.NoError(t, err)
	return c
}

func TestNewHTTPClient_RequiresBaseURL(t *testing.T) {
	_, err := auth.NewHTTPClient("")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, auth.CodeAuthBackend)
}

func TestIsAuthenticated(t *testing.T) {
	var gotToken atomic.Value
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/sessions/validate", r.URL.Path)
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotToken.Store(req["token"])
		_ = json.NewEncoder(w).Encode(map[string]bool{"authenticated": req["user_id"] == "u1"})
	}))

	msg := chat.NewMessage("general", "u1", "ada", "hi")
	msg.AuthToken = "tok-1"
	assert.True(t, c.IsAuthenticated(context.Background(), &msg))
	assert.Equal(t, "tok-1", gotToken.Load())

	other := chat.NewMessage("general", "u2", "bob", "hi")
	assert.False(t, c.IsAuthenticated(context.Background(), &other))
}

func TestIsAuthenticated_BackendErrorFailsClosed(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	msg := chat.NewMessage("general", "u1", "ada", "hi")
	assert.False(t, c.IsAuthenticated(context.Background(), &msg))
}

func TestGenerateChallenge(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/challenges", r.URL.Path)
		require.Equal(t, "u1", r.URL.Query().Get("user"))
		_ = json.NewEncoder(w).Encode(map[string]string{"url": "https://auth.example/login/xyz"})
	}))

	url, err := c.GenerateChallenge(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "https://auth.example/login/xyz", url)
}

func TestGenerateChallenge_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"url": "https://auth.example/login/retry"})
	}))

	url, err := c.GenerateChallenge(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "https://auth.example/login/retry", url)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGenerateChallenge_ClientErrorDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))

	_, err := c.GenerateChallenge(context.Background(), "u1")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, auth.CodeAuthBackend)
	assert.Equal(t, int32(1), calls.Load())
}

func TestPrincipal(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/principals/u1":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id": "p-1", "name": "Ada", "roles": []string{"dev"},
			})
		case "/v1/principals/unknown":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusTeapot)
		}
	}))

	p, err := c.Principal(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "p-1", p.ID)
	assert.Equal(t, []string{"dev"}, p.Roles)

	// Unknown user: no principal, no error.
	p, err = c.Principal(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Nil(t, p)

	// Unexpected status is an error.
	_, err = c.Principal(context.Background(), "weird")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, auth.CodeAuthBackend)
}
