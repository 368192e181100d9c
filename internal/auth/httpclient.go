// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatwire Contributors

package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/chatwire/chatwire/pkg/chat"
)

// Error codes for auth backend failures.
const (
	CodeAuthBackend = "AUTH_BACKEND"
)

// Default HTTP client behavior for the auth backend.
const (
	defaultTimeout     = 5 * time.Second
	defaultMaxRetries  = 3
	defaultBackoffBase = 200 * time.Millisecond
)

// HTTPClient talks to the auth backend over HTTP. Challenge generation is
// retried with exponential backoff because it is on the user-visible login
// path; session validation is a single round trip and fails closed.
type HTTPClient struct {
	baseURL    string
	client     *http.Client
	maxRetries uint64
}

// HTTPClientOption configures an HTTPClient.
type HTTPClientOption func(*HTTPClient)

// WithHTTPTimeout sets the per-request timeout.
func WithHTTPTimeout(d time.Duration) HTTPClientOption {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets the retry budget for challenge generation.
func WithMaxRetries(n uint64) HTTPClientOption {
	return func(c *HTTPClient) {
		c.maxRetries = n
	}
}

// NewHTTPClient creates an auth client for the given backend base URL.
func NewHTTPClient(baseURL string, opts ...HTTPClientOption) (*HTTPClient, error) {
	if baseURL == "" {
		return nil, oops.Code(CodeAuthBackend).Errorf("auth backend base URL is required")
	}
	c := &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		client:     &http.Client{Timeout: defaultTimeout},
		maxRetries: defaultMaxRetries,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// sessionRequest is the body sent to the validate endpoint.
type sessionRequest struct {
	UserID string `json:"user_id"`
	Token  string `json:"token,omitempty"`
}

// sessionResponse is the validate endpoint's answer.
type sessionResponse struct {
	Authenticated bool `json:"authenticated"`
}

// IsAuthenticated asks the backend to validate the sender's session.
// Any backend failure counts as not authenticated.
func (c *HTTPClient) IsAuthenticated(ctx context.Context, msg *chat.Context) bool {
	body, err := json.Marshal(sessionRequest{UserID: msg.UserID, Token: msg.AuthToken})
	if err != nil {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/sessions/validate", strings.NewReader(string(body)))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		slog.Warn("auth backend unreachable, treating sender as unauthenticated",
			"user_id", msg.UserID,
			"error", err)
		return false
	}
	defer resp.Body.Close() //nolint:errcheck // response body close error is not actionable

	if resp.StatusCode != http.StatusOK {
		return false
	}

	var out sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false
	}
	return out.Authenticated
}

// challengeResponse is the challenge endpoint's answer.
type challengeResponse struct {
	URL string `json:"url"`
}

// GenerateChallenge obtains a login URL for the user, retrying transient
// backend failures with exponential backoff.
func (c *HTTPClient) GenerateChallenge(ctx context.Context, userID string) (string, error) {
	endpoint := c.baseURL + "/v1/challenges?user=" + url.QueryEscape(userID)

	var loginURL string
	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(defaultBackoffBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
		if err != nil {
			return err
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close() //nolint:errcheck // response body close error is not actionable

		if resp.StatusCode >= http.StatusInternalServerError {
			return retry.RetryableError(fmt.Errorf("auth backend returned %d", resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("auth backend returned %d", resp.StatusCode)
		}

		var out challengeResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return err
		}
		if out.URL == "" {
			return fmt.Errorf("auth backend returned empty challenge URL")
		}
		loginURL = out.URL
		return nil
	})
	if err != nil {
		return "", oops.Code(CodeAuthBackend).
			With("operation", "generate challenge").
			With("user_id", userID).
			Wrap(err)
	}
	return loginURL, nil
}

// principalResponse is the principal endpoint's answer.
type principalResponse struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
}

// Principal resolves the backend principal for a chat user. A 404 from
// the backend maps to (nil, nil): no principal, not an error.
func (c *HTTPClient) Principal(ctx context.Context, userID string) (*Principal, error) {
	endpoint := c.baseURL + "/v1/principals/" + url.PathEscape(userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, oops.Code(CodeAuthBackend).Wrap(err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, oops.Code(CodeAuthBackend).
			With("operation", "resolve principal").
			With("user_id", userID).
			Wrap(err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close error is not actionable

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, nil
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512)) //nolint:errcheck // best-effort diagnostic body
		return nil, oops.Code(CodeAuthBackend).
			With("status", resp.StatusCode).
			With("body", string(body)).
			Errorf("unexpected status resolving principal")
	}

	var out principalResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, oops.Code(CodeAuthBackend).Wrap(err)
	}
	return &Principal{ID: out.ID, Name: out.Name, Roles: out.Roles}, nil
}

// Verify interface compliance.
var _ Authenticator = (*HTTPClient)(nil)
