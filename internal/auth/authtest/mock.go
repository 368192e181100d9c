// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatwire Contributors

// Package authtest provides test doubles for the auth capability.
package authtest

import (
	"context"
	"sync"

	"github.com/chatwire/chatwire/internal/auth"
	"github.com/chatwire/chatwire/pkg/chat"
)

// AllowAll is an Authenticator that authenticates everyone.
type AllowAll struct{}

// IsAuthenticated always returns true.
func (AllowAll) IsAuthenticated(_ context.Context, _ *chat.Context) bool { return true }

// GenerateChallenge returns a fixed URL.
func (AllowAll) GenerateChallenge(_ context.Context, _ string) (string, error) {
	return "https://auth.example/login", nil
}

// Principal returns no principal.
func (AllowAll) Principal(_ context.Context, _ string) (*auth.Principal, error) {
	return nil, nil
}

// DenyAll is an Authenticator that authenticates no one.
type DenyAll struct{}

// IsAuthenticated always returns false.
func (DenyAll) IsAuthenticated(_ context.Context, _ *chat.Context) bool { return false }

// GenerateChallenge returns a fixed URL.
func (DenyAll) GenerateChallenge(_ context.Context, _ string) (string, error) {
	return "https://auth.example/login", nil
}

// Principal returns no principal.
func (DenyAll) Principal(_ context.Context, _ string) (*auth.Principal, error) {
	return nil, nil
}

// Mock is an Authenticator with per-user grants and call recording.
type Mock struct {
	mu           sync.Mutex
	authorized   map[string]bool
	principals   map[string]*auth.Principal
	challengeURL string
	challengeErr error
	challenged   []string
}

// NewMock creates a Mock with a default challenge URL.
func NewMock() *Mock {
	return &Mock{
		authorized:   make(map[string]bool),
		principals:   make(map[string]*auth.Principal),
		challengeURL: "https://auth.example/login/abc123",
	}
}

// Authorize marks a user as authenticated.
func (m *Mock) Authorize(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authorized[userID] = true
}

// SetPrincipal sets the principal returned for a user.
func (m *Mock) SetPrincipal(userID string, p *auth.Principal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.principals[userID] = p
}

// SetChallenge overrides the challenge result.
func (m *Mock) SetChallenge(url string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.challengeURL = url
	m.challengeErr = err
}

// Challenged returns the user ids challenges were generated for.
func (m *Mock) Challenged() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.challenged))
	copy(out, m.challenged)
	return out
}

// IsAuthenticated implements Authenticator.
func (m *Mock) IsAuthenticated(_ context.Context, msg *chat.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.authorized[msg.UserID]
}

// GenerateChallenge implements Authenticator.
func (m *Mock) GenerateChallenge(_ context.Context, userID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.challenged = append(m.challenged, userID)
	return m.challengeURL, m.challengeErr
}

// Principal implements Authenticator.
func (m *Mock) Principal(_ context.Context, userID string) (*auth.Principal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.principals[userID], nil
}

// Verify interfaces are satisfied.
var (
	_ auth.Authenticator = AllowAll{}
	_ auth.Authenticator = DenyAll{}
	_ auth.Authenticator = (*Mock)(nil)
)
