// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatwire Contributors

// Package auth defines the authentication capability the dispatch core
// consults before invoking any plugin listener. The backend that answers
// these calls lives outside this repository.
package auth

import (
	"context"

	"github.com/chatwire/chatwire/pkg/chat"
)

// Principal is the backend identity associated with an authenticated chat
// user.
type Principal struct {
	ID    string
	Name  string
	Roles []string
}

// Authenticator is the external auth capability.
type Authenticator interface {
	// IsAuthenticated reports whether the sender of msg has a valid
	// session. Backend failures count as not authenticated.
	IsAuthenticated(ctx context.Context, msg *chat.Context) bool

	// GenerateChallenge returns a login URL the unauthenticated user can
	// follow to establish a session.
	GenerateChallenge(ctx context.Context, userID string) (string, error)

	// Principal resolves the backend principal for a chat user. A nil
	// principal with a nil error means the backend knows no mapping;
	// callers tolerate that.
	Principal(ctx context.Context, userID string) (*Principal, error)
}
