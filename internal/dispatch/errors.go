// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatwire Contributors

package dispatch

import (
	"errors"

	"github.com/samber/oops"
)

// Error codes for dispatch failures.
const (
	CodeAuthChallengeFailed = "AUTH_CHALLENGE_FAILED"
	CodeDispatchFailed      = "DISPATCH_FAILED"
	CodeSendFailed          = "SEND_FAILED"
)

// Construction errors.
var (
	ErrNilRegistry      = errors.New("registry must not be nil")
	ErrNilTransport     = errors.New("transport must not be nil")
	ErrNilAuthenticator = errors.New("authenticator must not be nil")
	ErrNilMatcher       = errors.New("matcher must not be nil")
	ErrNilDispatcher    = errors.New("dispatcher must not be nil")
)

// ErrAuthChallengeFailed creates an error for a failed login challenge.
// The inbound message is dropped; no listener runs.
func ErrAuthChallengeFailed(userID string, cause error) error {
	return oops.Code(CodeAuthChallengeFailed).
		With("user_id", userID).
		Wrap(cause)
}

// ErrDispatchFailed creates an error for a listener whose Process call
// failed. The dispatch loop stops at the failing listener.
func ErrDispatchFailed(pluginName, listenerName string, cause error) error {
	return oops.Code(CodeDispatchFailed).
		With("plugin", pluginName).
		With("listener", listenerName).
		Wrap(cause)
}

// ErrSendFailed creates an error for an outbound delivery failure. The
// dispatch loop stops at the failing send.
func ErrSendFailed(pluginName, listenerName string, cause error) error {
	return oops.Code(CodeSendFailed).
		With("plugin", pluginName).
		With("listener", listenerName).
		Wrap(cause)
}
