// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatwire Contributors

// Package listener defines the contract plugin listeners implement and the
// factory registry plugin packages populate at init time.
package listener

import (
	"context"

	"github.com/chatwire/chatwire/pkg/chat"
)

// Kind identifies what a listener handles.
type Kind string

// Listener kinds, derived from the listener name suffix in the manifest.
const (
	KindMessage Kind = "message"
	KindEvent   Kind = "event"
)

// Listener inspects an inbound message and optionally responds.
// Implementations are instantiated once per load pass and may be invoked
// concurrently for different inbound messages.
type Listener interface {
	// Matches reports whether the listener wants to handle the message.
	// It is expected to be a pure predicate; the context it receives is an
	// independent clone of the inbound context.
	Matches(ctx context.Context, msg *chat.Context) (bool, error)

	// Process handles the message and returns outbound replies in the
	// order they should be sent. It may perform I/O.
	Process(ctx context.Context, msg *chat.Context) ([]chat.OutboundMessage, error)
}

// Factory constructs a listener instance.
type Factory func() Listener
