// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatwire Contributors

// Package dispatch matches inbound chat messages against registered plugin
// listeners and drives the listeners that accepted them.
package dispatch

import (
	"context"

	"github.com/chatwire/chatwire/internal/plugin"
	"github.com/chatwire/chatwire/pkg/chat"
)

// Transport delivers outbound messages back to the chat surface.
type Transport interface {
	// Send delivers msgs in order. The to context identifies the
	// conversation the replies belong to.
	Send(ctx context.Context, to chat.Context, msgs []chat.OutboundMessage) error
}

// Match pairs a registry entry with the context clone its listener accepted.
// The clone is the exact value the listener's Matches saw; Process receives
// the same clone.
type Match struct {
	Entry plugin.Entry
	Msg   chat.Context
}

// MatchSet is the ordered result of one matching pass. Order follows the
// registry, which the loader filled in priority order.
type MatchSet []Match
