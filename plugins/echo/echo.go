// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatwire Contributors

// Package echo implements the built-in echo plugin. It replies to every
// message addressed to the bot with the message text, mention stripped.
package echo

import (
	"context"
	"strings"

	"github.com/chatwire/chatwire/pkg/chat"
	"github.com/chatwire/chatwire/pkg/listener"
)

// ListenerName is the name this plugin's listener registers under and the
// name manifests declare.
const ListenerName = "EchoMessageListener"

func init() {
	listener.Register(ListenerName, func() listener.Listener { return &Echo{} })
}

// Echo repeats addressed messages back to the sender's channel.
type Echo struct{}

// Matches accepts every message. Addressing is already checked upstream.
func (*Echo) Matches(_ context.Context, _ *chat.Context) (bool, error) {
	return true, nil
}

// Process echoes the message text with the bot mention removed.
func (*Echo) Process(_ context.Context, msg *chat.Context) ([]chat.OutboundMessage, error) {
	text := msg.Text
	if msg.BotName != "" {
		text = strings.ReplaceAll(text, "@"+msg.BotName, "")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		text = "..."
	}
	return []chat.OutboundMessage{chat.Reply(msg, text)}, nil
}
