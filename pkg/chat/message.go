// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatwire Contributors

package chat

// OutboundMessage is one reply a listener wants sent back to the platform.
type OutboundMessage struct {
	Channel string
	Text    string
}

// Reply builds an outbound message addressed to the channel the given
// context arrived on.
func Reply(msg *Context, text string) OutboundMessage {
	return OutboundMessage{
		Channel: msg.Channel,
		Text:    text,
	}
}
