// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatwire Contributors

// Package chat defines the message types exchanged between the chat
// transport, the dispatch core, and plugin listeners.
package chat

import (
	"github.com/oklog/ulid/v2"
)

// PayloadKind identifies the kind of inbound payload.
type PayloadKind string

// Payload kinds delivered by transports.
const (
	KindMessage PayloadKind = "message"
	KindEvent   PayloadKind = "event"
)

// Context carries one inbound message through matching and dispatch.
// It is a value type: listeners receive independent clones, so a listener
// mutating Extra never affects another listener's view or the original.
type Context struct {
	ID        ulid.ULID
	Kind      PayloadKind
	Text      string
	Channel   string
	UserID    string
	UserName  string
	BotName   string
	AuthToken string

	// Plugin is the package id of the plugin whose listener received this
	// clone. Empty on the original inbound context.
	Plugin string

	// Extra holds transport- and listener-scoped auxiliary data.
	Extra map[string]any
}

// NewMessage creates an inbound message context with a fresh id.
func NewMessage(channel, userID, userName, text string) Context {
	return Context{
		ID:       ulid.Make(),
		Kind:     KindMessage,
		Text:     text,
		Channel:  channel,
		UserID:   userID,
		UserName: userName,
		Extra:    make(map[string]any),
	}
}

// Clone returns an independent copy of the context. Nested maps and slices
// inside Extra are copied recursively so clones never alias each other.
func (c Context) Clone() Context {
	out := c
	out.Extra = cloneMap(c.Extra)
	return out
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneMap(val)
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	default:
		// Scalars and everything else copy by value. Listener-supplied
		// pointer values are the listener's own concern.
		return val
	}
}
