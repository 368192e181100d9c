// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatwire Contributors

package dispatch

import (
	"context"
	"log/slog"
	"strings"

	"github.com/chatwire/chatwire/internal/plugin"
	"github.com/chatwire/chatwire/pkg/chat"
	"github.com/chatwire/chatwire/pkg/listener"
)

// Matcher selects the registered listeners that want an inbound message.
type Matcher struct {
	registry *plugin.Registry
	botName  string
}

// NewMatcher creates a matcher over the given registry. botName is the
// handle messages must address.
func NewMatcher(registry *plugin.Registry, botName string) (*Matcher, error) {
	if registry == nil {
		return nil, ErrNilRegistry
	}
	return &Matcher{registry: registry, botName: botName}, nil
}

// Match consults every message listener in registry order and collects the
// ones that accept the message. Each listener sees its own clone of the
// context, so Extra mutations never leak between listeners.
//
// The addressing check is a raw substring match on "@" + botName, so a
// message addressing a longer handle with the bot name as prefix also
// matches.
func (m *Matcher) Match(ctx context.Context, msg *chat.Context) (MatchSet, bool) {
	if msg.Kind != chat.KindMessage {
		slog.InfoContext(ctx, "ignoring non-message payload",
			"message_id", msg.ID.String(),
			"kind", string(msg.Kind))
		return nil, false
	}

	if !strings.Contains(msg.Text, "@"+m.botName) {
		slog.DebugContext(ctx, "message does not address the bot",
			"message_id", msg.ID.String())
		return nil, false
	}

	var set MatchSet
	for _, e := range m.registry.Entries() {
		if e.Kind != listener.KindMessage {
			continue
		}

		clone := msg.Clone()
		clone.BotName = m.botName
		clone.Plugin = pluginName(e)

		ok, err := e.Listener.Matches(ctx, &clone)
		if err != nil {
			RecordListenerInvocation(clone.Plugin, e.Name, StatusMatchError)
			slog.WarnContext(ctx, "listener match failed, skipping",
				"plugin", clone.Plugin,
				"listener", e.Name,
				"message_id", msg.ID.String(),
				"error", err)
			continue
		}
		if ok {
			set = append(set, Match{Entry: e, Msg: clone})
		}
	}
	return set, len(set) > 0
}

func pluginName(e plugin.Entry) string {
	if e.Plugin == nil {
		return ""
	}
	return e.Plugin.Package
}
