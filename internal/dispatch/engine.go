// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatwire Contributors

package dispatch

import (
	"context"
	"log/slog"

	"github.com/chatwire/chatwire/internal/plugin"
	"github.com/chatwire/chatwire/pkg/chat"
	"github.com/chatwire/chatwire/pkg/errutil"
)

// Engine ties the matcher and dispatcher into the single entry point
// transports hand inbound messages to. Construct it after the loader has
// filled the registry and Serve has been called.
type Engine struct {
	registry   *plugin.Registry
	matcher    *Matcher
	dispatcher *Dispatcher
}

// NewEngine creates an engine over an already-loaded registry.
func NewEngine(registry *plugin.Registry, matcher *Matcher, dispatcher *Dispatcher) (*Engine, error) {
	if registry == nil {
		return nil, ErrNilRegistry
	}
	if matcher == nil {
		return nil, ErrNilMatcher
	}
	if dispatcher == nil {
		return nil, ErrNilDispatcher
	}
	return &Engine{
		registry:   registry,
		matcher:    matcher,
		dispatcher: dispatcher,
	}, nil
}

// Listeners returns how many listeners the engine dispatches over.
func (e *Engine) Listeners() int {
	return e.registry.Len()
}

// Handle runs one inbound message through matching and dispatch. A failed
// dispatch is logged and reported, but callers are expected to keep their
// receive loop running; one bad message never stops the process.
func (e *Engine) Handle(ctx context.Context, msg *chat.Context) error {
	set, ok := e.matcher.Match(ctx, msg)
	if !ok {
		RecordMessage(ResultUnmatched)
		return nil
	}

	if err := e.dispatcher.Dispatch(ctx, msg, set); err != nil {
		logger := slog.Default().With(
			"message_id", msg.ID.String(),
			"channel", msg.Channel)
		errutil.LogError(logger, "dispatch failed", err)
		return err
	}
	return nil
}
