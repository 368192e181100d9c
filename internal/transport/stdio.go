// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatwire Contributors

// Package transport contains chat surface adapters. The stdio transport is
// a development stand-in that turns lines on stdin into inbound messages
// and prints outbound messages to stdout.
package transport

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/samber/oops"

	"github.com/chatwire/chatwire/pkg/chat"
)

// StdioChannel is the channel name stamped on messages read from stdin.
const StdioChannel = "stdio"

// localUser is the sender for lines that carry no explicit user prefix.
const localUser = "local"

// Handler receives one inbound message. The engine's Handle method
// satisfies this.
type Handler func(ctx context.Context, msg *chat.Context) error

// Stdio reads inbound messages line by line and writes outbound messages
// back out. Input lines are either "user<TAB>text" or bare text attributed
// to the local user.
type Stdio struct {
	in     io.Reader
	out    io.Writer
	handle Handler

	mu sync.Mutex // guards out
}

// NewStdio creates a stdio transport reading from in and writing to out.
func NewStdio(in io.Reader, out io.Writer, handle Handler) (*Stdio, error) {
	if handle == nil {
		return nil, oops.Errorf("handler must not be nil")
	}
	return &Stdio{in: in, out: out, handle: handle}, nil
}

// Run reads lines until EOF or ctx cancellation, handing each inbound
// message to the handler. Handler errors are per-message; the loop keeps
// running.
func (s *Stdio) Run(ctx context.Context) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(s.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return oops.With("transport", "stdio").Wrap(err)
					}
				default:
				}
				return nil
			}

			msg := parseLine(line)
			if msg == nil {
				continue
			}
			if err := s.handle(ctx, msg); err != nil {
				// Already logged with full context downstream.
				slog.DebugContext(ctx, "message handling failed",
					"message_id", msg.ID.String())
			}
		}
	}
}

// parseLine turns one input line into an inbound context. Blank lines
// produce nothing.
func parseLine(line string) *chat.Context {
	line = strings.TrimRight(line, "\r")
	if strings.TrimSpace(line) == "" {
		return nil
	}

	user, text := localUser, line
	if before, after, found := strings.Cut(line, "\t"); found && strings.TrimSpace(before) != "" {
		user, text = strings.TrimSpace(before), after
	}

	msg := chat.NewMessage(StdioChannel, user, user, text)
	return &msg
}

// Send writes outbound messages to the output writer, one line each.
func (s *Stdio) Send(_ context.Context, _ chat.Context, msgs []chat.OutboundMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range msgs {
		if _, err := fmt.Fprintf(s.out, "[%s] %s\n", m.Channel, m.Text); err != nil {
			return oops.With("transport", "stdio").Wrap(err)
		}
	}
	return nil
}
