// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatwire Contributors

package dispatch

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/chatwire/chatwire/internal/auth"
	"github.com/chatwire/chatwire/pkg/chat"
)

var tracer = otel.Tracer("chatwire/dispatch")

// UnlimitedResponses disables the plugin response limit.
const UnlimitedResponses = -1

// Dispatcher runs the listeners a matching pass selected, gated on sender
// authentication and clipped to the configured plugin response limit.
type Dispatcher struct {
	transport Transport
	auth      auth.Authenticator
	limit     int
}

// DispatcherOption configures a Dispatcher during construction.
type DispatcherOption func(*Dispatcher)

// WithPluginLimit caps how many matched listeners may respond to one
// message. Negative means unlimited; zero means no listener responds.
func WithPluginLimit(n int) DispatcherOption {
	return func(d *Dispatcher) {
		d.limit = n
	}
}

// NewDispatcher creates a dispatcher that delivers replies over transport
// and gates dispatch on authn.
func NewDispatcher(transport Transport, authn auth.Authenticator, opts ...DispatcherOption) (*Dispatcher, error) {
	if transport == nil {
		return nil, ErrNilTransport
	}
	if authn == nil {
		return nil, ErrNilAuthenticator
	}
	d := &Dispatcher{
		transport: transport,
		auth:      authn,
		limit:     UnlimitedResponses,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Dispatch drives the matched listeners in order: Process, then the send,
// awaited before the next listener runs. An error from either stops the
// loop; the rest of the set is not invoked and the message is dropped.
//
// Unauthenticated senders get exactly one login prompt and no listener
// runs for their message.
func (d *Dispatcher) Dispatch(ctx context.Context, msg *chat.Context, set MatchSet) (err error) {
	ctx, span := tracer.Start(ctx, "dispatch.message",
		trace.WithAttributes(
			attribute.String("message.id", msg.ID.String()),
			attribute.Int("match.count", len(set)),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if !d.auth.IsAuthenticated(ctx, msg) {
		span.SetAttributes(attribute.Bool("auth.denied", true))
		AuthDenied.Inc()
		RecordMessage(ResultUnauthenticated)
		err = d.sendChallenge(ctx, msg)
		return err
	}

	// The principal enriches logging only; senders without a backend
	// principal still dispatch.
	principal, perr := d.auth.Principal(ctx, msg.UserID)
	if perr != nil {
		slog.WarnContext(ctx, "principal resolution failed, dispatching without one",
			"user_id", msg.UserID,
			"error", perr)
	}
	if principal != nil {
		span.SetAttributes(attribute.String("principal.id", principal.ID))
	}

	limit := len(set)
	if d.limit >= 0 && d.limit < len(set) {
		limit = d.limit
	}
	span.SetAttributes(attribute.Int("dispatch.effective_limit", limit))

	for i := 0; i < limit; i++ {
		m := set[i]
		name := pluginName(m.Entry)
		start := time.Now()

		out, procErr := m.Entry.Listener.Process(ctx, &m.Msg)
		if procErr != nil {
			RecordListenerInvocation(name, m.Entry.Name, StatusError)
			RecordMessage(ResultFailed)
			err = ErrDispatchFailed(name, m.Entry.Name, procErr)
			return err
		}

		if len(out) > 0 {
			if sendErr := d.transport.Send(ctx, m.Msg, out); sendErr != nil {
				SendFailures.Inc()
				RecordListenerInvocation(name, m.Entry.Name, StatusSendError)
				RecordMessage(ResultFailed)
				err = ErrSendFailed(name, m.Entry.Name, sendErr)
				return err
			}
		}

		RecordListenerInvocation(name, m.Entry.Name, StatusSuccess)
		RecordDispatchDuration(name, time.Since(start))
	}

	RecordMessage(ResultDispatched)
	return nil
}

// sendChallenge delivers the one login prompt an unauthenticated sender
// receives.
func (d *Dispatcher) sendChallenge(ctx context.Context, msg *chat.Context) error {
	loginURL, err := d.auth.GenerateChallenge(ctx, msg.UserID)
	if err != nil {
		return ErrAuthChallengeFailed(msg.UserID, err)
	}

	prompt := chat.Reply(msg, "Please sign in before talking to me: "+loginURL)
	if err := d.transport.Send(ctx, *msg, []chat.OutboundMessage{prompt}); err != nil {
		SendFailures.Inc()
		return ErrSendFailed("", "", err)
	}

	slog.InfoContext(ctx, "sent login challenge",
		"user_id", msg.UserID,
		"channel", msg.Channel)
	return nil
}
