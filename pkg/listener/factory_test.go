// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatwire Contributors

package listener_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatwire/chatwire/pkg/chat"
	"github.com/chatwire/chatwire/pkg/listener"
)

type nopListener struct {
	tag string
}

func (l *nopListener) Matches(_ context.Context, _ *chat.Context) (bool, error) {
	return false, nil
}

func (l *nopListener) Process(_ context.Context, _ *chat.Context) ([]chat.OutboundMessage, error) {
	return nil, nil
}

func TestRegisterAndLookup(t *testing.T) {
	listener.Register("AlphaMessageListener", func() listener.Listener {
		return &nopListener{tag: "alpha"}
	})

	f, ok := listener.Lookup("AlphaMessageListener")
	require.True(t, ok)
	inst, isNop := f().(*nopListener)
	require.True(t, isNop)
	assert.Equal(t, "alpha", inst.tag)
}

func TestLookup_Missing(t *testing.T) {
	_, ok := listener.Lookup("NoSuchMessageListener")
	assert.False(t, ok)
}

func TestRegister_LastWins(t *testing.T) {
	listener.Register("DupMessageListener", func() listener.Listener {
		return &nopListener{tag: "first"}
	})
	listener.Register("DupMessageListener", func() listener.Listener {
		return &nopListener{tag: "second"}
	})

	f, ok := listener.Lookup("DupMessageListener")
	require.True(t, ok)
	assert.Equal(t, "second", f().(*nopListener).tag)
}

func TestNames_Sorted(t *testing.T) {
	listener.Register("ZetaMessageListener", func() listener.Listener { return &nopListener{} })
	listener.Register("BetaEventListener", func() listener.Listener { return &nopListener{} })

	names := listener.Names()
	assert.IsIncreasing(t, names)
	assert.Contains(t, names, "ZetaMessageListener")
	assert.Contains(t, names, "BetaEventListener")
}
