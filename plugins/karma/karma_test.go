// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatwire Contributors

package karma

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatwire/chatwire/pkg/chat"
	"github.com/chatwire/chatwire/pkg/listener"
)

func TestFactoryRegistered(t *testing.T) {
	f, ok := listener.Lookup(ListenerName)
	require.True(t, ok)
	assert.IsType(t, &Karma{}, f())
}

func TestMatches(t *testing.T) {
	k := New()

	tests := []struct {
		text string
		want bool
	}{
		{text: "@wirebot coffee++", want: true},
		{text: "@wirebot mondays--", want: true},
		{text: "@wirebot hello there", want: false},
		{text: "@wirebot c++ is fine", want: true},
	}

	for _, tt := range tests {
		msg := chat.NewMessage("general", "u1", "ada", tt.text)
		ok, err := k.Matches(context.Background(), &msg)
		require.NoError(t, err)
		assert.Equal(t, tt.want, ok, "text: %q", tt.text)
	}
}

func TestProcess(t *testing.T) {
	k := New()

	msg := chat.NewMessage("general", "u1", "ada", "@wirebot coffee++")
	out, err := k.Process(context.Background(), &msg)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "coffee has 1 karma", out[0].Text)

	msg = chat.NewMessage("general", "u1", "ada", "@wirebot coffee++ mondays--")
	out, err = k.Process(context.Background(), &msg)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "coffee has 2 karma, mondays has -1 karma", out[0].Text)

	assert.Equal(t, 2, k.Score("coffee"))
	assert.Equal(t, -1, k.Score("mondays"))
	assert.Equal(t, 0, k.Score("unknown"))
}

func TestProcess_RepeatedSubject(t *testing.T) {
	k := New()

	msg := chat.NewMessage("general", "u1", "ada", "@wirebot go++ go++ go++")
	out, err := k.Process(context.Background(), &msg)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "go has 3 karma", out[0].Text)
}
