// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatwire Contributors

package plugin_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatwire/chatwire/internal/plugin"
	"github.com/chatwire/chatwire/pkg/chat"
	"github.com/chatwire/chatwire/pkg/errutil"
	"github.com/chatwire/chatwire/pkg/listener"
)

type fakeListener struct {
	name string
}

func (f *fakeListener) Matches(_ context.Context, _ *chat.Context) (bool, error) {
	return true, nil
}

func (f *fakeListener) Process(_ context.Context, _ *chat.Context) ([]chat.OutboundMessage, error) {
	return nil, nil
}

func entry(name string) plugin.Entry {
	return plugin.Entry{
		Name:     name,
		Kind:     listener.KindMessage,
		Listener: &fakeListener{name: name},
		Plugin:   &plugin.Descriptor{Package: "acme/test", Priority: 1},
	}
}

func TestRegistry_OrderPreserved(t *testing.T) {
	reg := plugin.NewRegistry()

	require.NoError(t, reg.Register(entry("AMessageListener")))
	require.NoError(t, reg.Register(entry("BMessageListener")))
	require.NoError(t, reg.Register(entry("CMessageListener")))

	entries := reg.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "AMessageListener", entries[0].Name)
	assert.Equal(t, "BMessageListener", entries[1].Name)
	assert.Equal(t, "CMessageListener", entries[2].Name)
}

func TestRegistry_DuplicateNamesCoexist(t *testing.T) {
	reg := plugin.NewRegistry()

	require.NoError(t, reg.Register(entry("EchoMessageListener")))
	require.NoError(t, reg.Register(entry("EchoMessageListener")))

	assert.Equal(t, 2, reg.Len())
}

func TestRegistry_RegisterAfterServeFails(t *testing.T) {
	reg := plugin.NewRegistry()
	require.NoError(t, reg.Register(entry("AMessageListener")))

	reg.Serve()
	assert.True(t, reg.Serving())

	err := reg.Register(entry("LateMessageListener"))
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, plugin.CodeRegistryServing)
	errutil.AssertErrorContext(t, err, "listener", "LateMessageListener")

	// The late entry was not appended.
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_ServeIsOneWay(t *testing.T) {
	reg := plugin.NewRegistry()
	reg.Serve()
	reg.Serve()
	assert.True(t, reg.Serving())
}

func TestRegistry_EntriesReturnsCopy(t *testing.T) {
	reg := plugin.NewRegistry()
	require.NoError(t, reg.Register(entry("AMessageListener")))

	entries := reg.Entries()
	entries[0].Name = "mutated"

	assert.Equal(t, "AMessageListener", reg.Entries()[0].Name)
}

func TestRegistry_ConcurrentReadsWhileServing(t *testing.T) {
	reg := plugin.NewRegistry()
	for i := 0; i < 8; i++ {
		require.NoError(t, reg.Register(entry("XMessageListener")))
	}
	reg.Serve()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Len(t, reg.Entries(), 8)
		}()
	}
	wg.Wait()
}
