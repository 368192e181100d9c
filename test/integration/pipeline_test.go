// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatwire Contributors

//go:build integration

package integration

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/chatwire/chatwire/internal/auth/authtest"
	"github.com/chatwire/chatwire/internal/dispatch"
	"github.com/chatwire/chatwire/internal/plugin"
	"github.com/chatwire/chatwire/pkg/chat"

	// Built-in plugins register their listener factories at init.
	_ "github.com/chatwire/chatwire/plugins/echo"
	_ "github.com/chatwire/chatwire/plugins/karma"
)

// memTransport records sends and can fail on demand.
type memTransport struct {
	mu      sync.Mutex
	sends   []chat.OutboundMessage
	failNow bool
}

func (m *memTransport) Send(_ context.Context, _ chat.Context, msgs []chat.OutboundMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNow {
		m.failNow = false
		return errors.New("transport down")
	}
	m.sends = append(m.sends, msgs...)
	return nil
}

func (m *memTransport) texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.sends))
	for i, s := range m.sends {
		out[i] = s.Text
	}
	return out
}

// installPlugin writes an installed package directory under home.
func installPlugin(home, pkg, version string) error {
	dir := filepath.Join(home, filepath.FromSlash(pkg))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	info := "name: " + pkg + "\nversion: " + version + "\n"
	return os.WriteFile(filepath.Join(dir, plugin.PackageFile), []byte(info), 0o600)
}

var _ = Describe("message pipeline", func() {
	const manifest = `
plugins:
  - package: chatwire/echo
    listeners: [EchoMessageListener]
    priority: 2
  - package: chatwire/karma
    listeners: [KarmaMessageListener]
    priority: 1
`

	var (
		registry  *plugin.Registry
		transport *memTransport
		authn     *authtest.Mock
		engine    *dispatch.Engine
		limit     int
	)

	BeforeEach(func() {
		limit = -1
		transport = &memTransport{}
		authn = authtest.NewMock()
		authn.Authorize("ada")
	})

	JustBeforeEach(func() {
		home := GinkgoT().TempDir()
		Expect(os.WriteFile(filepath.Join(home, plugin.ManifestFile), []byte(manifest), 0o600)).To(Succeed())
		Expect(installPlugin(home, "chatwire/echo", "1.0.0")).To(Succeed())
		Expect(installPlugin(home, "chatwire/karma", "1.0.0")).To(Succeed())

		registry = plugin.NewRegistry()
		loader := plugin.NewLoader(home, registry)
		report, err := loader.Load(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Listeners).To(Equal(2))
		Expect(report.Skips).To(BeEmpty())
		registry.Serve()

		matcher, err := dispatch.NewMatcher(registry, "wirebot")
		Expect(err).NotTo(HaveOccurred())
		dispatcher, err := dispatch.NewDispatcher(transport, authn,
			dispatch.WithPluginLimit(limit))
		Expect(err).NotTo(HaveOccurred())
		engine, err = dispatch.NewEngine(registry, matcher, dispatcher)
		Expect(err).NotTo(HaveOccurred())
	})

	handle := func(userID, text string) error {
		msg := chat.NewMessage("general", userID, userID, text)
		return engine.Handle(context.Background(), &msg)
	}

	It("loads listeners in priority order", func() {
		entries := registry.Entries()
		Expect(entries).To(HaveLen(2))
		Expect(entries[0].Plugin.Package).To(Equal("chatwire/karma"))
		Expect(entries[1].Plugin.Package).To(Equal("chatwire/echo"))
	})

	It("replies to an addressed message from an authenticated sender", func() {
		Expect(handle("ada", "@wirebot hello")).To(Succeed())
		Expect(transport.texts()).To(Equal([]string{"hello"}))
	})

	It("ignores unaddressed messages", func() {
		Expect(handle("ada", "just chatting")).To(Succeed())
		Expect(transport.texts()).To(BeEmpty())
	})

	It("prompts unauthenticated senders exactly once and runs no listener", func() {
		Expect(handle("mallory", "@wirebot coffee++")).To(Succeed())

		texts := transport.texts()
		Expect(texts).To(HaveLen(1))
		Expect(texts[0]).To(ContainSubstring("sign in"))
		Expect(authn.Challenged()).To(Equal([]string{"mallory"}))

		// The karma listener never ran: once authenticated, the same vote
		// lands at 1, not 2.
		authn.Authorize("mallory")
		Expect(handle("mallory", "@wirebot coffee++")).To(Succeed())
		Expect(transport.texts()).To(ContainElement("coffee has 1 karma"))
	})

	It("orders plugin responses by priority", func() {
		Expect(handle("ada", "@wirebot coffee++")).To(Succeed())

		texts := transport.texts()
		Expect(texts).To(HaveLen(2))
		Expect(texts[0]).To(Equal("coffee has 1 karma"), "karma has the higher priority")
		Expect(texts[1]).To(Equal("coffee++"), "echo replies second")
	})

	Context("with a plugin response limit of one", func() {
		BeforeEach(func() {
			limit = 1
		})

		It("lets only the highest-priority match respond", func() {
			Expect(handle("ada", "@wirebot coffee++")).To(Succeed())
			Expect(transport.texts()).To(Equal([]string{"coffee has 1 karma"}))
		})
	})

	It("keeps serving after a failed message", func() {
		transport.failNow = true
		Expect(handle("ada", "@wirebot hello")).NotTo(Succeed())

		Expect(handle("ada", "@wirebot still here")).To(Succeed())
		Expect(transport.texts()).To(Equal([]string{"still here"}))
	})

	It("rejects registrations once serving", func() {
		err := registry.Register(plugin.Entry{Name: "LateMessageListener"})
		Expect(err).To(HaveOccurred())
	})
})
