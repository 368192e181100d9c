// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatwire Contributors

package plugin

import (
	"sync"
	"sync/atomic"

	"github.com/chatwire/chatwire/pkg/listener"
)

// Entry is one registered (plugin, listener) pair.
type Entry struct {
	Name     string
	Kind     listener.Kind
	Listener listener.Listener
	Plugin   *Descriptor
}

// Registry holds registered listeners in registration order.
//
// Registration happens only while the registry is in the loading phase;
// Serve flips it into the serving phase exactly once, after which Register
// fails. Reads during serving take no lock because there are no writers.
type Registry struct {
	mu      sync.Mutex
	entries []Entry
	serving atomic.Bool
}

// NewRegistry creates an empty registry in the loading phase.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends an entry. Duplicate names are allowed and coexist; the
// matcher consults every entry regardless of name. Registering after Serve
// fails with a REGISTRY_SERVING error.
func (r *Registry) Register(e Entry) error {
	if r.serving.Load() {
		return ErrRegistryServing(e.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return nil
}

// Serve transitions the registry into the serving phase. The transition is
// one-way; calling Serve again is a no-op.
func (r *Registry) Serve() {
	r.serving.Store(true)
}

// Serving reports whether the registry has entered the serving phase.
func (r *Registry) Serving() bool {
	return r.serving.Load()
}

// Entries returns all registered entries in registration order.
// The returned slice is a copy and safe to iterate without holding locks.
func (r *Registry) Entries() []Entry {
	if !r.serving.Load() {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of registered entries.
func (r *Registry) Len() int {
	if !r.serving.Load() {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	return len(r.entries)
}
