// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatwire Contributors

package listener

import (
	"log/slog"
	"sort"
	"sync"
)

// factories maps listener names to their constructors. Plugin packages
// register here from init, before the loader runs.
var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// Register adds a listener factory under the given name.
// If a factory with the same name exists, it is overwritten and a warning
// is logged: last-registered wins.
func Register(name string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()

	if _, ok := factories[name]; ok {
		slog.Warn("listener factory conflict: overwriting existing factory",
			"listener", name)
	}
	factories[name] = f
}

// Lookup returns the factory registered under name.
func Lookup(name string) (Factory, bool) {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	f, ok := factories[name]
	return f, ok
}

// Names returns all registered factory names, sorted.
func Names() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
