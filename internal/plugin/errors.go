// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatwire Contributors

package plugin

import (
	"github.com/samber/oops"
)

// Error codes for plugin load failures.
const (
	CodeConfigMissing   = "CONFIG_MISSING"
	CodeManifestParse   = "MANIFEST_PARSE"
	CodeRegistryServing = "REGISTRY_SERVING"
)

// ErrConfigMissing creates an error for a load pass with no manifest to
// read: neither the plugin-home manifest nor a bundled fallback exists.
func ErrConfigMissing(home string) error {
	return oops.Code(CodeConfigMissing).
		With("plugin_home", home).
		Errorf("no plugin manifest found")
}

// ErrManifestParse creates an error for a malformed manifest. The load
// pass aborts; anything registered before the failure stays registered.
func ErrManifestParse(path string, cause error) error {
	return oops.Code(CodeManifestParse).
		With("path", path).
		Wrap(cause)
}

// ErrRegistryServing creates an error for a registration attempted after
// the registry entered the serving phase.
func ErrRegistryServing(name string) error {
	return oops.Code(CodeRegistryServing).
		With("listener", name).
		Errorf("registry is serving; registration is closed")
}
