// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatwire Contributors

// Package plugin provides the plugin manifest, the listener registry, and
// the priority-ordered loader that populates the registry at startup.
package plugin

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestFile is the manifest file name looked up under the plugin home.
const ManifestFile = "plugins.yaml"

// Priority bounds for plugin load ordering. 1 loads first.
const (
	PriorityUrgent = 1
	PriorityLow    = 4
)

// Descriptor declares one installed plugin in the manifest.
type Descriptor struct {
	// Package is the slash-segmented plugin id, e.g. "acme/echo". It
	// resolves to a two-level directory under the plugin home.
	Package   string   `yaml:"package" json:"package"`
	Listeners []string `yaml:"listeners" json:"listeners"`
	Priority  int      `yaml:"priority" json:"priority"`
	Registry  string   `yaml:"registry,omitempty" json:"registry,omitempty"`
	Version   int      `yaml:"version,omitempty" json:"version,omitempty"`
}

// Manifest represents a plugins.yaml file: an ordered list of plugin
// descriptors. Manifest order breaks priority ties.
type Manifest struct {
	Plugins []Descriptor `yaml:"plugins" json:"plugins"`
}

// segmentPattern validates each package id segment: must start with a
// lowercase letter, followed by lowercase letters, digits, or hyphens.
// Cannot end with a hyphen.
var segmentPattern = regexp.MustCompile(`^[a-z]([a-z0-9-]*[a-z0-9])?$`)

// ParseManifest parses and validates a plugins.yaml file.
func ParseManifest(data []byte) (*Manifest, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("manifest data is empty")
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return &m, nil
}

// Validate checks manifest constraints.
func (m *Manifest) Validate() error {
	for i := range m.Plugins {
		if err := m.Plugins[i].Validate(); err != nil {
			return fmt.Errorf("plugin %d: %w", i, err)
		}
	}
	return nil
}

// Validate checks a single descriptor's constraints.
func (d *Descriptor) Validate() error {
	segments := strings.Split(d.Package, "/")
	if len(segments) != 2 {
		return fmt.Errorf("package %q must have exactly two slash-separated segments", d.Package)
	}
	for _, seg := range segments {
		if !segmentPattern.MatchString(seg) {
			return fmt.Errorf("package segment %q must start with a-z, contain only a-z, 0-9, hyphens, and not end with a hyphen", seg)
		}
	}

	if len(d.Listeners) == 0 {
		return fmt.Errorf("package %q declares no listeners", d.Package)
	}
	for _, name := range d.Listeners {
		if name == "" {
			return fmt.Errorf("package %q declares an empty listener name", d.Package)
		}
	}

	if d.Priority < PriorityUrgent || d.Priority > PriorityLow {
		return fmt.Errorf("package %q priority must be between %d and %d, got %d",
			d.Package, PriorityUrgent, PriorityLow, d.Priority)
	}

	if d.Version < 0 {
		return fmt.Errorf("package %q version must not be negative, got %d", d.Package, d.Version)
	}

	return nil
}

// InstallPath returns the two path segments the package id resolves to
// under the plugin home.
func (d *Descriptor) InstallPath() (string, string) {
	segments := strings.SplitN(d.Package, "/", 2)
	if len(segments) != 2 {
		return d.Package, ""
	}
	return segments[0], segments[1]
}
