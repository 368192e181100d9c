// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatwire Contributors

package plugin

import (
	"context"
	_ "embed"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/chatwire/chatwire/pkg/listener"
)

//go:embed default_manifest.yaml
var defaultManifest []byte

// DefaultManifest returns the bundled manifest declaring the built-in
// plugins. Used as the fallback when no plugin-home manifest exists.
func DefaultManifest() []byte {
	out := make([]byte, len(defaultManifest))
	copy(out, defaultManifest)
	return out
}

// Skip reasons recorded in a LoadReport.
const (
	ReasonDisabled         = "disabled by configuration"
	ReasonNotInstalled     = "install directory missing"
	ReasonBadPackageInfo   = "package info unreadable"
	ReasonIdentityMismatch = "declared identity does not match package id"
	ReasonUnsupportedKind  = "listener name has no recognized kind suffix"
	ReasonNoFactory        = "no factory registered for listener"
)

// Skip records one plugin or listener skipped during a load pass.
// Listener is empty for plugin-level skips.
type Skip struct {
	Plugin   string
	Listener string
	Reason   string
}

// LoadReport summarizes one load pass.
type LoadReport struct {
	ManifestPath string // "builtin" when the embedded fallback was used
	Plugins      int    // plugins with at least one registered listener
	Listeners    int    // listeners registered
	Skips        []Skip
}

// Loader reads the plugin manifest and registers declared listeners into
// the registry in priority order. It runs once at startup, before the
// registry enters the serving phase.
type Loader struct {
	home     string
	fallback []byte
	registry *Registry
	disabled []glob.Glob
	lookup   func(string) (listener.Factory, bool)
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithFallbackManifest overrides the bundled fallback manifest. Passing
// nil disables the fallback entirely.
func WithFallbackManifest(data []byte) LoaderOption {
	return func(l *Loader) {
		l.fallback = data
	}
}

// WithDisabledPatterns skips plugins whose package id matches any of the
// given compiled glob patterns.
func WithDisabledPatterns(patterns []glob.Glob) LoaderOption {
	return func(l *Loader) {
		l.disabled = patterns
	}
}

// WithFactoryLookup overrides the listener factory lookup. Tests use this
// to avoid touching the process-wide factory map.
func WithFactoryLookup(fn func(string) (listener.Factory, bool)) LoaderOption {
	return func(l *Loader) {
		l.lookup = fn
	}
}

// NewLoader creates a loader for the given plugin home directory. An empty
// home means only the fallback manifest is consulted.
func NewLoader(home string, registry *Registry, opts ...LoaderOption) *Loader {
	l := &Loader{
		home:     home,
		fallback: DefaultManifest(),
		registry: registry,
		lookup:   listener.Lookup,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load runs one load pass: locate the manifest, validate and parse it,
// sort descriptors by priority (stable, ties keep manifest order), and
// register each declared listener. Individual plugin failures are recorded
// and skipped; only a missing or malformed manifest fails the pass.
func (l *Loader) Load(ctx context.Context) (*LoadReport, error) {
	data, path, fromDisk, err := l.readManifest()
	if err != nil {
		return nil, err
	}

	if err := ValidateSchema(data); err != nil {
		return nil, ErrManifestParse(path, err)
	}
	manifest, err := ParseManifest(data)
	if err != nil {
		return nil, ErrManifestParse(path, err)
	}

	// Stable sort keeps manifest order within a priority.
	descriptors := make([]Descriptor, len(manifest.Plugins))
	copy(descriptors, manifest.Plugins)
	sort.SliceStable(descriptors, func(i, j int) bool {
		return descriptors[i].Priority < descriptors[j].Priority
	})

	report := &LoadReport{ManifestPath: path}
	for i := range descriptors {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		l.loadPlugin(&descriptors[i], fromDisk, report)
	}

	slog.Info("plugin load pass complete",
		"manifest", path,
		"plugins", report.Plugins,
		"listeners", report.Listeners,
		"skips", len(report.Skips))

	return report, nil
}

// readManifest locates the manifest: plugin-home file first, bundled
// fallback second. fromDisk reports whether install directories should be
// checked on disk; the fallback declares link-time built-ins only.
func (l *Loader) readManifest() (data []byte, path string, fromDisk bool, err error) {
	if l.home != "" {
		manifestPath := filepath.Join(l.home, ManifestFile)
		data, readErr := os.ReadFile(manifestPath) //nolint:gosec // path comes from operator configuration
		if readErr == nil {
			return data, manifestPath, true, nil
		}
		if !os.IsNotExist(readErr) {
			return nil, "", false, ErrManifestParse(manifestPath, readErr)
		}
		slog.Warn("no manifest in plugin home, trying bundled fallback",
			"plugin_home", l.home)
	}

	if len(l.fallback) == 0 {
		return nil, "", false, ErrConfigMissing(l.home)
	}
	return l.fallback, "builtin", false, nil
}

// loadPlugin registers one descriptor's listeners, recording skips.
func (l *Loader) loadPlugin(d *Descriptor, fromDisk bool, report *LoadReport) {
	for _, pattern := range l.disabled {
		if pattern.Match(d.Package) {
			l.skipPlugin(report, d, ReasonDisabled, nil)
			return
		}
	}

	if fromDisk {
		if reason, err := l.checkInstalled(d); reason != "" {
			l.skipPlugin(report, d, reason, err)
			return
		}
	}

	registered := 0
	for _, name := range d.Listeners {
		kind, ok := classifyListener(name)
		if !ok {
			l.skipListener(report, d, name, ReasonUnsupportedKind)
			continue
		}

		factory, ok := l.lookup(name)
		if !ok {
			l.skipListener(report, d, name, ReasonNoFactory)
			continue
		}

		entry := Entry{
			Name:     name,
			Kind:     kind,
			Listener: factory(),
			Plugin:   d,
		}
		if err := l.registry.Register(entry); err != nil {
			// Only possible if the registry was put into serving phase
			// mid-load, which is a programming error worth surfacing loudly.
			slog.Error("listener registration rejected",
				"plugin", d.Package,
				"listener", name,
				"error", err)
			continue
		}

		registered++
		report.Listeners++
		slog.Info("registered listener",
			"plugin", d.Package,
			"listener", name,
			"kind", string(kind),
			"priority", d.Priority)
	}

	if registered > 0 {
		report.Plugins++
	}
}

// checkInstalled resolves the plugin's install directory and verifies its
// declared identity. Returns a non-empty skip reason on failure.
func (l *Loader) checkInstalled(d *Descriptor) (string, error) {
	org, name := d.InstallPath()
	dir := filepath.Join(l.home, org, name)

	data, err := os.ReadFile(filepath.Join(dir, PackageFile)) //nolint:gosec // dir derives from a validated package id
	if err != nil {
		return ReasonNotInstalled, err
	}

	info, err := ParsePackageInfo(data)
	if err != nil {
		return ReasonBadPackageInfo, err
	}

	if info.Name != d.Package {
		return ReasonIdentityMismatch, nil
	}
	return "", nil
}

func (l *Loader) skipPlugin(report *LoadReport, d *Descriptor, reason string, err error) {
	report.Skips = append(report.Skips, Skip{Plugin: d.Package, Reason: reason})
	slog.Warn("skipping plugin",
		"plugin", d.Package,
		"reason", reason,
		"error", err)
}

func (l *Loader) skipListener(report *LoadReport, d *Descriptor, name, reason string) {
	report.Skips = append(report.Skips, Skip{Plugin: d.Package, Listener: name, Reason: reason})
	slog.Warn("skipping listener",
		"plugin", d.Package,
		"listener", name,
		"reason", reason)
}

// classifyListener derives the listener kind from its name suffix.
func classifyListener(name string) (listener.Kind, bool) {
	switch {
	case strings.HasSuffix(name, "MessageListener"):
		return listener.KindMessage, true
	case strings.HasSuffix(name, "EventListener"):
		return listener.KindEvent, true
	default:
		return "", false
	}
}
