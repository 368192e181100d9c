// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatwire Contributors

package plugin

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// PackageFile is the identity file expected inside an installed plugin
// directory.
const PackageFile = "package.yaml"

// PackageInfo is the identity an installed plugin declares about itself.
// Its Name must match the manifest's package id for the plugin to load.
type PackageInfo struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// ParsePackageInfo parses and validates a package.yaml file.
func ParsePackageInfo(data []byte) (*PackageInfo, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("package info is empty")
	}

	var info PackageInfo
	if err := yaml.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	if info.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if info.Version == "" {
		return nil, fmt.Errorf("version is required")
	}
	if _, err := semver.NewVersion(info.Version); err != nil {
		return nil, fmt.Errorf("version %q is not valid semver: %w", info.Version, err)
	}

	return &info, nil
}
