// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatwire Contributors

package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/chatwire/chatwire/internal/plugin"
)

// NewValidateCmd creates the validate subcommand.
func NewValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <manifest>",
		Short: "Validate a plugin manifest and print its load order",
		Long: `Schema-validate and parse a plugin manifest, then print the order
plugins would register in. No install directories are checked and no
listeners are instantiated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args[0])
		},
	}
}

func runValidate(cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is an operator-supplied argument
	if err != nil {
		return fmt.Errorf("reading manifest: %w", err)
	}

	if err := plugin.ValidateSchema(data); err != nil {
		return fmt.Errorf("manifest %s: %w", path, err)
	}
	manifest, err := plugin.ParseManifest(data)
	if err != nil {
		return fmt.Errorf("manifest %s: %w", path, err)
	}

	descriptors := make([]plugin.Descriptor, len(manifest.Plugins))
	copy(descriptors, manifest.Plugins)
	sort.SliceStable(descriptors, func(i, j int) bool {
		return descriptors[i].Priority < descriptors[j].Priority
	})

	cmd.Printf("%s: valid, %d plugin(s)\n", path, len(descriptors))
	cmd.Println("load order:")
	for i, d := range descriptors {
		cmd.Printf("  %2d. %-30s priority=%d listeners=%d\n",
			i+1, d.Package, d.Priority, len(d.Listeners))
	}
	return nil
}
